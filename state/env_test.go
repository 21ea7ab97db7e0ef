package state

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"factbatch/config"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	if ctx == nil {
		t.Fatal("ContextWithEnv() returned nil")
	}

	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}

	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
	if env.RunID == uuid.Nil {
		t.Error("Run id not set")
	}
}

func TestContextWithEnv_UniqueRunID(t *testing.T) {
	a := EnvFromContext(ContextWithEnv(context.Background()))
	b := EnvFromContext(ContextWithEnv(context.Background()))
	if a.RunID == b.RunID {
		t.Errorf("Expected different run ids, got %s twice", a.RunID)
	}
	if a.RunID.Version() != 7 {
		t.Errorf("RunID version = %d, want 7", a.RunID.Version())
	}
}

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		ctx := ContextWithEnv(context.Background())
		if env := EnvFromContext(ctx); env == nil {
			t.Error("Expected non-nil environment")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now()}

	for _, delay := range []time.Duration{5 * time.Millisecond, 10 * time.Millisecond} {
		time.Sleep(delay)
		if uptime := env.Uptime(); uptime < delay {
			t.Errorf("After %v delay, uptime %v is too small", delay, uptime)
		}
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}

		// multiple cycles
		for i := range 3 {
			env.RedirectStdLog()
			if env.restoreStdLog == nil {
				t.Errorf("Iteration %d: restoreStdLog not set", i)
			}
			env.RestoreStdLog()
			if env.restoreStdLog != nil {
				t.Errorf("Iteration %d: restoreStdLog not cleared", i)
			}
		}
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}

		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
		env.RestoreStdLog()
	})

	t.Run("restore without redirect", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t),
		}
		env.RestoreStdLog()
	})
}

func TestLocalEnv_Integration(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)

	env.Cfg = &config.Config{Version: 1}
	env.Log = zaptest.NewLogger(t)
	env.Rpt = nil // no debug report requested
	env.NoDirs = true
	env.ToStdout = true
	env.CodePage = charmap.CodePage866

	env.RedirectStdLog()
	defer env.RestoreStdLog()

	// same env is returned for the same context
	if got := EnvFromContext(ctx); got != env || !got.NoDirs || !got.ToStdout || got.CodePage != charmap.CodePage866 {
		t.Errorf("EnvFromContext() returned unexpected environment: %+v", got)
	}
	if env.Rpt.Name() != "" {
		t.Errorf("Nil report name = %q, want empty", env.Rpt.Name())
	}
}
