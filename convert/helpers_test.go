package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"factbatch/config"
	"factbatch/state"
)

const sampleJSONL = `{"kind":"file","id":1,"text":"src/a.go"}
{"kind":"symbol","id":2,"text":"sym a"}
{"kind":"definition","symbol":2,"location":3}
`

const sampleYAML = `kind: file
id: 1
text: src/a.go
---
kind: symbol
id: 2
text: sym a
---
kind: definition
symbol: 2
location: 3
`

const sampleDocument = `[{"facts":[{"id":1,"key":"src/a.go"}],"predicate":"src.File.1"},
{"facts":[{"id":2,"key":"sym a"}],"predicate":"scip.Symbol.1"},
{"facts":[{"key":{"location":3,"symbol":2}}],"predicate":"scip.Definition.1"}]
`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = testLogger(t)
	env.Cfg = cfg
	return ctx, env
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func gzipData(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func zstdData(t *testing.T, data string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll([]byte(data), nil)
}

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("gunzip read: %v", err)
	}
	return string(out)
}

func unzstd(t *testing.T, data []byte) string {
	t.Helper()
	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		t.Fatalf("zstd decode: %v", err)
	}
	return string(out)
}

func makeZip(t *testing.T, path string, files map[string][]byte) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s in zip: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write %s in zip: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}
