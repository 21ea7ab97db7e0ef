package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"factbatch/config"
	"factbatch/convert"
	"factbatch/misc"
	"factbatch/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	if stdoutRequested(cmd.Args().Slice()) {
		// result goes to STDOUT, nothing else should, starting with the first log line
		config.ReserveStdout()
	}

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
		env.Rpt.StoreData("run.txt", fmt.Appendf(nil, "run: %s\nversion: %s (%s) : %s\nargs: %s\n",
			env.RunID, misc.GetVersion(), runtime.Version(), misc.GetGitHash(), strings.Join(os.Args, " ")))
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()), zap.Stringer("run", env.RunID))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

// stdoutRequested checks if subcommand in args is going to write its result to
// STDOUT. This has to be known before logging is set up, so args are
// looked at before subcommand flags are parsed.
func stdoutRequested(args []string) bool {
	if len(args) == 0 {
		return false
	}
	flags, params := splitArgs(args[1:])
	switch args[0] {
	case "convert":
		return flags["to-stdout"] || flags["so"]
	case "dumpconfig":
		return len(params) == 0
	}
	return false
}

// splitArgs separates boolean flags which are set from positional arguments.
// Values of non-boolean flags are reported as positional, callers should not
// count on them.
func splitArgs(args []string) (map[string]bool, []string) {
	flags := make(map[string]bool)
	var params []string
	for i, a := range args {
		if a == "--" {
			params = append(params, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			params = append(params, a)
			continue
		}
		name, value, found := strings.Cut(strings.TrimLeft(a, "-"), "=")
		set := true
		if found {
			if b, err := strconv.ParseBool(value); err == nil {
				set = b
			}
		}
		flags[name] = set
	}
	return flags, params
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors instead of cli.Exit(), they are logged
// here and exit code is set at the end of main.
var errWasHandled bool

// exitErrHandler is called before appContext is destroyed, so log is still
// available.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)
	if env.Log == nil {
		return
	}
	if errors.Is(err, convert.ErrBrokenPipe) {
		// reader of our output is gone, there is nothing to debug
		env.Log.Warn("Program ended early", zap.Error(err))
	} else {
		env.Log.Error("Program ended with error", zap.Error(err))
	}
	errWasHandled = true
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt, conversion checks context
	// between sources and between events
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := newApp()

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
