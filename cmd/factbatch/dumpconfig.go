package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"factbatch/config"
	"factbatch/state"
)

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	kind, data, err := selectConfiguration(env.Cfg, cmd.Bool("default"))
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		config.ReserveStdout()
		env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", "STDOUT"))
		return writeConfiguration(os.Stdout, data)
	}

	env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", fname))
	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	if err := writeConfiguration(out, data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func selectConfiguration(cfg *config.Config, defaults bool) (string, []byte, error) {
	if defaults {
		data, err := config.Prepare()
		return "default", data, err
	}
	data, err := config.Dump(cfg)
	return "actual", data, err
}

func writeConfiguration(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
