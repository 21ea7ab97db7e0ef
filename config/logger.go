package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"factbatch/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// Prepare returns our standard logger - configured zap logger for use by the program.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	consoleCoreHP, consoleCoreLP := consoleCores(conf.ConsoleLogger.Level)

	levelRequested, modeRequested := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		// if report is requested always set maximum available logging level for file logger
		levelRequested = "debug"
		modeRequested = "overwrite"
	}

	fc, newName, err := fileCore(conf.FileLogger.Destination, levelRequested, modeRequested, rpt)
	if err != nil {
		return nil, err
	}

	core := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fc), zap.AddCaller())
	if len(newName) != 0 {
		// log was redirected - we need to report this
		core.Warn("Log file was redirected to new location", zap.String("location", newName))
	}
	return core.Named(misc.GetAppName()), nil
}

// consoleCores splits console output: errors go to stderr, everything else
// allowed by level to stdout. Colors are used only on terminals.
func consoleCores(level string) (hp, lp zapcore.Core) {
	var minLevel zapcore.Level
	switch level {
	case "normal":
		minLevel = zapcore.InfoLevel
	case "debug":
		minLevel = zapcore.DebugLevel
	default:
		return zapcore.NewNopCore(), zapcore.NewNopCore()
	}

	lp = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(consoleOut{}.stream())), zapcore.Lock(consoleOut{}),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return minLevel <= lvl && lvl < zapcore.ErrorLevel
		}))
	hp = zapcore.NewCore(newEncoder(consoleEncoderConfig(os.Stderr)), zapcore.Lock(os.Stderr), // filter errorVerbose
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return hp, lp
}

var stdoutReserved atomic.Bool

// ReserveStdout sends all further console logging to stderr, so stdout
// carries program output only.
func ReserveStdout() {
	stdoutReserved.Store(true)
}

// consoleOut is stdout unless it was reserved.
type consoleOut struct{}

func (consoleOut) stream() *os.File {
	if stdoutReserved.Load() {
		return os.Stderr
	}
	return os.Stdout
}

func (c consoleOut) Write(p []byte) (int, error) {
	return c.stream().Write(p)
}

func (c consoleOut) Sync() error {
	// terminals and pipes do not support sync
	_ = c.stream().Sync()
	return nil
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

func openLog(fname, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(fname, flags, 0644)
}

// fileCore opens log file at destination, falling back to temporary file when
// destination is not accessible. In that case name of the new file is
// returned.
func fileCore(destination, level, mode string, rpt *Report) (zapcore.Core, string, error) {
	var logLevel zap.AtomicLevel
	switch level {
	case "debug":
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "normal":
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		return zapcore.NewNopCore(), "", nil
	}
	fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	// capture panic log if possible
	var ef *os.File
	if f, err := openLog(filepath.Join(filepath.Dir(destination), misc.GetAppName()+"-panic.log"), mode); err == nil {
		ef = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err == nil {
		ef = f
	}
	// otherwise just quietly ignore
	if ef != nil {
		debug.SetCrashOutput(ef, debug.CrashOptions{})
		rpt.Store("panic.log", ef.Name())
		ef.Close()
	}

	if f, err := openLog(destination, mode); err == nil {
		rpt.Store("final.log", f.Name())
		return zapcore.NewCore(fileEncoder, zapcore.Lock(f), logLevel), "", nil
	} else if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err == nil {
		rpt.Store("final.log", f.Name())
		return zapcore.NewCore(fileEncoder, zapcore.Lock(f), logLevel), f.Name(), nil
	} else {
		return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", destination, err)
	}
}

// When logging error to console - do not output verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			// presently superficial - but we may need to shorten what is printed to console in the future
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
