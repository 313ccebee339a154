// Package logger provides the structured logger used across the deployer.
package logger

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is a leveled key-value logger backed by a zap.SugaredLogger. Components receive it
// injected and name their child, e.g. lggr.Named("rpcclient"). Tests use Test or TestObserved.
//
// Levels
//   - Error: a remote call or a local step failed and the run was aborted.
//   - Warn: something unexpected happened that did not abort the run.
//   - Info: one line per executed step and per run.
//   - Debug: raw arguments and raw responses exchanged with the node.
type Logger interface {
	Name() string
	Named(name string) Logger

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	Sync() error
}

const (
	EncodingConsole = "console"
	EncodingJSON    = "json"
)

// Config controls the logger built by New. The zero value logs at info level to the console.
type Config struct {
	Level    zapcore.Level
	Encoding string
}

// ParseConfig builds a Config from the textual level and encoding found in the environment.
func ParseConfig(level, encoding string) (Config, error) {
	cfg := Config{Encoding: encoding}
	if level == "" {
		return cfg, nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = lvl

	return cfg, nil
}

// New builds a logger writing to stderr.
func (c Config) New() (Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(c.Level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.Sampling = nil

	switch c.Encoding {
	case EncodingJSON:
		zcfg.Encoding = EncodingJSON
	case "", EncodingConsole:
		zcfg.Encoding = EncodingConsole
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("unsupported log encoding %q", c.Encoding)
	}

	z, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return &logger{z.Sugar()}, nil
}

// Test returns a logger writing through tb.Log at debug level.
func Test(tb testing.TB) Logger {
	tb.Helper()

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zaptest.NewTestingWriter(tb), zapcore.DebugLevel)

	return &logger{zap.New(core).Sugar()}
}

// TestObserved is like Test and also captures entries at lvl and above for assertions.
func TestObserved(tb testing.TB, lvl zapcore.Level) (Logger, *observer.ObservedLogs) {
	tb.Helper()

	observed, logs := observer.New(lvl)
	tee := zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, observed)
	})

	return &logger{zaptest.NewLogger(tb, zaptest.WrapOptions(tee)).Sugar()}, logs
}

// Nop returns a logger discarding everything.
func Nop() Logger {
	return &logger{zap.NewNop().Sugar()}
}

type logger struct {
	*zap.SugaredLogger
}

func (l *logger) Name() string {
	return l.Desugar().Name()
}

func (l *logger) Named(name string) Logger {
	return &logger{l.SugaredLogger.Named(name)}
}
