// Package observability provides the process-wide zap loggers.
//
// Two loggers are maintained: CLILogger writes human-oriented console
// output to stderr for command-line runs (stdout is reserved for JSONL
// data), and Logger writes structured JSON for server mode.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the console logger for CLI commands. It writes to
// stderr so command output on stdout stays machine-parseable.
var CLILogger *zap.Logger

// Logger is the structured JSON logger for server mode.
var Logger *zap.Logger

func init() {
	CLILogger = newConsoleLogger(zapcore.InfoLevel)
	Logger = zap.NewNop()
}

// InitCLILogger configures the CLI logger with the given level.
// Verbose forces debug level regardless of the level string.
func InitCLILogger(level string, verbose bool) {
	lvl := parseLevel(level)
	if verbose {
		lvl = zapcore.DebugLevel
	}
	CLILogger = newConsoleLogger(lvl)
}

// InitLogger configures the structured logger for server mode.
//
// Profile selects the encoder: "structured" (default) emits JSON,
// anything else falls back to the console encoder.
func InitLogger(level, profile string) error {
	lvl := parseLevel(level)

	switch profile {
	case "", "structured", "STRUCTURED":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.OutputPaths = []string{"stderr"}
		logger, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		Logger = logger
	default:
		Logger = newConsoleLogger(lvl)
	}

	return nil
}

// Sync flushes buffered log entries. Safe to call at process exit.
func Sync() {
	if CLILogger != nil {
		_ = CLILogger.Sync()
	}
	if Logger != nil {
		_ = Logger.Sync()
	}
}

func newConsoleLogger(lvl zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core)
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
