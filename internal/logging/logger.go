package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogFile is where --logs writes the structured debug log
const DefaultLogFile = "subsonic-debug.log"

// NewLogger returns a JSON debug logger writing to path, or a no-op logger
// when disabled. The terminal belongs to the TUI, so nothing goes to stdout.
// The returned func flushes buffered entries and must be called on exit.
func NewLogger(enabled bool, path string) (*zap.SugaredLogger, func(), error) {
	if !enabled {
		return zap.NewNop().Sugar(), func() {}, nil
	}
	if path == "" {
		path = DefaultLogFile
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger.Sugar(), func() { _ = logger.Sync() }, nil
}
