// Package logging builds the zap loggers used by the binaries.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production sugared logger at the given level. An empty level
// selects info; an unparsable level is an error.
func New(level string, outputPaths ...string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()

	if level = strings.TrimSpace(level); level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level.SetLevel(lvl)
	}

	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
		cfg.ErrorOutputPaths = outputPaths
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// MustNew is New for program entry points; it falls back to info when the
// level cannot be parsed and panics only if zap itself fails.
func MustNew(level string, outputPaths ...string) *zap.SugaredLogger {
	logger, err := New(level, outputPaths...)
	if err == nil {
		return logger
	}
	logger, buildErr := New("", outputPaths...)
	if buildErr != nil {
		panic(buildErr)
	}
	logger.Warnw("invalid log level, using info", "level", level, "error", err)
	return logger
}
