package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// Log formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error
	Level string `yaml:"level"`

	// Format is console (human readable) or json
	Format string `yaml:"format"`
}

// NewLogConfig creates a LogConfig with default values.
func NewLogConfig() *LogConfig {
	return &LogConfig{Level: "info", Format: LogConsole}
}

// Validate checks that the log configuration is valid.
func (l *LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log level %q: %w", l.Level, errors.ErrInvalidConfig)
	}
	if l.Format != LogConsole && l.Format != LogJSON {
		return fmt.Errorf("log format %q: %w", l.Format, errors.ErrInvalidConfig)
	}
	return nil
}

// Logger builds the root logger writing to w.
func (l *LogConfig) Logger(w io.Writer) (zerolog.Logger, error) {
	if err := l.Validate(); err != nil {
		return zerolog.Nop(), err
	}
	level, _ := zerolog.ParseLevel(l.Level)
	if l.Format == LogConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
