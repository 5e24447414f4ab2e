package config

import (
	"fmt"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// OutputConfig holds settings related to result formatting.
type OutputConfig struct {
	// JSON enables JSON output instead of text
	JSON bool `yaml:"json"`

	// Precision is the number of decimals for centipawn scores
	Precision int `yaml:"precision"`

	// MaxLineLength wraps long variations in text output
	MaxLineLength int `yaml:"maxLineLength"`
}

// NewOutputConfig creates an OutputConfig with default values.
func NewOutputConfig() *OutputConfig {
	return &OutputConfig{
		Precision:     2,
		MaxLineLength: 80,
	}
}

// Validate checks that the output configuration is valid.
func (o *OutputConfig) Validate() error {
	if o.Precision < 0 || o.Precision > 4 {
		return fmt.Errorf("output precision (%d) outside [0,4]: %w", o.Precision, errors.ErrInvalidConfig)
	}
	if o.MaxLineLength < 0 {
		return fmt.Errorf("output max line length (%d) < 0: %w", o.MaxLineLength, errors.ErrInvalidConfig)
	}
	return nil
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// AllowOrigins lists CORS origins; "*" allows any
	AllowOrigins []string `yaml:"allowOrigins"`
}

// NewServerConfig creates a ServerConfig with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:         ":8080",
		AllowOrigins: []string{"*"},
	}
}

// Validate checks that the server configuration is valid.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("server addr is empty: %w", errors.ErrInvalidConfig)
	}
	return nil
}

// BatchConfig holds settings for batch analysis.
type BatchConfig struct {
	// Workers is the number of engine processes run in parallel
	Workers int `yaml:"workers"`

	// CacheCapacity bounds the evaluation cache; 0 means unlimited
	CacheCapacity int `yaml:"cacheCapacity"`
}

// NewBatchConfig creates a BatchConfig with default values.
func NewBatchConfig() *BatchConfig {
	return &BatchConfig{Workers: 1}
}

// Validate checks that the batch configuration is valid.
func (b *BatchConfig) Validate() error {
	if b.Workers < 1 {
		return fmt.Errorf("batch workers (%d) < 1: %w", b.Workers, errors.ErrInvalidConfig)
	}
	if b.CacheCapacity < 0 {
		return fmt.Errorf("batch cache capacity (%d) < 0: %w", b.CacheCapacity, errors.ErrInvalidConfig)
	}
	return nil
}
