// Package config provides configuration for uci-analysis.
//
// A Config starts from NewConfig defaults, may be overlaid with a YAML file
// through Load, and is finally adjusted by command-line flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// Config holds all program configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
	Server ServerConfig `yaml:"server"`
	Batch  BatchConfig  `yaml:"batch"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Engine: *NewEngineConfig(),
		Search: *NewSearchConfig(),
		Log:    *NewLogConfig(),
		Output: *NewOutputConfig(),
		Server: *NewServerConfig(),
		Batch:  *NewBatchConfig(),
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Keys that
// are absent keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%v: %w", err, errors.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	return errors.Join(
		c.Engine.Validate(),
		c.Search.Validate(),
		c.Log.Validate(),
		c.Output.Validate(),
		c.Server.Validate(),
		c.Batch.Validate(),
	)
}

// Request builds an analysis request for the position reached by playing
// moves from fen, using the configured engine options and search limit.
func (c *Config) Request(fen string, moves []string) (engine.Request, error) {
	search, err := c.Search.SearchBy()
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{
		InitialFEN: fen,
		Moves:      moves,
		Search:     search,
		Threads:    c.Engine.Threads,
		HashSize:   c.Engine.Hash,
		MultiPV:    c.Engine.MultiPV,
	}, nil
}

// ProtocolOptions returns the engine protocol options implied by the
// configuration.
func (c *Config) ProtocolOptions() []engine.Option {
	return []engine.Option{engine.WithDepthCeiling(c.Engine.DepthCeiling)}
}
