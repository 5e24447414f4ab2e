package config

import (
	"fmt"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// maxMultiPV is the largest line count accepted by common engines.
const maxMultiPV = 500

// EngineConfig holds settings for the engine process and its options.
type EngineConfig struct {
	// Path is the engine executable, looked up in PATH when not absolute
	Path string `yaml:"path"`

	// Args are passed to the engine on start
	Args []string `yaml:"args"`

	// Threads, Hash (MB) and MultiPV are sent with setoption when they
	// differ from the engine's current values
	Threads int `yaml:"threads"`
	Hash    int `yaml:"hash"`
	MultiPV int `yaml:"multipv"`

	// DepthCeiling stops any search at this depth; 0 disables it
	DepthCeiling int `yaml:"depthCeiling"`
}

// NewEngineConfig creates an EngineConfig with default values.
func NewEngineConfig() *EngineConfig {
	return &EngineConfig{
		Path:         "stockfish",
		Threads:      engine.DefaultThreads,
		Hash:         engine.DefaultHashSize,
		MultiPV:      engine.DefaultMultiPV,
		DepthCeiling: engine.DefaultDepthCeiling,
	}
}

// Validate checks that the engine configuration is valid.
func (e *EngineConfig) Validate() error {
	switch {
	case e.Path == "":
		return fmt.Errorf("engine path is empty: %w", errors.ErrInvalidConfig)
	case e.Threads < 1:
		return fmt.Errorf("engine threads (%d) < 1: %w", e.Threads, errors.ErrInvalidConfig)
	case e.Hash < 1:
		return fmt.Errorf("engine hash (%d) < 1: %w", e.Hash, errors.ErrInvalidConfig)
	case e.MultiPV < 1 || e.MultiPV > maxMultiPV:
		return fmt.Errorf("engine multipv (%d) outside [1,%d]: %w", e.MultiPV, maxMultiPV, errors.ErrInvalidConfig)
	case e.DepthCeiling < 0:
		return fmt.Errorf("engine depth ceiling (%d) < 0: %w", e.DepthCeiling, errors.ErrInvalidConfig)
	}
	return nil
}

// SearchConfig holds the default stopping criterion.
type SearchConfig struct {
	// Kind is one of infinite, depth, nodes or movetime
	Kind string `yaml:"kind"`

	// Value is the budget for bounded kinds
	Value int `yaml:"value"`
}

// NewSearchConfig creates a SearchConfig for an infinite search.
func NewSearchConfig() *SearchConfig {
	return &SearchConfig{Kind: engine.SearchInfinite.String()}
}

// SearchBy converts the section into a search limit.
func (s *SearchConfig) SearchBy() (engine.SearchBy, error) {
	kind, err := engine.ParseSearchKind(s.Kind)
	if err != nil {
		return engine.SearchBy{}, err
	}
	sb := engine.SearchBy{Kind: kind, Value: s.Value}
	if err := sb.Validate(); err != nil {
		return engine.SearchBy{}, err
	}
	return sb, nil
}

// Validate checks that the search configuration is valid.
func (s *SearchConfig) Validate() error {
	if _, err := s.SearchBy(); err != nil {
		return fmt.Errorf("search: %v: %w", err, errors.ErrInvalidConfig)
	}
	return nil
}
