package engine

import (
	"fmt"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// SearchKind is the stopping criterion of a search.
type SearchKind int

const (
	SearchInfinite SearchKind = iota // Runs until stopped
	SearchDepth                      // go depth N
	SearchNodes                      // go nodes N
	SearchMovetime                   // go movetime N (milliseconds)
)

// String returns the UCI keyword for the kind.
func (k SearchKind) String() string {
	switch k {
	case SearchDepth:
		return "depth"
	case SearchNodes:
		return "nodes"
	case SearchMovetime:
		return "movetime"
	}
	return "infinite"
}

// ParseSearchKind maps a UCI keyword back to a SearchKind.
func ParseSearchKind(s string) (SearchKind, error) {
	switch s {
	case "depth":
		return SearchDepth, nil
	case "nodes":
		return SearchNodes, nil
	case "movetime", "time":
		return SearchMovetime, nil
	case "infinite", "":
		return SearchInfinite, nil
	}
	return SearchInfinite, fmt.Errorf("search kind %q: %w", s, errors.ErrInvalidSearch)
}

// SearchBy is a resource limit for one search. The zero value is unbounded.
type SearchBy struct {
	Kind  SearchKind
	Value int
}

// Depth limits the search to n plies.
func Depth(n int) SearchBy { return SearchBy{Kind: SearchDepth, Value: n} }

// Nodes limits the search to n nodes.
func Nodes(n int) SearchBy { return SearchBy{Kind: SearchNodes, Value: n} }

// Movetime limits the search to ms milliseconds.
func Movetime(ms int) SearchBy { return SearchBy{Kind: SearchMovetime, Value: ms} }

// Infinite searches until stopped.
func Infinite() SearchBy { return SearchBy{} }

// Bounded reports whether the engine is expected to stop by itself.
func (s SearchBy) Bounded() bool {
	return s.Kind != SearchInfinite
}

// Validate rejects bounded searches without a positive budget.
func (s SearchBy) Validate() error {
	if s.Bounded() && s.Value <= 0 {
		return fmt.Errorf("%s %d: %w", s.Kind, s.Value, errors.ErrInvalidSearch)
	}
	return nil
}

// GoCommand renders the search-start command.
func (s SearchBy) GoCommand() string {
	if !s.Bounded() {
		return "go infinite"
	}
	return fmt.Sprintf("go %s %d", s.Kind, s.Value)
}

// String returns a short description such as "depth 20".
func (s SearchBy) String() string {
	if !s.Bounded() {
		return "infinite"
	}
	return fmt.Sprintf("%s %d", s.Kind, s.Value)
}
