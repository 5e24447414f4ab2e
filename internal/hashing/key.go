// Package hashing caches finished evaluations by position so repeated
// requests in a batch do not reach the engine again.
package hashing

import (
	"github.com/lgbarn/uci-analysis-go/internal/chess"
	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// Key identifies an evaluation: the searched position together with the
// settings that change what the engine reports. Positions reached by
// different move orders share a key.
type Key struct {
	Position [16]byte
	Search   engine.SearchBy
	MultiPV  int
}

// KeyFor builds the key for analysing fen with the given limit and number
// of lines.
func KeyFor(fen string, search engine.SearchBy, multiPV int) (Key, error) {
	pos, err := chess.NewPosition(fen)
	if err != nil {
		return Key{}, err
	}
	if multiPV < 1 {
		multiPV = engine.DefaultMultiPV
	}
	return Key{Position: pos.Hash(), Search: search, MultiPV: multiPV}, nil
}

// WorkKey is KeyFor applied to the position a Work searches.
func WorkKey(w *engine.Work) (Key, error) {
	return KeyFor(w.CurrentFEN, w.Search, w.MultiPV)
}
