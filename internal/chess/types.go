// Package chess replays engine moves against real positions.
// Move generation and SAN rendering are delegated to github.com/notnil/chess;
// this package adapts it to the coordinate moves a UCI engine streams.
package chess

import nchess "github.com/notnil/chess"

// Colour represents the side to move.
type Colour int

const (
	White Colour = iota
	Black
)

// String returns the lowercase name used in FEN-adjacent output.
func (c Colour) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Opposite returns the opposite colour.
func (c Colour) Opposite() Colour {
	if c == White {
		return Black
	}
	return White
}

func colourOf(c nchess.Color) Colour {
	if c == nchess.Black {
		return Black
	}
	return White
}

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
