package chess

import (
	"fmt"
	"strings"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// SwapTurn returns fen with the other side to move and no en passant square.
// It is used to ask an engine what the opponent threatens.
func SwapTurn(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return "", fmt.Errorf("%q: %w", fen, errors.ErrInvalidFEN)
	}
	switch fields[1] {
	case "w":
		fields[1] = "b"
	case "b":
		fields[1] = "w"
	default:
		return "", fmt.Errorf("%q: side to move %q: %w", fen, fields[1], errors.ErrInvalidFEN)
	}
	if len(fields) > 3 {
		fields[3] = "-"
	}
	swapped := strings.Join(fields, " ")
	if _, err := NewPosition(swapped); err != nil {
		return "", err
	}
	return swapped, nil
}

// TurnOf returns the side to move field of fen without validating the board.
func TurnOf(fen string) (Colour, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return White, fmt.Errorf("%q: %w", fen, errors.ErrInvalidFEN)
	}
	switch fields[1] {
	case "w":
		return White, nil
	case "b":
		return Black, nil
	}
	return White, fmt.Errorf("%q: side to move %q: %w", fen, fields[1], errors.ErrInvalidFEN)
}
