package engine

import (
	"fmt"
	"math"
	"strconv"
)

// ScoreKind distinguishes centipawn scores from mate distances.
type ScoreKind int

const (
	ScoreCP   ScoreKind = iota // Centipawns
	ScoreMate                  // Mate in N moves; negative means getting mated
)

// String returns the UCI keyword.
func (k ScoreKind) String() string {
	if k == ScoreMate {
		return "mate"
	}
	return "cp"
}

// MarshalText encodes the kind as its UCI keyword.
func (k ScoreKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "cp" or "mate".
func (k *ScoreKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "cp":
		*k = ScoreCP
	case "mate":
		*k = ScoreMate
	default:
		return fmt.Errorf("unknown score kind %q", b)
	}
	return nil
}

// Score is an evaluation from the first player's point of view:
// positive favours white.
type Score struct {
	Kind  ScoreKind `json:"type"`
	Value int       `json:"value"`
}

// Negate flips the point of view.
func (s Score) Negate() Score {
	return Score{Kind: s.Kind, Value: -s.Value}
}

// String formats with two decimals.
func (s Score) String() string {
	return FormatScore(s, 2)
}

// FormatScore renders a score as "+0.35", "-1.20", "0.00", "+M3" or "-M5".
func FormatScore(s Score, precision int) string {
	var text string
	if s.Kind == ScoreMate {
		text = "M" + strconv.Itoa(abs(s.Value))
	} else {
		text = strconv.FormatFloat(math.Abs(float64(s.Value)/100), 'f', precision, 64)
	}
	switch {
	case s.Value > 0:
		return "+" + text
	case s.Value < 0:
		return "-" + text
	}
	return text
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
