package engine

import (
	"strconv"

	"github.com/lgbarn/uci-analysis-go/internal/chess"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// LineReplayer replays a principal variation from fen and returns the
// playable prefix in coordinate and algebraic notation.
type LineReplayer func(fen string, moves []string) (uci, san []string)

// Info is one parsed "info" line. Score is from the engine's point of view.
type Info struct {
	Depth    int
	SelDepth int
	MultiPV  int
	Nodes    int64
	NPS      int64
	Time     int64
	Score    Score
	UCIMoves []string
	SANMoves []string
	HasPV    bool
}

// ParseInfo parses the whitespace-split fields of an info line. fen is the
// position being searched; PV moves are replayed against it and the
// variation is cut at the first move that does not replay.
//
// Lines without a pv, or missing nodes, time or score, or carrying a
// "mate 0" score are rejected. On error the returned Info still holds
// whatever was parsed before the failure.
func ParseInfo(fields []string, fen string, replay LineReplayer) (Info, error) {
	var info Info
	var rawPV []string
	var hasNodes, hasTime, hasScore bool

	start := 0
	if len(fields) > 0 && fields[0] == "info" {
		start = 1
	}

scan:
	for i := start; i < len(fields); i++ {
		var err error
		switch key := fields[i]; key {
		case "depth":
			info.Depth, err = intField(fields, &i, key)
		case "seldepth":
			info.SelDepth, err = intField(fields, &i, key)
		case "multipv":
			info.MultiPV, err = intField(fields, &i, key)
		case "nodes":
			info.Nodes, err = int64Field(fields, &i, key)
			hasNodes = true
		case "nps":
			info.NPS, err = int64Field(fields, &i, key)
		case "time":
			info.Time, err = int64Field(fields, &i, key)
			hasTime = true
		case "score":
			info.Score, err = scoreField(fields, &i)
			hasScore = true
		case "pv":
			rawPV = fields[i+1:]
			info.HasPV = true
			break scan
		case "string":
			// Free text to end of line.
			break scan
		}
		if err != nil {
			return info, err
		}
	}

	if info.MultiPV == 0 {
		info.MultiPV = 1
	}
	switch {
	case !info.HasPV:
		return info, errors.ErrNoPV
	case !hasNodes:
		return info, missing("nodes")
	case !hasTime:
		return info, missing("time")
	case !hasScore:
		return info, missing("score")
	case info.Score.Kind == ScoreMate && info.Score.Value == 0:
		return info, &errors.InfoError{Err: errors.ErrMalformedInfo, Field: "score", Token: "mate 0"}
	}

	if replay == nil {
		replay = chess.Line
	}
	info.UCIMoves, info.SANMoves = replay(fen, rawPV)
	return info, nil
}

// BestMoves converts the line into a PV record with the score seen from
// white's side.
func (i Info) BestMoves(turn chess.Colour) BestMoves {
	score := i.Score
	if turn == chess.Black {
		score = score.Negate()
	}
	return BestMoves{
		Depth:    i.Depth,
		Nodes:    i.Nodes,
		Score:    score,
		NPS:      i.NPS,
		MultiPV:  i.MultiPV,
		UCIMoves: i.UCIMoves,
		SANMoves: i.SANMoves,
	}
}

func intField(fields []string, i *int, key string) (int, error) {
	n, err := int64Field(fields, i, key)
	return int(n), err
}

// int64Field consumes the value after fields[*i].
func int64Field(fields []string, i *int, key string) (int64, error) {
	if *i+1 >= len(fields) {
		return 0, missing(key)
	}
	*i++
	n, err := strconv.ParseInt(fields[*i], 10, 64)
	if err != nil {
		return 0, &errors.InfoError{Err: errors.ErrMalformedInfo, Field: key, Token: fields[*i]}
	}
	return n, nil
}

// scoreField consumes "cp <n>" or "mate <n>". Bound markers that may
// follow are skipped by the main loop.
func scoreField(fields []string, i *int) (Score, error) {
	if *i+2 >= len(fields) {
		return Score{}, missing("score")
	}
	var s Score
	switch fields[*i+1] {
	case "cp":
		s.Kind = ScoreCP
	case "mate":
		s.Kind = ScoreMate
	default:
		return Score{}, &errors.InfoError{Err: errors.ErrMalformedInfo, Field: "score", Token: fields[*i+1]}
	}
	*i += 2
	v, err := strconv.Atoi(fields[*i])
	if err != nil {
		return Score{}, &errors.InfoError{Err: errors.ErrMalformedInfo, Field: "score", Token: fields[*i]}
	}
	s.Value = v
	return s, nil
}

func missing(field string) error {
	return &errors.InfoError{Err: errors.ErrMalformedInfo, Field: field}
}
