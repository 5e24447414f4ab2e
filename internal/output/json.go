package output

import (
	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// JSONEval is one record in JSON format.
type JSONEval struct {
	Label    string     `json:"label,omitempty"`
	FEN      string     `json:"fen,omitempty"`
	Depth    int        `json:"depth,omitempty"`
	Nodes    int64      `json:"nodes,omitempty"`
	Time     int64      `json:"time,omitempty"`
	Progress float64    `json:"progress,omitempty"`
	Cached   bool       `json:"cached,omitempty"`
	Lines    []JSONLine `json:"lines,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// JSONLine is one principal variation in JSON format.
type JSONLine struct {
	MultiPV   int          `json:"multipv"`
	Depth     int          `json:"depth"`
	Score     engine.Score `json:"score"`
	ScoreText string       `json:"scoreText"`
	UCI       []string     `json:"uci"`
	SAN       []string     `json:"san"`
}

// JSONOutput holds multiple records for array output.
type JSONOutput struct {
	Evaluations []*JSONEval `json:"evaluations"`
}

// EvalToJSON converts a record to JSON form.
func EvalToJSON(rec Record, precision int) *JSONEval {
	je := &JSONEval{Label: rec.Label, Cached: rec.Cached}
	if rec.Err != nil {
		je.Error = rec.Err.Error()
	}
	if rec.Eval == nil {
		return je
	}

	ev := rec.Eval
	je.FEN = ev.FEN
	je.Depth = ev.Depth
	je.Nodes = ev.Nodes
	je.Time = ev.Time
	je.Progress = ev.Progress
	je.Lines = make([]JSONLine, 0, len(ev.BestMoves))
	for _, bm := range ev.BestMoves {
		je.Lines = append(je.Lines, JSONLine{
			MultiPV:   bm.MultiPV,
			Depth:     bm.Depth,
			Score:     bm.Score,
			ScoreText: engine.FormatScore(bm.Score, precision),
			UCI:       nonNil(bm.UCIMoves),
			SAN:       nonNil(bm.SANMoves),
		})
	}
	return je
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
