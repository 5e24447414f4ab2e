package engine

// BestMoves is one principal variation of an evaluation.
type BestMoves struct {
	Depth    int      `json:"depth"`
	Nodes    int64    `json:"nodes"`
	Score    Score    `json:"score"`
	NPS      int64    `json:"nps"`
	MultiPV  int      `json:"multipv"`
	UCIMoves []string `json:"uciMoves"`
	SANMoves []string `json:"sanMoves"`
}

// EvalResult is a complete snapshot of a multiPV group.
// Depth is the shallowest depth among its lines.
type EvalResult struct {
	Progress  float64     `json:"progress"`
	FEN       string      `json:"fen"`
	Depth     int         `json:"depth"`
	Nodes     int64       `json:"nodes"`
	Time      int64       `json:"time"`
	BestMoves []BestMoves `json:"bestMoves"`
}

// Best returns the first line, if any.
func (e *EvalResult) Best() (BestMoves, bool) {
	if len(e.BestMoves) == 0 {
		return BestMoves{}, false
	}
	return e.BestMoves[0], true
}

// clone copies e so the accumulator can keep growing after emission.
func (e *EvalResult) clone() EvalResult {
	c := *e
	c.BestMoves = make([]BestMoves, len(e.BestMoves))
	copy(c.BestMoves, e.BestMoves)
	return c
}
