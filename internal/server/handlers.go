package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// SearchRequest is the optional stopping criterion of an AnalysisRequest.
type SearchRequest struct {
	Kind  string `json:"kind"`
	Value int    `json:"value"`
}

// AnalysisRequest is the body of POST /analysis. Zero values fall back to
// the server configuration.
type AnalysisRequest struct {
	FEN     string         `json:"fen"`
	Moves   []string       `json:"moves"`
	Search  *SearchRequest `json:"search"`
	Threads int            `json:"threads"`
	Hash    int            `json:"hash"`
	MultiPV int            `json:"multipv"`
	Threat  bool           `json:"threat"`
}

// AnalysisStatus is the body of GET /analysis.
type AnalysisStatus struct {
	ID        string             `json:"id"`
	FEN       string             `json:"fen"`
	Search    string             `json:"search"`
	Done      bool               `json:"done"`
	Computing bool               `json:"computing"`
	Result    *engine.EvalResult `json:"result,omitempty"`
}

func (s *Server) request(body AnalysisRequest) (engine.Request, error) {
	req, err := s.cfg.Request(body.FEN, body.Moves)
	if err != nil {
		return req, err
	}
	if body.Search != nil {
		kind, err := engine.ParseSearchKind(body.Search.Kind)
		if err != nil {
			return req, err
		}
		req.Search = engine.SearchBy{Kind: kind, Value: body.Search.Value}
	}
	if body.Threads > 0 {
		req.Threads = body.Threads
	}
	if body.Hash > 0 {
		req.HashSize = body.Hash
	}
	if body.MultiPV > 0 {
		req.MultiPV = body.MultiPV
	}
	req.Threat = body.Threat
	return req, nil
}

// StartAnalysis submits a new analysis, preempting any running one.
func (s *Server) StartAnalysis(c *gin.Context) {
	var body AnalysisRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := s.request(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := engine.NewWork(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	j := &job{work: w}
	s.mu.Lock()
	s.job = j
	s.eng.Compute(w)
	s.mu.Unlock()
	go s.track(j)

	s.log.Info().Str("work", w.ID).Str("fen", w.CurrentFEN).Stringer("search", w.Search).Msg("analysis submitted")
	c.JSON(http.StatusAccepted, gin.H{
		"id":     w.ID,
		"fen":    w.CurrentFEN,
		"search": w.Search.String(),
	})
}

// GetAnalysis returns the latest snapshot of the most recent analysis.
func (s *Server) GetAnalysis(c *gin.Context) {
	s.mu.Lock()
	j := s.job
	var status AnalysisStatus
	if j != nil {
		status = AnalysisStatus{
			ID:     j.work.ID,
			FEN:    j.work.CurrentFEN,
			Search: j.work.Search.String(),
			Done:   j.done,
			Result: j.last,
		}
	}
	s.mu.Unlock()

	if j == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis submitted"})
		return
	}
	status.Computing = !status.Done && s.eng.IsComputing()
	c.JSON(http.StatusOK, status)
}

// StopAnalysis asks the engine to end the running search.
func (s *Server) StopAnalysis(c *gin.Context) {
	wasComputing := s.eng.IsComputing()
	s.eng.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": wasComputing})
}
