// Package server exposes an engine session over a small HTTP API: submit an
// analysis, poll its latest snapshot and stop it.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/config"
	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// Analyzer is the engine session the API drives. *engine.Session
// implements it.
type Analyzer interface {
	Compute(w *engine.Work)
	Stop()
	IsComputing() bool
	State() engine.State
}

// Server holds the most recent analysis and its latest snapshot.
type Server struct {
	cfg *config.Config
	eng Analyzer
	log zerolog.Logger

	mu  sync.Mutex
	job *job
}

type job struct {
	work *engine.Work
	last *engine.EvalResult
	done bool
}

// New creates a Server. cfg supplies defaults for fields a request omits.
func New(cfg *config.Config, eng Analyzer, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, eng: eng, log: log}
}

// NewRouter builds the HTTP router.
func NewRouter(s *Server) *gin.Engine {
	origins := s.cfg.Server.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", s.Health)
	router.POST("/analysis", s.StartAnalysis)
	router.GET("/analysis", s.GetAnalysis)
	router.POST("/analysis/stop", s.StopAnalysis)
	return router
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// track records every snapshot of j until its work completes.
func (s *Server) track(j *job) {
	for ev := range j.work.Results() {
		ev := ev
		s.mu.Lock()
		j.last = &ev
		s.mu.Unlock()
	}
	s.mu.Lock()
	j.done = true
	s.mu.Unlock()
	s.log.Debug().Str("work", j.work.ID).Msg("analysis finished")
}

// Health reports liveness and the engine state.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"engine": s.eng.State().String(),
	})
}
