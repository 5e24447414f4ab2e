package engine

import (
	"github.com/google/uuid"

	"github.com/lgbarn/uci-analysis-go/internal/chess"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// Engine option defaults; the option cache starts from these values.
const (
	DefaultThreads  = 1
	DefaultHashSize = 16
	DefaultMultiPV  = 1

	defaultResultBuffer = 16
)

// Request describes one analysis the caller wants.
type Request struct {
	InitialFEN string   // Starting position; empty means the standard start
	Moves      []string // Coordinate moves leading to the position to search
	Search     SearchBy
	Threads    int
	HashSize   int // Megabytes
	MultiPV    int
	Threat     bool // Search the final position with the other side to move
}

// Work is a submitted analysis request. Once passed to Compute it belongs
// to the protocol; the caller only reads Results and Done.
type Work struct {
	ID         string
	InitialFEN string       // Sent with the position command
	Moves      []string     // Sent with the position command
	CurrentFEN string       // Position actually searched, used to replay PVs
	Turn       chess.Colour // Side to move in CurrentFEN
	Search     SearchBy
	Threads    int
	HashSize   int
	MultiPV    int
	Threat     bool

	stopRequested bool
	finished      bool
	results       chan EvalResult
	done          chan struct{}
}

// WorkOption configures a Work.
type WorkOption func(*Work)

// WithResultBuffer sets how many snapshots may queue before older ones are
// discarded in favour of newer ones.
func WithResultBuffer(n int) WorkOption {
	return func(w *Work) {
		if n >= 1 {
			w.results = make(chan EvalResult, n)
		}
	}
}

// WithID overrides the generated work ID.
func WithID(id string) WorkOption {
	return func(w *Work) {
		if id != "" {
			w.ID = id
		}
	}
}

// NewWork validates req and resolves the position to search.
func NewWork(req Request, opts ...WorkOption) (*Work, error) {
	if err := req.Search.Validate(); err != nil {
		return nil, err
	}
	initial := req.InitialFEN
	if initial == "" {
		initial = chess.StartFEN
	}
	pos, err := chess.Replay(initial, req.Moves)
	if err != nil {
		return nil, errors.Wrap(err, "resolving position")
	}

	w := &Work{
		ID:         uuid.NewString(),
		InitialFEN: initial,
		Moves:      pos.EngineMoves(),
		CurrentFEN: pos.FEN(),
		Turn:       pos.Turn(),
		Search:     req.Search,
		Threads:    positiveOr(req.Threads, DefaultThreads),
		HashSize:   positiveOr(req.HashSize, DefaultHashSize),
		MultiPV:    positiveOr(req.MultiPV, DefaultMultiPV),
		Threat:     req.Threat,
		results:    make(chan EvalResult, defaultResultBuffer),
		done:       make(chan struct{}),
	}
	if req.Threat {
		swapped, err := chess.SwapTurn(w.CurrentFEN)
		if err != nil {
			return nil, errors.Wrap(err, "threat position")
		}
		w.InitialFEN = swapped
		w.Moves = nil
		w.CurrentFEN = swapped
		w.Turn = w.Turn.Opposite()
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Results yields snapshots in emission order and is closed once the work
// completes or is superseded before it ran.
func (w *Work) Results() <-chan EvalResult {
	return w.results
}

// Done is closed together with Results.
func (w *Work) Done() <-chan struct{} {
	return w.done
}

// emit hands ev to the consumer. When the buffer is full the oldest queued
// snapshot is discarded; the protocol never blocks on a slow consumer.
func (w *Work) emit(ev EvalResult) {
	if w.finished {
		return
	}
	for {
		select {
		case w.results <- ev:
			return
		default:
		}
		select {
		case <-w.results:
		default:
		}
	}
}

func (w *Work) finish() {
	if w.finished {
		return
	}
	w.finished = true
	close(w.results)
	close(w.done)
}

func positiveOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
