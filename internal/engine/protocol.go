// Package engine drives a UCI analysis engine.
//
// Protocol is a synchronous reducer over the engine's output: it keeps at
// most one search running, stages the next request until the engine has
// acknowledged the previous one, and folds multiPV telemetry into complete
// EvalResult snapshots. It has no locking of its own; Session serializes
// access when the engine output arrives on another goroutine.
package engine

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/chess"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// DefaultDepthCeiling is the depth at which a search is stopped even when
// it was requested as infinite.
const DefaultDepthCeiling = 99

// State is the conversation state with the engine.
type State int

const (
	StateUninitialized State = iota // Connected not yet called
	StateHandshake                  // Waiting for uciok/readyok
	StateReady                      // Idle
	StateSearching                  // A Work is active
)

// String returns a lowercase name for logs.
func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	}
	return "uninitialized"
}

// SendFunc writes one command line to the engine.
type SendFunc func(cmd string)

// Protocol is the UCI state machine. The zero value is not usable; call
// NewProtocol.
type Protocol struct {
	send    SendFunc
	ready   bool
	closed  bool
	current *Work
	next    *Work
	options *optionCache

	expectedPVs int
	eval        *EvalResult

	depthCeiling int
	replay       LineReplayer
	log          zerolog.Logger
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Protocol) {
		p.log = l
	}
}

// WithDepthCeiling stops any search whose snapshot depth reaches n.
// Zero disables the ceiling.
func WithDepthCeiling(n int) Option {
	return func(p *Protocol) {
		if n >= 0 {
			p.depthCeiling = n
		}
	}
}

// WithLineReplayer replaces the PV replayer, chess.Line by default.
func WithLineReplayer(r LineReplayer) Option {
	return func(p *Protocol) {
		if r != nil {
			p.replay = r
		}
	}
}

// NewProtocol returns a protocol in StateUninitialized.
func NewProtocol(opts ...Option) *Protocol {
	p := &Protocol{
		options:      newOptionCache(),
		expectedPVs:  1,
		depthCeiling: DefaultDepthCeiling,
		replay:       chess.Line,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connected binds the outbound channel and starts the handshake.
func (p *Protocol) Connected(send SendFunc) {
	if p.send != nil {
		p.log.Warn().Msg("protocol already connected, rebinding")
	}
	p.send = send
	p.sendCommand("uci")
}

// Disconnected ends the conversation after the engine has gone away. The
// active Work receives its last snapshot and, like any staged Work, is
// closed; later Compute calls close their Work straight away.
func (p *Protocol) Disconnected() {
	if p.closed {
		return
	}
	p.closed = true
	p.finishCurrent()
	if p.next != nil {
		p.next.finish()
		p.next = nil
	}
	p.send = nil
	p.ready = false
	p.log.Debug().Msg("engine disconnected")
}

// Received processes one line of engine output.
func (p *Protocol) Received(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "uciok":
		p.setOption(OptionAnalyseMode, "true")
		p.setOption(OptionContempt, "Off")
		// Castling as king-takes-rook; notation only.
		p.setOption(OptionChess960, "true")
		p.sendCommand("ucinewgame")
		p.sendCommand("isready")
	case "readyok":
		if !p.ready {
			p.log.Debug().Msg("engine ready")
		}
		p.ready = true
		p.swap()
	case "bestmove":
		p.finishCurrent()
		p.swap()
	case "info":
		if p.current != nil {
			p.processInfo(fields)
		}
	}
}

// Compute stages w, asks the running search (if any) to stop and starts w
// as soon as the engine allows. A previously staged Work that never ran is
// dropped and its Results channel closed.
func (p *Protocol) Compute(w *Work) {
	if w == nil {
		return
	}
	if p.closed {
		p.log.Warn().Str("work", w.ID).Msg("engine disconnected, work dropped")
		w.finish()
		return
	}
	if p.next != nil {
		p.log.Debug().Str("work", p.next.ID).Msg("staged work superseded")
		p.next.finish()
	}
	p.next = w
	p.Stop()
	p.swap()
}

// Stop asks the engine to end the active search. Repeated calls send
// nothing further.
func (p *Protocol) Stop() {
	if p.current != nil && !p.current.stopRequested {
		p.current.stopRequested = true
		p.sendCommand("stop")
	}
}

// Cancel withdraws w: a staged Work is dropped and closed, the active one
// is stopped. Any other Work is left alone.
func (p *Protocol) Cancel(w *Work) {
	switch {
	case w == nil:
	case w == p.next:
		p.next = nil
		w.finish()
	case w == p.current:
		p.Stop()
	}
}

// IsComputing reports whether a search is running and not being stopped.
func (p *Protocol) IsComputing() bool {
	return p.current != nil && !p.current.stopRequested
}

// State returns the conversation state.
func (p *Protocol) State() State {
	switch {
	case p.send == nil:
		return StateUninitialized
	case !p.ready:
		return StateHandshake
	case p.current != nil:
		return StateSearching
	}
	return StateReady
}

// Current returns the active Work, or nil.
func (p *Protocol) Current() *Work {
	return p.current
}

// swap promotes the staged Work once the engine is ready and idle.
func (p *Protocol) swap() {
	if p.send == nil || !p.ready || p.current != nil {
		return
	}
	w := p.next
	p.next = nil
	if w == nil {
		return
	}
	p.current = w
	p.expectedPVs = 1
	p.eval = nil

	p.setOption(OptionThreads, w.Threads)
	p.setOption(OptionHash, w.HashSize)
	p.setOption(OptionMultiPV, w.MultiPV)

	p.log.Info().
		Str("work", w.ID).
		Str("fen", w.CurrentFEN).
		Stringer("search", w.Search).
		Int("multipv", w.MultiPV).
		Msg("search started")

	p.sendCommand(positionCommand(w))
	p.sendCommand(w.Search.GoCommand())
}

// finishCurrent hands the last snapshot to the active Work and retires it.
func (p *Protocol) finishCurrent() {
	w := p.current
	if w == nil {
		p.log.Debug().Msg("bestmove without active work")
		return
	}
	if p.eval != nil {
		w.emit(p.eval.clone())
	}
	w.finish()
	p.log.Info().Str("work", w.ID).Bool("stopped", w.stopRequested).Msg("search finished")
	p.current = nil
	p.eval = nil
}

func (p *Protocol) processInfo(fields []string) {
	w := p.current
	info, err := ParseInfo(fields, w.CurrentFEN, p.replay)
	if errors.Is(err, errors.ErrNoPV) {
		return
	}
	if info.MultiPV > p.expectedPVs {
		p.expectedPVs = info.MultiPV
	}
	if err != nil {
		p.log.Debug().Err(err).Str("line", strings.Join(fields, " ")).Msg("info line dropped")
		return
	}

	best := info.BestMoves(w.Turn)
	switch {
	case info.MultiPV == 1:
		p.eval = &EvalResult{
			Progress:  Progress(w.Search, info.Depth, info.Nodes, info.Time),
			FEN:       w.CurrentFEN,
			Depth:     info.Depth,
			Nodes:     info.Nodes,
			Time:      info.Time,
			BestMoves: []BestMoves{best},
		}
	case p.eval != nil:
		p.eval.BestMoves = append(p.eval.BestMoves, best)
		if info.Depth < p.eval.Depth {
			p.eval.Depth = info.Depth
		}
	default:
		return
	}

	if info.MultiPV == p.expectedPVs {
		w.emit(p.eval.clone())
		if p.depthCeiling > 0 && p.eval.Depth >= p.depthCeiling {
			p.log.Info().Str("work", w.ID).Int("depth", p.eval.Depth).Msg("depth ceiling reached")
			p.Stop()
		}
	}
}

func (p *Protocol) setOption(name string, value interface{}) {
	if p.send == nil {
		return
	}
	if cmd := p.options.diff(name, value); cmd != "" {
		p.sendCommand(cmd)
	}
}

func (p *Protocol) sendCommand(cmd string) {
	if p.send == nil {
		return
	}
	p.log.Debug().Str("cmd", cmd).Msg("send")
	p.send(cmd)
}

func positionCommand(w *Work) string {
	parts := append([]string{"position fen", w.InitialFEN, "moves"}, w.Moves...)
	return strings.Join(parts, " ")
}
