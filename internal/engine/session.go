package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Transport carries command lines to an engine and its output back.
type Transport interface {
	Send(cmd string) error
	ReadLines(ctx context.Context, fn func(line string)) error
}

// Session binds a Protocol to a Transport and funnels every call and every
// inbound line through one mutex.
type Session struct {
	mu    sync.Mutex
	proto *Protocol
	t     Transport
	log   zerolog.Logger
}

// NewSession connects a protocol to t and sends the handshake. Call Run to
// start processing engine output.
func NewSession(t Transport, opts ...Option) *Session {
	p := NewProtocol(opts...)
	s := &Session{proto: p, t: t, log: p.log}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.Connected(s.send)
	return s
}

func (s *Session) send(cmd string) {
	if err := s.t.Send(cmd); err != nil {
		s.log.Error().Err(err).Str("cmd", cmd).Msg("engine write failed")
	}
}

// Run feeds engine output into the protocol until ctx is done or the
// transport stops. Pending work is closed when it returns.
func (s *Session) Run(ctx context.Context) error {
	err := s.t.ReadLines(ctx, s.Received)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proto.Disconnected()
	return err
}

// Received processes one engine line.
func (s *Session) Received(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proto.Received(line)
}

// Compute submits w; see Protocol.Compute.
func (s *Session) Compute(w *Work) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proto.Compute(w)
}

// Stop asks the engine to end the active search.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proto.Stop()
}

// Cancel withdraws w; see Protocol.Cancel.
func (s *Session) Cancel(w *Work) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proto.Cancel(w)
}

// IsComputing reports whether a search is running and not being stopped.
func (s *Session) IsComputing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proto.IsComputing()
}

// State returns the protocol state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proto.State()
}

// Analyze submits w and blocks until it completes, returning the last
// snapshot. If ctx ends first the work is cancelled and Analyze still waits
// for the engine's final answer; ok is false when nothing was emitted.
// Run must be active for Analyze to return.
func (s *Session) Analyze(ctx context.Context, w *Work) (last EvalResult, ok bool, err error) {
	s.Compute(w)
	results := w.Results()
	for {
		select {
		case ev, open := <-results:
			if !open {
				return last, ok, nil
			}
			last, ok = ev, true
		case <-ctx.Done():
			s.Cancel(w)
			for ev := range results {
				last, ok = ev, true
			}
			return last, ok, ctx.Err()
		}
	}
}
