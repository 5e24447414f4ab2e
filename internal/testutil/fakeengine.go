package testutil

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DefaultPVs are legal principal variations from the starting position,
// indexed by multipv-1.
var DefaultPVs = []string{
	"e2e4 e7e5 g1f3",
	"d2d4 d7d5 c2c4",
	"g1f3 g8f6 c2c4",
	"c2c4 e7e5 b1c3",
}

// FakeEngine is an in-memory UCI engine. It records every command it is
// sent and answers the way a real engine would: uciok, readyok, a stream of
// info lines per search and a bestmove when the search ends. Infinite
// searches only finish on "stop".
type FakeEngine struct {
	mu        sync.Mutex
	sent      []string
	queue     []string
	notify    chan struct{}
	closed    bool
	multiPV   int
	searching bool
	pvs       []string

	// Silent suppresses all automatic replies; lines are then only
	// delivered through Push.
	Silent bool
}

// NewFakeEngine returns an engine that plays DefaultPVs.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		notify:  make(chan struct{}, 1),
		multiPV: 1,
		pvs:     DefaultPVs,
	}
}

// Send records cmd and queues the engine's reply.
func (f *FakeEngine) Send(cmd string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("fake engine closed")
	}
	f.sent = append(f.sent, cmd)
	if f.Silent {
		return nil
	}

	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "uci":
		f.pushLocked("id name FakeFish", "id author testutil", "option name MultiPV type spin default 1 min 1 max 500", "uciok")
	case "isready":
		f.pushLocked("readyok")
	case "setoption":
		if len(fields) == 5 && fields[2] == "MultiPV" {
			if n, err := strconv.Atoi(fields[4]); err == nil && n > 0 {
				f.multiPV = n
			}
		}
	case "go":
		f.goLocked(fields[1:])
	case "stop":
		if f.searching {
			f.searching = false
			f.pushLocked(f.bestmoveLocked())
		}
	case "quit":
		f.closeLocked()
	}
	return nil
}

func (f *FakeEngine) goLocked(args []string) {
	mode, limit := "infinite", 0
	if len(args) >= 2 {
		mode = args[0]
		limit, _ = strconv.Atoi(args[1])
	}
	depths := 3
	if mode == "depth" && limit > 0 {
		depths = limit
	}
	if mode == "infinite" {
		depths = 1
	}
	for d := 1; d <= depths; d++ {
		for k := 1; k <= f.multiPV; k++ {
			f.pushLocked(f.infoLocked(d, k, limit, mode))
		}
	}
	if mode == "infinite" {
		f.searching = true
		return
	}
	f.pushLocked(f.bestmoveLocked())
}

func (f *FakeEngine) infoLocked(depth, multipv, limit int, mode string) string {
	nodes, elapsed := depth*1000, depth*10
	switch mode {
	case "nodes":
		nodes = limit * depth / 3
	case "movetime":
		elapsed = limit * depth / 3
	}
	pv := f.pvs[(multipv-1)%len(f.pvs)]
	return fmt.Sprintf("info depth %d seldepth %d multipv %d score cp %d nodes %d nps 100000 hashfull 0 time %d pv %s",
		depth, depth+2, multipv, 40-multipv*10, nodes, elapsed, pv)
}

func (f *FakeEngine) bestmoveLocked() string {
	moves := strings.Fields(f.pvs[0])
	if len(moves) > 1 {
		return fmt.Sprintf("bestmove %s ponder %s", moves[0], moves[1])
	}
	return "bestmove " + moves[0]
}

// SetPVs replaces the principal variations reported per multipv index.
func (f *FakeEngine) SetPVs(pvs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pvs = pvs
}

// Push queues raw engine output lines.
func (f *FakeEngine) Push(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushLocked(lines...)
}

func (f *FakeEngine) pushLocked(lines ...string) {
	f.queue = append(f.queue, lines...)
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// ReadLines delivers queued output to fn in order until ctx is done or the
// engine is closed and drained.
func (f *FakeEngine) ReadLines(ctx context.Context, fn func(line string)) error {
	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			line := f.queue[0]
			f.queue = f.queue[1:]
			f.mu.Unlock()
			fn(line)
			continue
		}
		closed := f.closed
		f.mu.Unlock()
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.notify:
		}
	}
}

// Sent returns a copy of every command received so far.
func (f *FakeEngine) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// Count returns how many sent commands start with prefix.
func (f *FakeEngine) Count(prefix string) int {
	n := 0
	for _, cmd := range f.Sent() {
		if strings.HasPrefix(cmd, prefix) {
			n++
		}
	}
	return n
}

// Close stops the engine; ReadLines returns once the queue is drained.
func (f *FakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
	return nil
}

func (f *FakeEngine) closeLocked() {
	f.closed = true
	select {
	case f.notify <- struct{}{}:
	default:
	}
}
