package engine

import (
	"strings"
	"testing"

	"github.com/lgbarn/uci-analysis-go/internal/chess"
	"github.com/lgbarn/uci-analysis-go/internal/testutil"
)

const startPosition = "position fen " + chess.StartFEN + " moves"

// recorder captures outbound commands.
type recorder struct {
	cmds []string
}

func (r *recorder) send(cmd string) { r.cmds = append(r.cmds, cmd) }

func (r *recorder) reset() { r.cmds = nil }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.cmds {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// newReadyProtocol returns a protocol that has completed the handshake,
// with the recorder cleared.
func newReadyProtocol(t *testing.T, opts ...Option) (*Protocol, *recorder) {
	t.Helper()
	rec := &recorder{}
	p := NewProtocol(opts...)
	p.Connected(rec.send)
	p.Received("uciok")
	p.Received("readyok")
	if p.State() != StateReady {
		t.Fatalf("State() = %v; want ready", p.State())
	}
	rec.reset()
	return p, rec
}

func mustWork(t *testing.T, req Request) *Work {
	t.Helper()
	w, err := NewWork(req)
	if err != nil {
		t.Fatalf("NewWork() error = %v", err)
	}
	return w
}

// collect drains whatever is queued on w without blocking.
func collect(w *Work) []EvalResult {
	var out []EvalResult
	for {
		select {
		case ev, ok := <-w.Results():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func isClosed(w *Work) bool {
	select {
	case <-w.Done():
		return true
	default:
		return false
	}
}

// Work submitted during the handshake starts once readyok arrives.
func TestProtocol_HandshakeThenSearch(t *testing.T) {
	rec := &recorder{}
	p := NewProtocol()
	if p.State() != StateUninitialized {
		t.Fatalf("State() = %v; want uninitialized", p.State())
	}

	p.Connected(rec.send)
	testutil.AssertEqual(t, rec.cmds, []string{"uci"})
	if p.State() != StateHandshake {
		t.Fatalf("State() = %v; want handshake", p.State())
	}

	w := mustWork(t, Request{Search: Depth(20), Threads: 2, HashSize: 32, MultiPV: 3})
	p.Compute(w)
	testutil.AssertEqual(t, rec.cmds, []string{"uci"}, "nothing is sent before the engine is ready")

	p.Received("id name Stockfish 16")
	p.Received("uciok")
	p.Received("readyok")

	testutil.AssertEqual(t, rec.cmds, []string{
		"uci",
		"setoption name UCI_AnalyseMode value true",
		"setoption name Analysis Contempt value Off",
		"setoption name UCI_Chess960 value true",
		"ucinewgame",
		"isready",
		"setoption name Threads value 2",
		"setoption name Hash value 32",
		"setoption name MultiPV value 3",
		startPosition,
		"go depth 20",
	})
	if p.State() != StateSearching || !p.IsComputing() {
		t.Errorf("State() = %v, IsComputing() = %v; want searching, true", p.State(), p.IsComputing())
	}
}

func TestProtocol_DefaultOptionsNotSent(t *testing.T) {
	p, rec := newReadyProtocol(t)
	p.Compute(mustWork(t, Request{Moves: []string{"e2e4", "e7e5"}, Search: Nodes(100000)}))

	testutil.AssertEqual(t, rec.cmds, []string{
		startPosition + " e2e4 e7e5",
		"go nodes 100000",
	})
}

// Movetime progress follows the reported time; PVs come back in SAN.
func TestProtocol_MovetimeProgress(t *testing.T) {
	p, _ := newReadyProtocol(t)
	w := mustWork(t, Request{Search: Movetime(1000)})
	p.Compute(w)

	p.Received("info depth 10 seldepth 14 multipv 1 score cp 31 nodes 52000 nps 104000 time 500 pv e2e4 e7e5")

	got := collect(w)
	if len(got) != 1 {
		t.Fatalf("got %d snapshots; want 1", len(got))
	}
	testutil.AssertEqual(t, got[0], EvalResult{
		Progress: 50,
		FEN:      chess.StartFEN,
		Depth:    10,
		Nodes:    52000,
		Time:     500,
		BestMoves: []BestMoves{{
			Depth:    10,
			Nodes:    52000,
			Score:    Score{Kind: ScoreCP, Value: 31},
			NPS:      104000,
			MultiPV:  1,
			UCIMoves: []string{"e2e4", "e7e5"},
			SANMoves: []string{"e4", "e5"},
		}},
	})
}

// A new submission stops the running search and starts after its bestmove.
func TestProtocol_ComputePreemptsRunningSearch(t *testing.T) {
	p, rec := newReadyProtocol(t)
	first := mustWork(t, Request{})
	second := mustWork(t, Request{Search: Depth(5)})

	p.Compute(first)
	p.Received("info depth 7 multipv 1 score cp 12 nodes 9000 time 40 pv d2d4")
	p.Compute(second)

	if got := rec.count("go "); got != 1 {
		t.Fatalf("go commands before bestmove = %d; want 1", got)
	}
	if got := rec.count("stop"); got != 1 {
		t.Fatalf("stop commands = %d; want 1", got)
	}
	if p.IsComputing() {
		t.Error("IsComputing() = true while the first search is being stopped")
	}

	p.Received("info depth 8 multipv 1 score cp 15 nodes 12000 time 55 pv d2d4 d7d5")
	p.Received("bestmove d2d4 ponder d7d5")

	snaps := collect(first)
	if len(snaps) != 3 {
		t.Fatalf("first work got %d snapshots; want 3", len(snaps))
	}
	if snaps[2].Depth != 8 {
		t.Errorf("final snapshot depth = %d; want 8", snaps[1].Depth)
	}
	if !isClosed(first) {
		t.Error("first work not closed after bestmove")
	}

	testutil.AssertEqual(t, rec.cmds[len(rec.cmds)-2:], []string{startPosition, "go depth 5"})
	if got := rec.count("go "); got != 2 {
		t.Errorf("go commands = %d; want 2", got)
	}
	if got := rec.count("stop"); got != 1 {
		t.Errorf("stop commands = %d; want 1", got)
	}
	if p.Current() != second {
		t.Error("second work is not current")
	}
}

func TestProtocol_StagedWorkSuperseded(t *testing.T) {
	p, rec := newReadyProtocol(t)
	running := mustWork(t, Request{})
	staged := mustWork(t, Request{Search: Depth(3)})
	latest := mustWork(t, Request{Search: Depth(4)})

	p.Compute(running)
	p.Compute(staged)
	p.Compute(latest)

	if !isClosed(staged) {
		t.Fatal("superseded work should be closed")
	}
	if len(collect(staged)) != 0 {
		t.Error("superseded work should not receive snapshots")
	}
	if got := rec.count("stop"); got != 1 {
		t.Errorf("stop commands = %d; want 1", got)
	}

	p.Received("bestmove e2e4")
	testutil.AssertEqual(t, rec.cmds[len(rec.cmds)-1], "go depth 4")
}

func TestProtocol_MultiPVGroups(t *testing.T) {
	p, rec := newReadyProtocol(t)
	w := mustWork(t, Request{Search: Depth(20), MultiPV: 3})
	p.Compute(w)
	testutil.AssertEqual(t, rec.count("setoption name MultiPV value 3"), 1)

	// The first group reveals how many lines the engine reports.
	p.Received("info depth 1 multipv 1 score cp 20 nodes 100 time 1 pv e2e4")
	p.Received("info depth 1 multipv 2 score cp 10 nodes 200 time 1 pv d2d4")
	p.Received("info depth 1 multipv 3 score cp 5 nodes 300 time 1 pv c2c4")
	if got := len(collect(w)); got != 3 {
		t.Fatalf("first group emitted %d snapshots; want 3", got)
	}

	p.Received("info depth 12 multipv 1 score cp 25 nodes 1000 time 10 pv e2e4 e7e5")
	p.Received("info depth 11 multipv 2 score cp 18 nodes 1100 time 11 pv d2d4 d7d5")
	if got := len(collect(w)); got != 0 {
		t.Fatalf("incomplete group emitted %d snapshots", got)
	}
	p.Received("info depth 12 multipv 3 score cp 9 nodes 1200 time 12 pv c2c4 e7e5")

	snaps := collect(w)
	if len(snaps) != 1 {
		t.Fatalf("second group emitted %d snapshots; want 1", len(snaps))
	}
	ev := snaps[0]
	var order []int
	for _, bm := range ev.BestMoves {
		order = append(order, bm.MultiPV)
	}
	testutil.AssertEqual(t, order, []int{1, 2, 3})
	if ev.Depth != 11 {
		t.Errorf("snapshot depth = %d; want shallowest line depth 11", ev.Depth)
	}
	if ev.Progress != 60 {
		t.Errorf("progress = %v; want 60", ev.Progress)
	}
}

func TestProtocol_OrphanSecondaryLineIgnored(t *testing.T) {
	p, _ := newReadyProtocol(t)
	w := mustWork(t, Request{MultiPV: 2})
	p.Compute(w)

	p.Received("info depth 5 multipv 2 score cp 10 nodes 100 time 1 pv d2d4")
	if got := len(collect(w)); got != 0 {
		t.Errorf("multipv 2 without an open snapshot emitted %d snapshots", got)
	}
}

func TestProtocol_ScoreFromWhitePointOfView(t *testing.T) {
	tests := []struct {
		name  string
		moves []string
		line  string
		want  Score
		san   []string
	}{
		{
			name: "white to move keeps sign",
			line: "info depth 9 multipv 1 score cp -45 nodes 100 time 3 pv e2e4",
			want: Score{Kind: ScoreCP, Value: -45},
			san:  []string{"e4"},
		},
		{
			name:  "black to move negates",
			moves: []string{"e2e4"},
			line:  "info depth 9 multipv 1 score cp 30 nodes 100 time 3 pv e7e5 g1f3",
			want:  Score{Kind: ScoreCP, Value: -30},
			san:   []string{"e5", "Nf3"},
		},
		{
			name:  "black mates",
			moves: []string{"f2f3", "e7e5", "g2g4"},
			line:  "info depth 2 multipv 1 score mate 1 nodes 50 time 1 pv d8h4",
			want:  Score{Kind: ScoreMate, Value: -1},
			san:   []string{"Qh4#"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newReadyProtocol(t)
			w := mustWork(t, Request{Moves: tt.moves})
			p.Compute(w)
			p.Received(tt.line)

			snaps := collect(w)
			if len(snaps) != 1 {
				t.Fatalf("got %d snapshots; want 1", len(snaps))
			}
			best, _ := snaps[0].Best()
			testutil.AssertEqual(t, best.Score, tt.want)
			testutil.AssertEqual(t, best.SANMoves, tt.san)
		})
	}
}

func TestProtocol_DroppedLines(t *testing.T) {
	lines := []string{
		"info depth 10 seldepth 12 multipv 1 score cp 20 nodes 100 time 5",
		"info depth 10 multipv 1 score cp 20 time 5 pv e2e4",
		"info depth 10 multipv 1 score cp 20 nodes 100 pv e2e4",
		"info depth 10 multipv 1 nodes 100 time 5 pv e2e4",
		"info depth 10 multipv 1 score mate 0 nodes 100 time 5 pv e2e4",
		"info depth ten multipv 1 score cp 20 nodes 100 time 5 pv e2e4",
		"info depth 10 multipv 1 score cp 2x nodes 100 time 5 pv e2e4",
		"info string NNUE evaluation enabled",
		"info currmove e2e4 currmovenumber 1",
		"   ",
		"readyok extra",
	}

	p, _ := newReadyProtocol(t)
	w := mustWork(t, Request{})
	p.Compute(w)
	for _, line := range lines {
		p.Received(line)
	}
	if got := collect(w); len(got) != 0 {
		t.Errorf("dropped lines produced %d snapshots: %+v", len(got), got)
	}
	if !p.IsComputing() {
		t.Error("malformed telemetry must not end the search")
	}
}

func TestProtocol_TruncatedPV(t *testing.T) {
	p, _ := newReadyProtocol(t)
	w := mustWork(t, Request{})
	p.Compute(w)
	p.Received("info depth 4 multipv 1 score cp 10 nodes 100 time 2 pv e2e4 e2e4 g1f3")

	snaps := collect(w)
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots; want 1", len(snaps))
	}
	best, _ := snaps[0].Best()
	testutil.AssertEqual(t, best.UCIMoves, []string{"e2e4"})
	testutil.AssertEqual(t, best.SANMoves, []string{"e4"})
}

func TestProtocol_DepthCeilingStopsSearch(t *testing.T) {
	p, rec := newReadyProtocol(t, WithDepthCeiling(10))
	w := mustWork(t, Request{})
	p.Compute(w)

	p.Received("info depth 9 multipv 1 score cp 10 nodes 100 time 2 pv e2e4")
	if rec.count("stop") != 0 {
		t.Fatal("stopped below the ceiling")
	}
	p.Received("info depth 10 multipv 1 score cp 12 nodes 200 time 3 pv e2e4")
	if rec.count("stop") != 1 {
		t.Fatal("ceiling did not stop the search")
	}
	if p.IsComputing() {
		t.Error("IsComputing() = true after ceiling stop")
	}
	p.Received("info depth 11 multipv 1 score cp 14 nodes 300 time 4 pv e2e4")
	if rec.count("stop") != 1 {
		t.Error("ceiling sent stop twice")
	}

	p.Received("bestmove e2e4")
	snaps := collect(w)
	if len(snaps) != 4 {
		t.Fatalf("got %d snapshots; want 4", len(snaps))
	}
	if snaps[3].Depth != 11 {
		t.Errorf("final snapshot depth = %d; want 11", snaps[3].Depth)
	}
	for _, ev := range snaps {
		if ev.Progress != InfiniteProgress {
			t.Errorf("infinite progress = %v; want %v", ev.Progress, InfiniteProgress)
		}
	}
}

func TestProtocol_DepthCeilingDisabled(t *testing.T) {
	p, rec := newReadyProtocol(t, WithDepthCeiling(0))
	p.Compute(mustWork(t, Request{}))
	p.Received("info depth 120 multipv 1 score cp 10 nodes 100 time 2 pv e2e4")
	if rec.count("stop") != 0 {
		t.Error("disabled ceiling stopped the search")
	}
}

func TestProtocol_StopIdempotent(t *testing.T) {
	p, rec := newReadyProtocol(t)
	p.Stop()
	if len(rec.cmds) != 0 {
		t.Fatalf("Stop() while idle sent %v", rec.cmds)
	}

	p.Compute(mustWork(t, Request{}))
	rec.reset()
	p.Stop()
	p.Stop()
	testutil.AssertEqual(t, rec.cmds, []string{"stop"})
}

func TestProtocol_StrayBestmove(t *testing.T) {
	p, rec := newReadyProtocol(t)
	p.Received("bestmove e2e4")
	p.Received("info depth 3 multipv 1 score cp 1 nodes 1 time 1 pv e2e4")
	if len(rec.cmds) != 0 {
		t.Errorf("stray lines produced commands %v", rec.cmds)
	}
	if p.State() != StateReady {
		t.Errorf("State() = %v; want ready", p.State())
	}
}

func TestProtocol_FinalSnapshotNotCarriedOver(t *testing.T) {
	p, _ := newReadyProtocol(t)
	first := mustWork(t, Request{})
	second := mustWork(t, Request{Search: Depth(1)})

	p.Compute(first)
	p.Received("info depth 6 multipv 1 score cp 10 nodes 100 time 2 pv e2e4")
	p.Compute(second)
	p.Received("bestmove e2e4")
	p.Received("bestmove (none)")

	if got := len(collect(second)); got != 0 {
		t.Errorf("second work received %d snapshots from the first", got)
	}
	if !isClosed(second) {
		t.Error("second work not closed")
	}
	if p.State() != StateReady {
		t.Errorf("State() = %v; want ready", p.State())
	}
}

func TestProtocol_ExpectedPVsResetPerWork(t *testing.T) {
	p, _ := newReadyProtocol(t)
	wide := mustWork(t, Request{MultiPV: 2})
	p.Compute(wide)
	p.Received("info depth 1 multipv 1 score cp 10 nodes 100 time 2 pv e2e4")
	p.Received("info depth 1 multipv 2 score cp 5 nodes 100 time 2 pv d2d4")
	p.Received("bestmove e2e4")

	narrow := mustWork(t, Request{MultiPV: 1})
	p.Compute(narrow)
	p.Received("info depth 1 multipv 1 score cp 10 nodes 100 time 2 pv e2e4")
	if got := len(collect(narrow)); got != 1 {
		t.Errorf("single-PV work got %d snapshots; want 1", got)
	}
}

func TestProtocol_OptionsSentOnlyOnChange(t *testing.T) {
	p, rec := newReadyProtocol(t)

	run := func(req Request) {
		p.Compute(mustWork(t, req))
		p.Received("bestmove e2e4")
	}
	run(Request{Threads: 4, HashSize: 64, MultiPV: 2})
	run(Request{Threads: 4, HashSize: 64, MultiPV: 2})
	run(Request{Threads: 4, HashSize: 64, MultiPV: 1})

	testutil.AssertEqual(t, rec.count("setoption name Threads"), 1)
	testutil.AssertEqual(t, rec.count("setoption name Hash"), 1)
	testutil.AssertEqual(t, rec.count("setoption name MultiPV"), 2)
	testutil.AssertEqual(t, rec.count("go infinite"), 3)
}

func TestProtocol_ThreatWork(t *testing.T) {
	p, rec := newReadyProtocol(t)
	w := mustWork(t, Request{Moves: []string{"e2e4"}, Threat: true})
	p.Compute(w)

	want := "position fen rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1 moves"
	testutil.AssertEqual(t, rec.cmds[0], want)

	p.Received("info depth 5 multipv 1 score cp 80 nodes 10 time 1 pv d2d4")
	snaps := collect(w)
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots; want 1", len(snaps))
	}
	best, _ := snaps[0].Best()
	testutil.AssertEqual(t, best.Score, Score{Kind: ScoreCP, Value: 80})
	testutil.AssertEqual(t, best.SANMoves, []string{"d4"})
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateHandshake:     "handshake",
		StateReady:         "ready",
		StateSearching:     "searching",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q; want %q", s, s.String(), want)
		}
	}
}

func TestProtocol_Cancel(t *testing.T) {
	p, rec := newReadyProtocol(t)
	running := mustWork(t, Request{})
	staged := mustWork(t, Request{Search: Depth(2)})

	p.Compute(running)
	p.Compute(staged)
	p.Cancel(staged)
	if !isClosed(staged) {
		t.Fatal("cancelled staged work not closed")
	}

	p.Received("bestmove e2e4")
	if p.State() != StateReady {
		t.Errorf("State() = %v; want ready after cancelled work", p.State())
	}
	if got := rec.count("go "); got != 1 {
		t.Errorf("go commands = %d; want 1", got)
	}

	again := mustWork(t, Request{})
	p.Compute(again)
	p.Cancel(again)
	p.Cancel(again)
	p.Cancel(running)
	testutil.AssertEqual(t, rec.count("stop"), 2)
}

func TestProtocol_Disconnected(t *testing.T) {
	p, rec := newReadyProtocol(t)
	current := mustWork(t, Request{})
	p.Compute(current)
	p.Received("info depth 5 multipv 1 score cp 20 nodes 100 nps 1000 time 10 pv e2e4")
	staged := mustWork(t, Request{Search: Depth(3)})
	p.Compute(staged)

	p.Disconnected()

	snaps := collect(current)
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots; want 2", len(snaps))
	}
	if !isClosed(current) || !isClosed(staged) {
		t.Error("pending work not closed")
	}
	if p.State() != StateUninitialized {
		t.Errorf("State() = %v; want uninitialized", p.State())
	}

	rec.reset()
	late := mustWork(t, Request{})
	p.Compute(late)
	if !isClosed(late) {
		t.Error("work accepted after disconnect")
	}
	if len(rec.cmds) != 0 {
		t.Errorf("sent %v after disconnect", rec.cmds)
	}
	p.Disconnected()
}

func TestProtocol_CastlingSentAsKingTakesRook(t *testing.T) {
	p, rec := newReadyProtocol(t)
	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1"}
	w := mustWork(t, Request{Moves: moves, Search: Depth(5)})
	p.Compute(w)

	testutil.AssertEqual(t, rec.cmds, []string{
		startPosition + " e2e4 e7e5 g1f3 b8c6 f1c4 g8f6 e1h1",
		"go depth 5",
	})
	testutil.AssertEqual(t, w.Turn, chess.Black)

	p.Received("info depth 5 multipv 1 score cp 40 nodes 5000 time 20 pv f8c5 d2d3")
	snaps := collect(w)
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots; want 1", len(snaps))
	}
	best, _ := snaps[0].Best()
	testutil.AssertEqual(t, best.SANMoves, []string{"Bc5", "d3"})
	testutil.AssertEqual(t, best.Score, Score{Kind: ScoreCP, Value: -40})
}
