package chess

import (
	"fmt"

	nchess "github.com/notnil/chess"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// Position is a replayable chess position.
// Play advances it in place, so a Position is not safe for concurrent use.
type Position struct {
	pos    *nchess.Position
	played []string
}

// NewPosition parses a FEN string.
func NewPosition(fen string) (*Position, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", fen, errors.ErrInvalidFEN)
	}
	return &Position{pos: nchess.NewGame(opt).Position()}, nil
}

// Play replays a coordinate-notation move and returns its SAN.
// Chess960-style castling (king takes own rook) is accepted.
func (p *Position) Play(uci string) (string, error) {
	move, err := p.legalMove(uci)
	if err != nil {
		return "", err
	}
	san := nchess.AlgebraicNotation{}.Encode(p.pos, move)
	p.played = append(p.played, engineMove(move))
	p.pos = p.pos.Update(move)
	return san, nil
}

// EngineMoves returns the moves played so far in the notation an engine in
// UCI_Chess960 mode reads: castling is written as king takes own rook.
func (p *Position) EngineMoves() []string {
	return append([]string(nil), p.played...)
}

// FEN returns the current position as a FEN string.
func (p *Position) FEN() string {
	return p.pos.String()
}

// Turn returns the side to move.
func (p *Position) Turn() Colour {
	return colourOf(p.pos.Turn())
}

// Hash returns a digest of the position (board, turn, castling, en passant).
func (p *Position) Hash() [16]byte {
	return p.pos.Hash()
}

// legalMove finds the generated move matching uci, so the returned move
// carries the check/capture/castle tags SAN encoding depends on.
func (p *Position) legalMove(uci string) (*nchess.Move, error) {
	uci = normalizeCastling(p.pos, uci)
	decoded, err := nchess.UCINotation{}.Decode(p.pos, uci)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIllegalMove, "move %q", uci)
	}
	for _, m := range p.pos.ValidMoves() {
		if m.S1() == decoded.S1() && m.S2() == decoded.S2() && m.Promo() == decoded.Promo() {
			return m, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrIllegalMove, "move %q", uci)
}

// engineMove renders m in coordinate notation with castling as king takes
// own rook ("e1g1" becomes "e1h1").
func engineMove(m *nchess.Move) string {
	uci := nchess.UCINotation{}.Encode(nil, m)
	var rookFile string
	switch {
	case m.HasTag(nchess.KingSideCastle):
		rookFile = "h"
	case m.HasTag(nchess.QueenSideCastle):
		rookFile = "a"
	default:
		return uci
	}
	return uci[:2] + rookFile + uci[3:]
}

// normalizeCastling rewrites king-takes-rook castling ("e1h1") into the
// king-two-squares form ("e1g1") the rules library expects.
func normalizeCastling(pos *nchess.Position, uci string) string {
	if len(uci) != 4 {
		return uci
	}
	m, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return uci
	}
	board := pos.Board()
	king, rook := board.Piece(m.S1()), board.Piece(m.S2())
	if king.Type() != nchess.King || rook.Type() != nchess.Rook || king.Color() != rook.Color() {
		return uci
	}
	if m.S1().Rank() != m.S2().Rank() {
		return uci
	}
	file := "c"
	if m.S2().File() > m.S1().File() {
		file = "g"
	}
	return uci[:2] + file + uci[3:]
}

// Replay plays moves from fen and returns the resulting position.
// Unlike Line it fails on the first move that cannot be played.
func Replay(fen string, moves []string) (*Position, error) {
	pos, err := NewPosition(fen)
	if err != nil {
		return nil, err
	}
	for i, m := range moves {
		if _, err := pos.Play(m); err != nil {
			return nil, errors.Wrapf(err, "ply %d", i+1)
		}
	}
	return pos, nil
}

// Line replays a principal variation from fen, returning the playable
// prefix in coordinate and algebraic notation. The walk stops at the first
// move that does not replay; an unparseable fen yields empty slices.
func Line(fen string, moves []string) (uci, san []string) {
	pos, err := NewPosition(fen)
	if err != nil {
		return nil, nil
	}
	uci = make([]string, 0, len(moves))
	san = make([]string, 0, len(moves))
	for _, m := range moves {
		s, err := pos.Play(m)
		if err != nil {
			break
		}
		uci = append(uci, m)
		san = append(san, s)
	}
	return uci, san
}
