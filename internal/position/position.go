// Package position adapts a dragontoothmg board to the piece and move queries
// the search core needs: colored piece lookup by square, capture and
// promotion classification, and a bounded from/to key for move-indexed tables.
package position

import (
	"github.com/dylhunn/dragontoothmg"
)

// Move is the 16-bit move encoding shared by the whole engine.
type Move = dragontoothmg.Move

// NoMove represents an invalid or null move.
const NoMove Move = 0

// MoveKeys is the number of distinct from/to keys, the size of every
// move-indexed table.
const MoveKeys = 64 * 64

// Startpos is the FEN of the initial position.
const Startpos = dragontoothmg.Startpos

// From returns the origin square.
func From(m Move) uint8 {
	return uint8(m.From())
}

// To returns the destination square.
func To(m Move) uint8 {
	return uint8(m.To())
}

// Key returns from*64+to, always in [0, MoveKeys).
func Key(m Move) int {
	return int(From(m))*64 + int(To(m))
}

// MoveString returns the long algebraic form of the move ("e2e4").
func MoveString(m Move) string {
	if m == NoMove {
		return "0000"
	}
	return m.String()
}

// Position wraps a dragontoothmg board. It does not own move generation;
// callers use Board directly for that.
type Position struct {
	Board *dragontoothmg.Board
}

// New wraps an existing board.
func New(b *dragontoothmg.Board) *Position {
	return &Position{Board: b}
}

// FromFEN parses a FEN string into a fresh position.
func FromFEN(fen string) *Position {
	b := dragontoothmg.ParseFen(fen)
	return &Position{Board: &b}
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color {
	if p.Board.Wtomove {
		return White
	}
	return Black
}

// PieceAt returns the colored piece on sq, or NoPiece.
func (p *Position) PieceAt(sq uint8) Piece {
	if pt := typeOn(sq, &p.Board.White); pt != NoPieceType {
		return NewPiece(pt, White)
	}
	if pt := typeOn(sq, &p.Board.Black); pt != NoPieceType {
		return NewPiece(pt, Black)
	}
	return NoPiece
}

// IsCapture reports whether m takes a piece, en passant included.
func (p *Position) IsCapture(m Move) bool {
	from, to := From(m), To(m)
	if p.PieceAt(to) != NoPiece {
		return true
	}
	// A pawn changing file onto an empty square can only be en passant.
	return p.PieceAt(from).Type() == Pawn && from%8 != to%8
}

// CapturedType returns the type of the piece m takes, Pawn for en passant,
// NoPieceType for non-captures.
func (p *Position) CapturedType(m Move) PieceType {
	if victim := p.PieceAt(To(m)); victim != NoPiece {
		return victim.Type()
	}
	if p.IsCapture(m) {
		return Pawn
	}
	return NoPieceType
}

// IsPromotion reports whether m moves a pawn onto the last rank.
func (p *Position) IsPromotion(m Move) bool {
	if p.PieceAt(From(m)).Type() != Pawn {
		return false
	}
	rank := To(m) / 8
	return rank == 0 || rank == 7
}

// IsQuiet reports whether m is neither a capture nor a promotion.
func (p *Position) IsQuiet(m Move) bool {
	return !p.IsCapture(m) && !p.IsPromotion(m)
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Board.OurKingInCheck()
}
