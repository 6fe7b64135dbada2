// Package searchstack holds the ply-indexed frames the search driver records
// as it descends. Lookback is by index into a fixed array, so asking for a
// frame further back than the current ply yields an explicit miss.
package searchstack

import "github.com/hailam/chesscore/internal/position"

// MaxPly is the deepest ply the search can reach.
const MaxPly = 128

// Frame is the record kept for one ply of the current search path.
type Frame struct {
	Ply   int
	Move  position.Move  // move played from this ply, NoMove until recorded
	Piece position.Piece // piece that made Move
}

// HasMove reports whether a move was recorded at this frame.
func (f *Frame) HasMove() bool {
	return f.Move != position.NoMove && f.Piece != position.NoPiece
}

// Stack is the search-frame ledger. The zero value is not ready; call Reset.
type Stack struct {
	frames [MaxPly + 1]Frame
}

// Reset empties every frame.
func (s *Stack) Reset() {
	for i := range s.frames {
		s.frames[i] = Frame{Ply: i, Piece: position.NoPiece}
	}
}

// At returns the frame for ply. ply must be in [0, MaxPly].
func (s *Stack) At(ply int) *Frame {
	return &s.frames[ply]
}

// Record stores the move played from ply and the piece that made it.
func (s *Stack) Record(ply int, m position.Move, piece position.Piece) {
	f := &s.frames[ply]
	f.Move = m
	f.Piece = piece
}

// Clear forgets the move recorded at ply. Null moves and unmakes leave the
// frame cleared so lookbacks through them are neutral.
func (s *Stack) Clear(ply int) {
	f := &s.frames[ply]
	f.Move = position.NoMove
	f.Piece = position.NoPiece
}

// Behind returns the frame n plies before f. The second result is false
// when the lookback runs past the root.
func (s *Stack) Behind(f *Frame, n int) (*Frame, bool) {
	if n <= 0 || f.Ply < n {
		return nil, false
	}
	return &s.frames[f.Ply-n], true
}
