package searchstack

import (
	"testing"

	"github.com/hailam/chesscore/internal/position"
)

func TestBehindBounds(t *testing.T) {
	var s Stack
	s.Reset()

	tests := []struct {
		ply, n int
		ok     bool
		want   int
	}{
		{0, 1, false, 0},
		{1, 1, true, 0},
		{3, 4, false, 0},
		{4, 4, true, 0},
		{10, 2, true, 8},
		{MaxPly, 4, true, MaxPly - 4},
		{5, 0, false, 0},
		{5, -1, false, 0},
	}
	for _, tt := range tests {
		f, ok := s.Behind(s.At(tt.ply), tt.n)
		if ok != tt.ok {
			t.Errorf("Behind(ply %d, %d) ok = %v, want %v", tt.ply, tt.n, ok, tt.ok)
			continue
		}
		if ok && f.Ply != tt.want {
			t.Errorf("Behind(ply %d, %d) = ply %d, want %d", tt.ply, tt.n, f.Ply, tt.want)
		}
		if !ok && f != nil {
			t.Errorf("Behind(ply %d, %d) returned a frame on miss", tt.ply, tt.n)
		}
	}
}

func TestRecordAndClear(t *testing.T) {
	var s Stack
	s.Reset()

	if s.At(3).HasMove() {
		t.Fatal("fresh frame reports a move")
	}

	m := position.Move(12<<6 | 28)
	s.Record(3, m, position.NewPiece(position.Pawn, position.White))
	f := s.At(3)
	if !f.HasMove() || f.Move != m || f.Piece.Type() != position.Pawn {
		t.Fatalf("frame after Record = %+v", *f)
	}

	s.Clear(3)
	if s.At(3).HasMove() {
		t.Error("frame still has a move after Clear")
	}

	s.Record(7, m, position.NewPiece(position.Knight, position.Black))
	s.Reset()
	if s.At(7).HasMove() {
		t.Error("Reset left a recorded move behind")
	}
	if s.At(7).Ply != 7 {
		t.Errorf("Reset frame ply = %d, want 7", s.At(7).Ply)
	}
}
