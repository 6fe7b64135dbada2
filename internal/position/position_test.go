package position

import (
	"errors"
	"testing"
)

func findMove(t *testing.T, p *Position, s string) Move {
	t.Helper()
	for _, m := range p.Board.GenerateLegalMoves() {
		if MoveString(m) == s {
			return m
		}
	}
	t.Fatalf("move %s not legal in %s", s, p.Board.ToFen())
	return NoMove
}

func TestPieceAtStartpos(t *testing.T) {
	p := FromFEN(Startpos)

	tests := []struct {
		sq   uint8
		want Piece
	}{
		{0, NewPiece(Rook, White)},    // a1
		{4, NewPiece(King, White)},    // e1
		{12, NewPiece(Pawn, White)},   // e2
		{28, NoPiece},                 // e4
		{59, NewPiece(Queen, Black)},  // d8
		{62, NewPiece(Knight, Black)}, // g8
	}
	for _, tt := range tests {
		if got := p.PieceAt(tt.sq); got != tt.want {
			t.Errorf("PieceAt(%d) = %v, want %v", tt.sq, got, tt.want)
		}
	}
	if p.SideToMove() != White {
		t.Errorf("SideToMove = %v, want White", p.SideToMove())
	}
}

func TestMoveKey(t *testing.T) {
	p := FromFEN(Startpos)
	m := findMove(t, p, "e2e4")
	if From(m) != 12 || To(m) != 28 {
		t.Fatalf("e2e4 decoded as %d->%d", From(m), To(m))
	}
	if Key(m) != 12*64+28 {
		t.Errorf("Key = %d, want %d", Key(m), 12*64+28)
	}
	for _, m := range p.Board.GenerateLegalMoves() {
		if k := Key(m); k < 0 || k >= MoveKeys {
			t.Errorf("Key(%s) = %d out of range", MoveString(m), k)
		}
	}
}

func TestClassification(t *testing.T) {
	// White can take on d5, en passant on f6, and promote on a8.
	p := FromFEN("4k3/P7/8/3p1pP1/4P3/8/8/4K3 w - f6 0 1")

	tests := []struct {
		move      string
		capture   bool
		promotion bool
		victim    PieceType
	}{
		{"e4d5", true, false, Pawn},
		{"g5f6", true, false, Pawn},
		{"a7a8q", false, true, NoPieceType},
		{"e4e5", false, false, NoPieceType},
	}
	for _, tt := range tests {
		m := findMove(t, p, tt.move)
		if got := p.IsCapture(m); got != tt.capture {
			t.Errorf("%s: IsCapture = %v, want %v", tt.move, got, tt.capture)
		}
		if got := p.IsPromotion(m); got != tt.promotion {
			t.Errorf("%s: IsPromotion = %v, want %v", tt.move, got, tt.promotion)
		}
		if got := p.CapturedType(m); got != tt.victim {
			t.Errorf("%s: CapturedType = %v, want %v", tt.move, got, tt.victim)
		}
		if got := p.IsQuiet(m); got != (!tt.capture && !tt.promotion) {
			t.Errorf("%s: IsQuiet = %v", tt.move, got)
		}
	}
}

func TestPieceEncoding(t *testing.T) {
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			p := NewPiece(pt, c)
			if p >= PieceCount {
				t.Fatalf("NewPiece(%d, %v) = %d out of range", pt, c, p)
			}
			if p.Type() != pt || p.Color() != c {
				t.Errorf("piece %d round trip: type %d color %v", p, p.Type(), p.Color())
			}
		}
	}
	if NewPiece(NoPieceType, White) != NoPiece {
		t.Error("NewPiece(NoPieceType) should be NoPiece")
	}
}

func TestParseFEN(t *testing.T) {
	tests := []struct {
		fen string
		ok  bool
	}{
		{Startpos, true},
		{"4k3/8/8/8/8/8/8/R3K3 w - -", true},
		{"4k3/8/8/8/8/8/8/R3K3 b - - 7", true},
		{"4k3/P7/8/3p1pP1/4P3/8/8/4K3 w - f6 0 1", true},
		{"", false},
		{"foo", false},
		{"4k3/8/8/8/8/8/8/R3K3 w", false},
		{"4k3/8/8/8/8/8/R3K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/R3K4 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/R3X3 w - - 0 1", false},
		{"8/8/8/8/8/8/8/R3K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/R3K3 x - - 0 1", false},
		{"4k3/8/8/8/8/8/8/R3K3 w KZ - 0 1", false},
		{"4k3/8/8/8/8/8/8/R3K3 w - e5 0 1", false},
		{"4k3/8/8/8/8/8/8/R3K3 w - - x 1", false},
		{"4k3/8/8/8/8/8/8/R3K3 w - - 0 1 extra", false},
	}
	for _, tt := range tests {
		b, err := ParseFEN(tt.fen)
		if tt.ok {
			if err != nil {
				t.Errorf("ParseFEN(%q) = %v", tt.fen, err)
			} else if len(b.GenerateLegalMoves()) == 0 {
				t.Errorf("ParseFEN(%q) produced a board without moves", tt.fen)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) error = %v, want ErrInvalidFEN", tt.fen, err)
		}
	}
}
