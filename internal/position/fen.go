package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// ErrInvalidFEN is wrapped by every ParseFEN error.
var ErrInvalidFEN = errors.New("position: invalid FEN")

// ParseFEN validates fen and parses it into a board. dragontoothmg.ParseFen
// assumes well-formed input, so everything it indexes is checked first.
// The half-move clock and full-move number are optional.
func ParseFEN(fen string) (b dragontoothmg.Board, err error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return b, fmt.Errorf("need 4 to 6 fields, got %d: %w", len(parts), ErrInvalidFEN)
	}

	// Piece placement (field 0)
	if err := checkPlacement(parts[0]); err != nil {
		return b, err
	}

	// Side to move (field 1)
	if parts[1] != "w" && parts[1] != "b" {
		return b, fmt.Errorf("side to move %q: %w", parts[1], ErrInvalidFEN)
	}

	// Castling rights (field 2)
	if parts[2] != "-" {
		for _, c := range parts[2] {
			if !strings.ContainsRune("KQkq", c) {
				return b, fmt.Errorf("castling rights %q: %w", parts[2], ErrInvalidFEN)
			}
		}
	}

	// En passant square (field 3)
	if ep := parts[3]; ep != "-" {
		if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || (ep[1] != '3' && ep[1] != '6') {
			return b, fmt.Errorf("en passant square %q: %w", ep, ErrInvalidFEN)
		}
	}

	// Move counters (fields 4 and 5)
	for _, field := range parts[4:] {
		if n, err := strconv.Atoi(field); err != nil || n < 0 {
			return b, fmt.Errorf("move counter %q: %w", field, ErrInvalidFEN)
		}
	}
	if len(parts) == 4 {
		parts = append(parts, "0")
	}
	if len(parts) == 5 {
		parts = append(parts, "1")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v: %w", r, ErrInvalidFEN)
		}
	}()
	return dragontoothmg.ParseFen(strings.Join(parts, " ")), nil
}

// checkPlacement requires eight ranks of eight squares and one king per side.
func checkPlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%d ranks: %w", len(ranks), ErrInvalidFEN)
	}
	kings := map[rune]int{}
	for i, rank := range ranks {
		files := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				files += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				files++
				if c == 'k' || c == 'K' {
					kings[c]++
				}
			default:
				return fmt.Errorf("piece %q: %w", c, ErrInvalidFEN)
			}
		}
		if files != 8 {
			return fmt.Errorf("rank %d has %d files: %w", 8-i, files, ErrInvalidFEN)
		}
	}
	if kings['K'] != 1 || kings['k'] != 1 {
		return fmt.Errorf("need one king per side: %w", ErrInvalidFEN)
	}
	return nil
}
