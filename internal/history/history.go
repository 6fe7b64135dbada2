// Package history keeps the move-ordering statistics learned during one
// search session: quiet-move (butterfly) history, killer moves, continuation
// history and counter moves.
//
// A Store belongs to exactly one search goroutine. None of its methods block
// or synchronize.
package history

import (
	"math"

	"github.com/samber/lo"

	"github.com/hailam/chesscore/internal/position"
	"github.com/hailam/chesscore/internal/searchstack"
)

// Update tuning. Bonus(depth) = min(HistoryScale*depth - HistoryOffset, MaxHistoryBonus).
// The values are empirical.
const (
	HistoryScale    = 300
	HistoryOffset   = 300
	MaxHistoryBonus = 2000
	HistoryGravity  = 16384 // scores saturate towards ±HistoryGravity
)

// ContinuationPlies are the lookback distances the continuation table is
// trained and read at: the opponent's last move, our last move, and our
// move before that.
var ContinuationPlies = [...]int{1, 2, 4}

// Board is the position accessor the store reads piece identity from.
type Board interface {
	PieceAt(sq uint8) position.Piece
	SideToMove() position.Color
	IsQuiet(m position.Move) bool
}

// Store owns every heuristic table for one search session.
type Store struct {
	killers      [searchstack.MaxPly + 1][2]position.Move
	butterfly    [2][position.MoveKeys]int16
	counterMoves [position.PieceCount][64]position.Move

	// [piece N plies ago][its destination][piece now][destination]
	continuation [position.PieceCount][64][position.PieceCount][64]int16
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Bonus returns the update magnitude for a node searched to depth.
// Depth 0 gives a negative bonus and depth 1 gives zero.
func Bonus(depth int) int {
	return min(HistoryScale*depth-HistoryOffset, MaxHistoryBonus)
}

// applyGravity moves score towards the sign of bonus, by less the closer
// score already is to the bound.
func applyGravity(score *int16, bonus int) {
	s := int(*score)
	s += bonus - s*abs(bonus)/HistoryGravity
	*score = int16(lo.Clamp(s, math.MinInt16, math.MaxInt16))
}

// HistoryScore returns the butterfly history of m for side.
func (h *Store) HistoryScore(side position.Color, m position.Move) int {
	return int(h.butterfly[side][position.Key(m)])
}

// Killers returns the killer pair at ply, most recent first.
func (h *Store) Killers(ply int) [2]position.Move {
	assertPly(ply)
	return h.killers[ply]
}

// AddKiller makes m the first killer at ply.
func (h *Store) AddKiller(m position.Move, ply int) {
	assertPly(ply)
	k := &h.killers[ply]
	if k[0] == m {
		return
	}
	k[1] = k[0]
	k[0] = m
}

// ClearKillers empties the killer pair at ply.
func (h *Store) ClearKillers(ply int) {
	assertPly(ply)
	h.killers[ply] = [2]position.Move{}
}

// continuationEntry returns the table cell for playing m at ply given the
// move pliesAgo plies back, or nil when that lookback is unavailable.
func (h *Store) continuationEntry(b Board, ss *searchstack.Stack, ply int, m position.Move, pliesAgo int) *int16 {
	assertPly(ply)
	prev, ok := ss.Behind(ss.At(ply), pliesAgo)
	if !ok || !prev.HasMove() {
		return nil
	}
	piece := b.PieceAt(position.From(m))
	if piece == position.NoPiece {
		return nil
	}
	return &h.continuation[prev.Piece][position.To(prev.Move)][piece][position.To(m)]
}

// ContinuationScore returns the continuation history of m at ply against
// the move pliesAgo plies back, 0 when there is no such move.
func (h *Store) ContinuationScore(b Board, ss *searchstack.Stack, ply int, m position.Move, pliesAgo int) int {
	if e := h.continuationEntry(b, ss, ply, m, pliesAgo); e != nil {
		return int(*e)
	}
	return 0
}

// ContinuationTotal sums ContinuationScore over ContinuationPlies.
func (h *Store) ContinuationTotal(b Board, ss *searchstack.Stack, ply int, m position.Move) int {
	total := 0
	for _, n := range ContinuationPlies {
		total += h.ContinuationScore(b, ss, ply, m, n)
	}
	return total
}

// QuietScore is the ordering score of a quiet move: butterfly plus
// continuation history.
func (h *Store) QuietScore(b Board, ss *searchstack.Stack, ply int, m position.Move) int {
	return h.HistoryScore(b.SideToMove(), m) + h.ContinuationTotal(b, ss, ply, m)
}

// UpdateHistory rewards best and penalizes every move in badQuiets by the
// bonus for depth.
func (h *Store) UpdateHistory(best position.Move, badQuiets []position.Move, side position.Color, depth int) {
	bonus := Bonus(depth)
	table := &h.butterfly[side]
	if best != position.NoMove {
		applyGravity(&table[position.Key(best)], bonus)
	}
	for _, m := range badQuiets {
		applyGravity(&table[position.Key(m)], -bonus)
	}
}

// UpdateContinuation is UpdateHistory for the continuation table, at every
// lookback in ContinuationPlies that is available from ply.
func (h *Store) UpdateContinuation(b Board, ss *searchstack.Stack, ply int, best position.Move, badQuiets []position.Move, depth int) {
	bonus := Bonus(depth)
	for _, n := range ContinuationPlies {
		if best != position.NoMove {
			if e := h.continuationEntry(b, ss, ply, best, n); e != nil {
				applyGravity(e, bonus)
			}
		}
		for _, m := range badQuiets {
			if e := h.continuationEntry(b, ss, ply, m, n); e != nil {
				applyGravity(e, -bonus)
			}
		}
	}
}

// CounterMove returns the recorded reply to the move that led to ply.
func (h *Store) CounterMove(ss *searchstack.Stack, ply int) position.Move {
	prev, ok := ss.Behind(ss.At(ply), 1)
	if !ok || !prev.HasMove() {
		return position.NoMove
	}
	return h.counterMoves[prev.Piece][position.To(prev.Move)]
}

// UpdateCounterMove records m as the reply to the move that led to ply.
func (h *Store) UpdateCounterMove(ss *searchstack.Stack, ply int, m position.Move) {
	prev, ok := ss.Behind(ss.At(ply), 1)
	if !ok || !prev.HasMove() {
		return
	}
	h.counterMoves[prev.Piece][position.To(prev.Move)] = m
}

// Record reports the outcome of a node once its move loop has finished.
// best is the move that raised alpha or cut off; badQuiets are the quiet
// moves searched before it that did neither. A quiet best move is rewarded
// and becomes a killer and counter move; the bad quiets are penalized even
// when best is tactical.
func (h *Store) Record(b Board, ss *searchstack.Stack, ply int, best position.Move, badQuiets []position.Move, depth int) {
	if best == position.NoMove {
		return
	}
	if !b.IsQuiet(best) {
		best = position.NoMove
	}
	h.UpdateHistory(best, badQuiets, b.SideToMove(), depth)
	h.UpdateContinuation(b, ss, ply, best, badQuiets, depth)
	if best != position.NoMove {
		h.AddKiller(best, ply)
		h.UpdateCounterMove(ss, ply, best)
	}
}

// Clear resets every table, for a new game.
func (h *Store) Clear() {
	*h = Store{}
}

// Decay drops the recency data (killers and counter moves) between moves of
// one game. Butterfly and continuation history are kept.
func (h *Store) Decay() {
	h.killers = [searchstack.MaxPly + 1][2]position.Move{}
	h.counterMoves = [position.PieceCount][64]position.Move{}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
