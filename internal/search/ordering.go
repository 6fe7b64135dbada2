package search

import (
	"github.com/hailam/chesscore/internal/position"
)

// Move ordering priorities
const (
	PVMoveScore      = 10000000 // previous iteration's best move at the root
	GoodCaptureBase  = 1000000  // Base score for captures
	PromotionScore   = GoodCaptureBase - 1000
	KillerScore1     = 900000 // First killer move
	KillerScore2     = 800000 // Second killer move
	CounterMoveScore = 700000 // Reply recorded for the previous move
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// scoreMoves assigns ordering scores at ply. Quiet moves fall through to
// butterfly plus continuation history.
func (s *Searcher) scoreMoves(moves []position.Move, ply int, pvMove position.Move) []int {
	scores := make([]int, len(moves))
	killers := s.store.Killers(ply)
	counter := s.store.CounterMove(&s.stack, ply)

	for i, m := range moves {
		switch {
		case m == pvMove:
			scores[i] = PVMoveScore
		case s.pos.IsCapture(m):
			scores[i] = s.captureScore(m)
		case s.pos.IsPromotion(m):
			scores[i] = PromotionScore
		case m == killers[0]:
			scores[i] = KillerScore1
		case m == killers[1]:
			scores[i] = KillerScore2
		case m == counter:
			scores[i] = CounterMoveScore
		default:
			scores[i] = s.store.QuietScore(s.pos, &s.stack, ply, m)
		}
	}
	return scores
}

func (s *Searcher) captureScore(m position.Move) int {
	attacker := s.pos.PieceAt(position.From(m)).Type()
	victim := s.pos.CapturedType(m)
	if attacker >= position.NoPieceType || victim >= position.King {
		return GoodCaptureBase
	}
	return GoodCaptureBase + mvvLva[victim][attacker]*1000
}

// pickMove selects the best remaining move and moves it to position index.
// This allows lazy move sorting (only sort as much as needed).
func pickMove(moves []position.Move, scores []int, index int) {
	best := index
	for j := index + 1; j < len(moves); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves[index], moves[best] = moves[best], moves[index]
		scores[index], scores[best] = scores[best], scores[index]
	}
}
