// Package search is the iterative deepening alpha-beta driver. It orders
// moves with a history.Store, records the path in a searchstack.Stack and
// stops when its timeman.Controller says so.
package search

import (
	"context"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/history"
	"github.com/hailam/chesscore/internal/position"
	"github.com/hailam/chesscore/internal/searchstack"
	"github.com/hailam/chesscore/internal/timeman"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
)

// checkInterval is how many nodes pass between polls of the stop flag.
const checkInterval = 2048

// Evaluator scores a position from the side to move's point of view.
type Evaluator interface {
	Evaluate(b *dragontoothmg.Board) int
}

// Neutral scores every position as equal. The engine ships no evaluation;
// embedders provide their own Evaluator.
type Neutral struct{}

// Evaluate implements Evaluator.
func (Neutral) Evaluate(*dragontoothmg.Board) int { return 0 }

// Info reports one completed depth.
type Info struct {
	Depth int
	Score int
	Nodes uint64
	NPS   uint64
	Time  time.Duration
	Move  position.Move
}

// Result is the outcome of one Go.
type Result struct {
	Move  position.Move
	Score int
	Depth int
	Nodes uint64
}

// Searcher runs one search at a time. Its history store survives between
// searches of the same game; every Go gets a fresh time controller.
type Searcher struct {
	eval  Evaluator
	store *history.Store
	stack searchstack.Stack
	pos   *position.Position
	tc    *timeman.Controller

	stopped   bool
	rootBest  position.Move
	badQuiets [searchstack.MaxPly + 1][]position.Move

	// OnInfo, if set, is called after every completed depth.
	OnInfo func(Info)
}

// New creates a searcher using eval.
func New(eval Evaluator) *Searcher {
	if eval == nil {
		eval = Neutral{}
	}
	s := &Searcher{
		eval:  eval,
		store: history.New(),
	}
	for i := range s.badQuiets {
		s.badQuiets[i] = make([]position.Move, 0, 64)
	}
	return s
}

// NewGame forgets everything learned in the previous game.
func (s *Searcher) NewGame() {
	s.store.Clear()
}

// History exposes the heuristic store, for inspection.
func (s *Searcher) History() *history.Store {
	return s.store
}

// Go searches b under cfg until the depth ceiling, the time budget or ctx
// cancellation ends it. b is not modified.
func (s *Searcher) Go(ctx context.Context, b *dragontoothmg.Board, cfg timeman.Config) Result {
	board := *b
	s.pos = position.New(&board)
	s.store.Decay()
	s.stack.Reset()
	s.stopped = false
	s.rootBest = position.NoMove

	tc := timeman.New(cfg, s.pos.SideToMove())
	s.tc = tc
	if err := tc.Start(ctx); err != nil {
		log.Error().Err(err).Msg("time-controller-start")
		return Result{}
	}
	defer func() {
		tc.Stop()
		if err := tc.Wait(); err != nil {
			log.Error().Err(err).Msg("time-controller-wait")
		}
	}()

	rootMoves := board.GenerateLegalMoves()
	if len(rootMoves) == 0 {
		return Result{}
	}
	res := Result{Move: rootMoves[0]}

	maxDepth := searchstack.MaxPly - 1
	if cfg.Depth > 0 {
		maxDepth = min(cfg.Depth, maxDepth)
	}

	for depth := 1; depth <= maxDepth; depth++ {
		// The hard limit wins over any soft decision to continue.
		if tc.TimesUp() {
			break
		}

		score := s.negamax(depth, 0, -Infinity, Infinity)

		if s.stopped || tc.TimesUp() {
			// Moves that improved the root before the abort were fully searched.
			if s.rootBest != position.NoMove {
				res.Move = s.rootBest
			}
			break
		}

		res = Result{Move: s.rootBest, Score: score, Depth: depth, Nodes: tc.Nodes()}
		if res.Move == position.NoMove {
			res.Move = rootMoves[0]
		}
		s.report(res)

		if score > MateScore-searchstack.MaxPly || score < -MateScore+searchstack.MaxPly {
			break
		}
		if tc.SoftTimesUp(res.Move) {
			break
		}
	}

	res.Nodes = tc.Nodes()
	log.Debug().
		Str("move", position.MoveString(res.Move)).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", tc.Elapsed()).
		Msg("search-done")
	return res
}

func (s *Searcher) report(res Result) {
	info := Info{
		Depth: res.Depth,
		Score: res.Score,
		Nodes: res.Nodes,
		NPS:   s.tc.NodesPerSecond(),
		Time:  s.tc.Elapsed(),
		Move:  res.Move,
	}
	log.Debug().
		Int("depth", info.Depth).
		Int("score", info.Score).
		Uint64("nodes", info.Nodes).
		Str("move", position.MoveString(info.Move)).
		Msg("depth-complete")
	if s.OnInfo != nil {
		s.OnInfo(info)
	}
}

// countNode counts a node and polls the stop flag every checkInterval nodes.
func (s *Searcher) countNode() bool {
	s.tc.NodeSearched()
	if s.tc.Nodes()%checkInterval == 0 && s.tc.TimesUp() {
		s.stopped = true
	}
	return s.stopped
}

func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	if s.countNode() {
		return 0
	}
	if depth <= 0 {
		return s.quiesce(ply, alpha, beta)
	}

	moves := s.pos.Board.GenerateLegalMoves()
	if len(moves) == 0 {
		if s.pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}
	if ply >= searchstack.MaxPly-1 {
		return s.eval.Evaluate(s.pos.Board)
	}

	pvMove := position.NoMove
	if ply == 0 {
		pvMove = s.rootBest
	}
	scores := s.scoreMoves(moves, ply, pvMove)
	s.store.ClearKillers(ply + 1)

	bestScore := -Infinity
	best := position.NoMove
	quiets := s.badQuiets[ply][:0]

	for i := range moves {
		pickMove(moves, scores, i)
		m := moves[i]
		if s.pos.IsQuiet(m) {
			quiets = append(quiets, m)
		}
		prevNodes := s.tc.Nodes()

		s.stack.Record(ply, m, s.pos.PieceAt(position.From(m)))
		unapply := s.pos.Board.Apply(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		unapply()
		s.stack.Clear(ply)

		if ply == 0 {
			s.tc.UpdateNodeSpent(m, prevNodes)
		}
		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
			best = m
			if ply == 0 {
				s.rootBest = m
			}
			if alpha >= beta {
				break
			}
		}
	}

	s.badQuiets[ply] = quiets
	if best != position.NoMove {
		// Every quiet searched here except best, including ones that
		// raised alpha before being overtaken.
		bad := quiets[:0]
		for _, m := range quiets {
			if m != best {
				bad = append(bad, m)
			}
		}
		s.store.Record(s.pos, &s.stack, ply, best, bad, depth)
	}
	return bestScore
}

// quiesce searches captures until the position is quiet.
func (s *Searcher) quiesce(ply, alpha, beta int) int {
	if s.countNode() {
		return 0
	}

	standPat := s.eval.Evaluate(s.pos.Board)
	if ply >= searchstack.MaxPly-1 || standPat >= beta {
		return standPat
	}
	alpha = max(alpha, standPat)

	all := s.pos.Board.GenerateLegalMoves()
	captures := all[:0]
	for _, m := range all {
		if s.pos.IsCapture(m) {
			captures = append(captures, m)
		}
	}
	scores := make([]int, len(captures))
	for i, m := range captures {
		scores[i] = s.captureScore(m)
	}

	for i := range captures {
		pickMove(captures, scores, i)
		m := captures[i]

		unapply := s.pos.Board.Apply(m)
		score := -s.quiesce(ply+1, -beta, -alpha)
		unapply()

		if s.stopped {
			return 0
		}
		if score >= beta {
			return score
		}
		alpha = max(alpha, score)
	}
	return alpha
}
