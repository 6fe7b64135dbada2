// Package timeman budgets the wall-clock time of one search. A Controller
// derives a hard and a soft limit from the clock, runs a watchdog goroutine
// that raises the stop flag at the hard limit, and tracks how the search
// spreads its nodes over root moves to shrink or extend the soft limit.
package timeman

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/position"
)

// Limit floors. Even a flagged or degenerate clock gets enough time for a
// depth-1 result.
const (
	MinHardLimit = 10 * time.Millisecond
	MinSoftLimit = 5 * time.Millisecond
)

// DefaultMoveOverhead is used by frontends that do not configure one.
const DefaultMoveOverhead = 10 * time.Millisecond

// Unlimited is the limit of a search without a deadline.
const Unlimited = time.Duration(math.MaxInt64)

// Soft limit scaling by how many consecutive depths kept the same best move.
var stabilityScale = [...]float64{2.2, 1.6, 1.1, 0.9, 0.75}

// ErrAlreadyStarted is returned by Start on a controller that is not idle.
var ErrAlreadyStarted = errors.New("timeman: controller already started or stopped")

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Controller owns the time budget of one search. Create one per "go".
//
// The stop flag and Stop are safe for concurrent use. Node accounting and
// the soft-limit queries belong to the search goroutine.
type Controller struct {
	cfg       Config
	side      position.Color
	hardLimit time.Duration
	softBase  time.Duration

	state    atomic.Int32
	timesUp  atomic.Bool
	wake     chan struct{}
	stopOnce sync.Once
	group    errgroup.Group
	start    time.Time

	nodes     uint64
	nodeSpent [position.MoveKeys]uint64
	prevBest  position.Move
	stability int
}

// New creates an idle controller for side to move.
func New(cfg Config, side position.Color) *Controller {
	c := &Controller{
		cfg:  cfg,
		side: side,
		wake: make(chan struct{}),
	}
	c.hardLimit, c.softBase = computeLimits(cfg, side)
	return c
}

// computeLimits returns the hard limit and the unscaled soft limit.
func computeLimits(cfg Config, side position.Color) (hard, soft time.Duration) {
	if cfg.Unbounded() {
		return Unlimited, Unlimited
	}
	overhead := max(cfg.MoveOverhead, 0)

	if cfg.MoveTime > 0 {
		hard = max(cfg.MoveTime-overhead, MinHardLimit)
		return hard, hard
	}

	remaining := max(cfg.Time[side], 0)
	inc := max(cfg.Inc[side], 0)

	base := remaining*54/1000 + inc*85/100
	if cfg.MovesToGo > 0 {
		base = min(base, remaining/time.Duration(cfg.MovesToGo)+inc*85/100)
	}
	ceiling := remaining*76/100 - overhead

	hard = max(min(base*3, ceiling), MinHardLimit)
	soft = lo.Clamp(min(base*3/4, ceiling), MinSoftLimit, hard)
	return hard, soft
}

// Config returns the configuration the controller was built from.
func (c *Controller) Config() Config {
	return c.cfg
}

// Start records the origin timestamp and launches the watchdog. Cancelling
// ctx stops the search like an explicit Stop.
func (c *Controller) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrAlreadyStarted
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.start = time.Now()

	log.Debug().
		Dur("hard", c.hardLimit).
		Dur("soft", c.softBase).
		Msg("time-limits")

	c.group.Go(func() error {
		c.watch(ctx)
		return nil
	})
	return nil
}

// watch sleeps until the hard limit, ctx cancellation or Stop.
func (c *Controller) watch(ctx context.Context) {
	var deadline <-chan time.Time
	if c.hardLimit != Unlimited {
		timer := time.NewTimer(c.hardLimit)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case <-deadline:
		log.Debug().Dur("elapsed", time.Since(c.start)).Msg("hard-limit-reached")
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("search-context-done")
	case <-c.wake:
		return
	}
	c.Stop()
}

// Stop raises the stop flag and wakes the watchdog. It is idempotent and may
// be called before Start, during the search, or after it finished.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.timesUp.Store(true)
		c.state.Store(stateStopped)
		close(c.wake)
	})
}

// Wait blocks until the watchdog has exited. Call it after Stop.
func (c *Controller) Wait() error {
	return c.group.Wait()
}

// TimesUp reports whether the search must abort. Cheap enough for the
// search to poll every few thousand nodes.
func (c *Controller) TimesUp() bool {
	return c.timesUp.Load()
}

// NodeSearched counts one node.
func (c *Controller) NodeSearched() {
	c.nodes++
}

// Nodes returns the number of nodes counted so far.
func (c *Controller) Nodes() uint64 {
	return c.nodes
}

// UpdateNodeSpent attributes the nodes counted since prevNodes to root move m.
func (c *Controller) UpdateNodeSpent(m position.Move, prevNodes uint64) {
	c.nodeSpent[position.Key(m)] += c.nodes - prevNodes
}

// NodeShare returns the fraction of all counted nodes spent below root move m.
func (c *Controller) NodeShare(m position.Move) float64 {
	if c.nodes == 0 {
		return 0
	}
	return float64(c.nodeSpent[position.Key(m)]) / float64(c.nodes)
}

// Elapsed returns the time since Start, zero before it.
func (c *Controller) Elapsed() time.Duration {
	if c.start.IsZero() {
		return 0
	}
	return time.Since(c.start)
}

// NodesPerSecond returns the search throughput.
func (c *Controller) NodesPerSecond() uint64 {
	elapsed := c.Elapsed()
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(c.nodes) / elapsed.Seconds())
}

// HardLimit returns the absolute time budget.
func (c *Controller) HardLimit() time.Duration {
	return c.hardLimit
}

// SoftLimit returns the time after which no new depth should start, given
// the current best root move. A move that keeps its place and most of the
// nodes shrinks it; an unstable or thinly searched one extends it, never
// beyond the hard limit.
func (c *Controller) SoftLimit(pvMove position.Move) time.Duration {
	if c.hardLimit == Unlimited || c.cfg.MoveTime > 0 {
		return c.softBase
	}
	nodeScale := (1.5 - c.NodeShare(pvMove)) * 1.35
	stableScale := stabilityScale[min(c.stability, len(stabilityScale)-1)]
	soft := time.Duration(float64(c.softBase) * nodeScale * stableScale)
	return lo.Clamp(soft, MinSoftLimit, c.hardLimit)
}

// SoftTimesUp is called once per completed depth with that depth's best
// move. It updates move stability and reports whether the soft limit has
// passed.
func (c *Controller) SoftTimesUp(pvMove position.Move) bool {
	if pvMove == c.prevBest {
		c.stability++
	} else {
		c.prevBest = pvMove
		c.stability = 0
	}
	return c.Elapsed() >= c.SoftLimit(pvMove)
}
