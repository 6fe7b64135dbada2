package timeman

import (
	"time"

	"github.com/hailam/chesscore/internal/position"
)

// Config contains the time control parameters of one "go" command.
type Config struct {
	Depth        int              // maximum search depth (0 = no limit)
	MoveTime     time.Duration    // fixed time per move (overrides the clock)
	Time         [2]time.Duration // wtime, btime (remaining time for each color)
	Inc          [2]time.Duration // winc, binc (increment per move)
	MovesToGo    int              // moves until next time control (0 = sudden death)
	MoveOverhead time.Duration    // reserved for I/O and GUI lag
	Infinite     bool             // search until stopped
}

// Unbounded reports whether the search has no deadline: "go infinite", or a
// depth ceiling with neither clock nor move time.
func (c Config) Unbounded() bool {
	if c.Infinite {
		return true
	}
	return c.Depth > 0 && c.MoveTime <= 0 &&
		c.Time[position.White] <= 0 && c.Time[position.Black] <= 0 &&
		c.Inc[position.White] <= 0 && c.Inc[position.Black] <= 0
}
