//go:build chessdebug

package history

import (
	"fmt"

	"github.com/hailam/chesscore/internal/searchstack"
)

// assertPly panics on a ply outside the killer and frame tables. Built only
// with -tags chessdebug; release builds trust the caller.
func assertPly(ply int) {
	if ply < 0 || ply > searchstack.MaxPly {
		panic(fmt.Sprintf("history: ply %d out of range [0, %d]", ply, searchstack.MaxPly))
	}
}
