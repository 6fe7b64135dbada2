package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/option"
	"github.com/hailam/chesscore/internal/position"
	"github.com/hailam/chesscore/internal/search"
	"github.com/hailam/chesscore/internal/timeman"
)

// Engine identification
const (
	EngineName   = "Integral"
	EngineAuthor = "Integral developers"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	searcher *search.Searcher
	board    dragontoothmg.Board
	options  *option.Set
	overhead *option.Option

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // serializes writes to out

	// Search state
	searching *errgroup.Group
	cancel    context.CancelFunc
}

// New creates a UCI protocol handler reading commands from in and writing
// responses to out.
func New(searcher *search.Searcher, in io.Reader, out io.Writer) *UCI {
	u := &UCI{
		searcher: searcher,
		board:    dragontoothmg.ParseFen(position.Startpos),
		in:       in,
		out:      out,
	}
	u.overhead = option.NewSpin("Move Overhead", int(timeman.DefaultMoveOverhead/time.Millisecond), 0, 5000)
	u.options = option.NewSet(
		u.overhead,
		option.NewCheck("Debug Log", false).OnChange(func(o *option.Option) {
			if o.Bool() {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		}),
		option.NewString("UCI_Opponent", "").OnChange(func(o *option.Option) {
			log.Info().Str("opponent", o.Str()).Msg("opponent-set")
		}),
	)
	searcher.OnInfo = u.sendInfo
	return u
}

// Options returns the option registry.
func (u *UCI) Options() *option.Set {
	return u.options
}

// send writes one protocol line.
func (u *UCI) send(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands until "quit", end of input or ctx cancellation. Call it
// at most once per reader.
func (u *UCI) Run(ctx context.Context) error {
	defer u.handleStop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	// After quit this goroutine stays parked in Scan until the reader
	// returns; Run is meant to own its reader for the process lifetime.
	go func() {
		scanner := bufio.NewScanner(u.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(ctx, args)
		case "stop":
			u.handleStop()
		case "setoption":
			u.handleSetOption(args)
		case "quit":
			return nil
		// Debug commands
		case "d":
			u.send("%s", u.board.ToFen())
		default:
			log.Debug().Str("command", line).Msg("unknown-command")
		}
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name %s", EngineName)
	u.send("id author %s", EngineAuthor)
	u.send("")
	for _, line := range u.options.UCILines() {
		u.send("%s", line)
	}
	u.send("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.searcher.NewGame()
	u.board = dragontoothmg.ParseFen(position.Startpos)
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var b dragontoothmg.Board
	switch args[0] {
	case "startpos":
		b = dragontoothmg.ParseFen(position.Startpos)
	case "fen":
		if movesAt < 2 {
			log.Warn().Strs("args", args).Msg("position-missing-fen")
			return
		}
		fen := strings.Join(args[1:movesAt], " ")
		parsed, err := position.ParseFEN(fen)
		if err != nil {
			log.Warn().Err(err).Str("fen", fen).Msg("position-invalid-fen")
			u.send("info string %v", err)
			return
		}
		b = parsed
	default:
		return
	}

	if movesAt < len(args) {
		for _, moveStr := range args[movesAt+1:] {
			m, ok := parseMove(&b, moveStr)
			if !ok {
				log.Warn().Str("move", moveStr).Msg("position-illegal-move")
				return
			}
			b.Apply(m)
		}
	}
	u.board = b
}

// parseMove finds the legal move written as moveStr.
func parseMove(b *dragontoothmg.Board, moveStr string) (position.Move, bool) {
	for _, m := range b.GenerateLegalMoves() {
		if position.MoveString(m) == moveStr {
			return m, true
		}
	}
	return position.NoMove, false
}

// parseGoOptions parses "go" command arguments.
func (u *UCI) parseGoOptions(args []string) timeman.Config {
	cfg := timeman.Config{
		MoveOverhead: time.Duration(u.overhead.Int()) * time.Millisecond,
	}
	ms := func(i int) time.Duration {
		if i+1 >= len(args) {
			return 0
		}
		n, _ := strconv.Atoi(args[i+1])
		return time.Duration(n) * time.Millisecond
	}
	num := func(i int) int {
		if i+1 >= len(args) {
			return 0
		}
		n, _ := strconv.Atoi(args[i+1])
		return n
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			cfg.Depth = num(i)
			i++
		case "movetime":
			cfg.MoveTime = ms(i)
			i++
		case "wtime":
			cfg.Time[position.White] = ms(i)
			i++
		case "btime":
			cfg.Time[position.Black] = ms(i)
			i++
		case "winc":
			cfg.Inc[position.White] = ms(i)
			i++
		case "binc":
			cfg.Inc[position.Black] = ms(i)
			i++
		case "movestogo":
			cfg.MovesToGo = num(i)
			i++
		case "infinite":
			cfg.Infinite = true
		}
	}

	// A bare "go" searches until stopped.
	if cfg.Depth == 0 && cfg.MoveTime == 0 &&
		cfg.Time[position.White] == 0 && cfg.Time[position.Black] == 0 &&
		cfg.Inc[position.White] == 0 && cfg.Inc[position.Black] == 0 {
		cfg.Infinite = true
	}
	return cfg
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	u.handleStop()

	cfg := u.parseGoOptions(args)
	b := u.board
	searchCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.searching = new(errgroup.Group)

	u.searching.Go(func() error {
		res := u.searcher.Go(searchCtx, &b, cfg)
		u.send("bestmove %s", position.MoveString(res.Move))
		return nil
	})
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info search.Info) {
	var score string
	switch {
	case info.Score > search.MateScore-100:
		score = fmt.Sprintf("mate %d", (search.MateScore-info.Score+1)/2)
	case info.Score < -search.MateScore+100:
		score = fmt.Sprintf("mate %d", -(search.MateScore+info.Score+1)/2)
	default:
		score = fmt.Sprintf("cp %d", info.Score)
	}
	u.send("info depth %d score %s nodes %d nps %d time %d pv %s",
		info.Depth, score, info.Nodes, info.NPS, info.Time.Milliseconds(), position.MoveString(info.Move))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching == nil {
		return
	}
	u.cancel()
	if err := u.searching.Wait(); err != nil {
		log.Error().Err(err).Msg("search-failed")
	}
	u.searching = nil
	u.cancel = nil
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}

	n, v := strings.Join(name, " "), strings.Join(value, " ")
	if err := u.options.Apply(n, v); err != nil {
		log.Warn().Err(err).Str("name", n).Str("value", v).Msg("setoption-rejected")
		u.send("info string %v", err)
	}
}
