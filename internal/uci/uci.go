// Package uci drives the engine over the Universal Chess Interface
// protocol.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bsumner2/gbachess/internal/board"
	"github.com/bsumner2/gbachess/internal/engine"
	"github.com/bsumner2/gbachess/internal/storage"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	ai       *engine.AI
	position *board.State
	lastMove board.MoveFlags

	// Game record. fromStart is false for FEN setups, which cannot be
	// replayed and so are never saved.
	history   board.History
	fromStart bool
	gameID    uint64

	store    *storage.Storage
	saveGame bool
	depth    int // fixed depth from setoption; 0 = difficulty preset

	// Search state. searchHold is set for "go infinite" and holds the
	// bestmove until it is closed by "stop".
	searchDone chan struct{}
	searchHold chan struct{}

	outMu  sync.Mutex
	out    io.Writer
	errOut io.Writer
}

// New creates a UCI handler around an AI. store may be nil, which disables
// saving games.
func New(ai *engine.AI, store *storage.Storage) *UCI {
	u := &UCI{
		ai:        ai,
		position:  board.NewGame(),
		fromStart: true,
		store:     store,
		out:       os.Stdout,
		errOut:    os.Stderr,
	}
	ai.OnInfo = u.sendInfo
	return u
}

// SetOutput redirects protocol output and diagnostics.
func (u *UCI) SetOutput(out, errOut io.Writer) {
	u.out = out
	u.errOut = errOut
}

// SetDepth fixes the search depth; 0 falls back to the difficulty preset.
func (u *UCI) SetDepth(depth int) {
	u.depth = depth
}

// SetSaveGame turns saving games to the store on or off.
func (u *UCI) SetSaveGame(on bool) {
	u.saveGame = on && u.store != nil
}

// Position returns the current position.
func (u *UCI) Position() *board.State {
	return u.position
}

// History returns the moves played since the starting position.
func (u *UCI) History() board.History {
	return u.history
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) infoString(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.errOut, "info string "+format+"\n", args...)
}

// Run reads commands from r until "quit" or end of input. A search still
// running at end of input is allowed to finish, unless it is infinite.
func (u *UCI) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
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
			u.printf("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "perft":
			u.handlePerft(args)
		default:
			u.infoString("Unknown command: %s", cmd)
		}
	}

	u.wait()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name GBAChess\n")
	u.printf("id author bsumner2\n")
	u.printf("\n")
	u.printf("option name Hash type spin default 1 min 1 max 1024\n")
	u.printf("option name Depth type spin default 0 min 0 max %d\n", engine.MaxPly-1)
	u.printf("option name Difficulty type combo default %s var easy var medium var hard\n", u.ai.Difficulty())
	u.printf("option name SaveGame type check default %t\n", u.saveGame)
	u.printf("uciok\n")
}

// handleNewGame saves the finished game, if any, and resets the engine.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.save()
	u.ai.Clear()
	u.setGame(board.NewGame(), nil, true)
	u.gameID = 0
}

func (u *UCI) setGame(pos *board.State, hist board.History, fromStart bool) {
	u.position = pos
	u.history = hist
	u.fromStart = fromStart
	u.lastMove = 0
	if n := len(hist.HalfMoves()); n > 0 {
		u.lastMove = hist.HalfMoves()[n-1].Flags
	}
}

// Resume continues a saved game.
func (u *UCI) Resume(id uint64) error {
	if u.store == nil {
		return fmt.Errorf("resume game %d: no database", id)
	}
	g, err := u.store.LoadGame(id)
	if err != nil {
		return err
	}
	pos, err := g.Position()
	if err != nil {
		return err
	}
	u.setGame(pos, g.History, true)
	u.gameID = g.ID
	return nil
}

// save writes the current game to the store when saving is on.
func (u *UCI) save() {
	if !u.saveGame || !u.fromStart || len(u.history) == 0 {
		return
	}
	g := &storage.SavedGame{
		ID:      u.gameID,
		White:   "White",
		Black:   "Black",
		Result:  storage.ResultOf(u.position),
		History: u.history,
	}
	if err := u.store.SaveGame(g); err != nil {
		u.infoString("Failed to save game: %v", err)
		return
	}
	u.gameID = g.ID
	u.infoString("Game %d saved (%s)", g.ID, g.Result)
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

	// Find "moves" keyword
	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.setGame(board.NewGame(), nil, true)
	case "fen":
		pos, err := board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.infoString("Invalid FEN: %v", err)
			return
		}
		u.setGame(pos, nil, false)
	default:
		return
	}

	if movesAt == len(args) {
		return
	}
	for _, moveStr := range args[movesAt+1:] {
		if err := u.play(moveStr); err != nil {
			u.infoString("Invalid move: %v", err)
			return
		}
	}
}

// play validates a UCI move against the current position, records it and
// applies it.
func (u *UCI) play(moveStr string) error {
	m, err := board.ParseUCI(moveStr)
	if err != nil {
		return err
	}
	vm, ok := u.position.ValidateMove(m)
	if !ok {
		return fmt.Errorf("%s: %w", moveStr, board.ErrIllegalMove)
	}
	u.history = u.history.Append(u.position.Record(vm))
	u.position.Apply(vm)
	u.lastMove = vm.Flags
	return nil
}

// GoOptions holds parsed "go" command options. Searches are bounded by
// depth only, so clock fields are recognised but not used.
type GoOptions struct {
	Depth    int
	Infinite bool
	Clock    bool // wtime/btime/winc/binc/movestogo/movetime were given
}

// ParseGoOptions parses "go" command arguments. Unknown tokens are skipped.
func ParseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime", "btime", "winc", "binc", "movestogo", "movetime":
			opts.Clock = true
			if i+1 < len(args) {
				i++
			}
		}
	}

	return opts
}

// params converts GoOptions into a move decision for the current position.
func (u *UCI) params(opts GoOptions) engine.Params {
	pos := u.position
	p := engine.Params{
		Position: pos.Clone(),
		Depth:    u.depth,
		Side:     pos.SideToMove,
		LastMove: u.lastMove,
	}
	if opts.Depth > 0 {
		p.Depth = opts.Depth
	}
	if opts.Infinite {
		p.Depth = engine.MaxPly - 1
	}
	return p
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := ParseGoOptions(args)
	if opts.Clock && opts.Depth == 0 && !opts.Infinite {
		u.infoString("Clock ignored, searching to fixed depth")
	}
	p := u.params(opts)
	fallback := u.position.Clone()
	done := make(chan struct{})
	u.searchDone = done
	var hold chan struct{}
	if opts.Infinite {
		hold = make(chan struct{})
	}
	u.searchHold = hold

	go func() {
		defer close(done)

		res, err := u.ai.ChooseMove(p)
		if hold != nil {
			// A finished infinite search still reports only after stop.
			<-hold
		}
		switch {
		case err == nil:
			u.printf("bestmove %s\n", res.Move)
		case res.Move.IsNone() && res.Depth > 0:
			// Checkmate or stalemate.
			u.printf("bestmove 0000\n")
		default:
			// Stopped before the first depth finished.
			u.infoString("Search ended early: %v", err)
			if moves := fallback.LegalMoves(); len(moves) > 0 {
				u.printf("bestmove %s\n", moves[0])
			} else {
				u.printf("bestmove 0000\n")
			}
		}
	}()
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	if info.Score > engine.MateScore-engine.MaxPly {
		mateIn := (engine.MateScore - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else if info.Score < -engine.MateScore+engine.MaxPly {
		mateIn := -(engine.MateScore + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	done := u.searchDone
	if done == nil {
		return
	}
	if u.searchHold != nil {
		close(u.searchHold)
		u.searchHold = nil
	}
	// The search clears the stop flag when it starts, so keep raising it
	// until the goroutine is done.
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		u.ai.Stop()
		select {
		case <-done:
			u.searchDone = nil
			return
		case <-tick.C:
		}
	}
}

func (u *UCI) wait() {
	if u.searchHold != nil {
		u.handleStop()
		return
	}
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

// handleQuit stops searching and saves the game.
func (u *UCI) handleQuit() {
	u.handleStop()
	u.save()
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	u.handleStop()

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			u.infoString("Invalid Hash value: %q", value)
			return
		}
		u.ai.Resize(engine.BucketsForMB(mb))
	case "depth":
		depth, err := strconv.Atoi(value)
		if err != nil || depth < 0 {
			u.infoString("Invalid Depth value: %q", value)
			return
		}
		u.depth = depth
	case "difficulty":
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			u.infoString("%v", err)
			return
		}
		u.ai.SetDifficulty(d)
	case "savegame":
		on := strings.ToLower(value) == "true"
		if on && u.store == nil {
			u.infoString("SaveGame needs a database")
		}
		u.SetSaveGame(on)
	default:
		u.infoString("Unknown option: %s", name)
	}
}

// handleDisplay prints the board and, for games from the start, the moves
// played so far.
func (u *UCI) handleDisplay() {
	u.printf("%s", u.position.String())
	if !u.fromStart || len(u.history) == 0 {
		return
	}
	san, err := u.history.SAN()
	if err != nil {
		u.infoString("Bad history: %v", err)
		return
	}
	u.printf("Moves: %s\n", board.MoveText(san))
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d >= 0 {
			depth = d
		}
	}

	start := time.Now()
	nodes := u.ai.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
