package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bsumner2/gbachess/internal/board"
)

var (
	ErrNoPosition   = errors.New("engine: no position to search")
	ErrWrongSide    = errors.New("engine: side is not to move")
	ErrNoLegalMoves = errors.New("engine: no legal moves")
	ErrStopped      = errors.New("engine: search stopped before the first iteration")
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth int // Maximum depth
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 3 ply
	Hard                     // 4 ply
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2},
	Medium: {Depth: 3},
	Hard:   {Depth: 4},
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "difficulty(" + strconv.Itoa(int(d)) + ")"
}

// ParseDifficulty parses a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Params describes one move decision.
type Params struct {
	Position *board.State
	Depth    int         // 0 selects the difficulty preset
	Side     board.Color // must be the side to move of Position
	LastMove board.MoveFlags
}

// Result is the outcome of a move decision. Score is from the point of
// view of the side that searched.
type Result struct {
	Move  board.Move
	Score int
	Depth int
	Nodes uint64
}

// AI is the computer player: a transposition table that persists across
// decisions, a searcher and a small pool of committed positions.
type AI struct {
	tt         *TranspositionTable
	searcher   *Searcher
	pool       *board.Pool
	difficulty Difficulty
	stop       atomic.Bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewAI creates an AI whose transposition table has the given number of
// buckets.
func NewAI(buckets int) *AI {
	ai := &AI{
		tt:         NewTranspositionTable(buckets),
		pool:       board.NewPool(),
		difficulty: Medium,
	}
	ai.searcher = NewSearcher(ai.tt, &ai.stop)
	return ai
}

// SetDifficulty sets the depth used when Params.Depth is zero.
func (ai *AI) SetDifficulty(d Difficulty) {
	ai.difficulty = d
}

// Difficulty returns the current difficulty.
func (ai *AI) Difficulty() Difficulty {
	return ai.difficulty
}

// Search picks a move for the side to move at the current difficulty.
func (ai *AI) Search(pos *board.State) (Result, error) {
	if pos == nil {
		return Result{}, ErrNoPosition
	}
	limits := DifficultySettings[ai.difficulty]
	return ai.ChooseMove(Params{Position: pos, Depth: limits.Depth, Side: pos.SideToMove})
}

// ChooseMove searches the position and returns the best move for p.Side.
// The caller's position is never modified: the search runs on a copy
// checked out of the AI's pool. Each call is one generation of the
// transposition table.
//
// Depths are searched iteratively from 1 up to p.Depth, reporting through
// OnInfo after each one. When Stop interrupts a depth, the previous depth's
// result is returned.
func (ai *AI) ChooseMove(p Params) (Result, error) {
	if p.Position == nil {
		return Result{}, ErrNoPosition
	}
	if p.Side != p.Position.SideToMove {
		return Result{}, fmt.Errorf("%s asked to move, %s to play: %w", p.Side, p.Position.SideToMove, ErrWrongSide)
	}
	depth := p.Depth
	if depth <= 0 {
		depth = DifficultySettings[ai.difficulty].Depth
	}
	depth = min(depth, MaxPly-1)

	h := ai.pool.Acquire()
	defer ai.pool.Release(h)
	committed := ai.pool.Get(h)
	*committed = *p.Position

	gen := ai.tt.NewSearch()
	ai.stop.Store(false)
	ai.searcher.Reset()

	start := time.Now()
	var res Result
	completed := false
	for d := 1; d <= depth; d++ {
		move, score := ai.searcher.Search(committed, d, gen, p.LastMove)
		if ai.searcher.Aborted() {
			break
		}
		res = Result{Move: move, Score: score, Depth: d, Nodes: ai.searcher.Nodes()}
		completed = true

		if ai.OnInfo != nil {
			info := SearchInfo{
				Depth:    d,
				Score:    score,
				Nodes:    ai.searcher.Nodes(),
				Time:     time.Since(start),
				HashFull: ai.tt.HashFull(),
			}
			if !move.IsNone() {
				info.PV = []board.Move{move}
			}
			ai.OnInfo(info)
		}

		// Nothing to search, or a forced mate found.
		if move.IsNone() || score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
	}

	if !completed {
		return Result{Move: board.NoMove}, ErrStopped
	}
	if res.Move.IsNone() {
		return res, ErrNoLegalMoves
	}
	return res, nil
}

// Stop interrupts a running ChooseMove from another goroutine.
func (ai *AI) Stop() {
	ai.stop.Store(true)
}

// Clear empties the transposition table.
func (ai *AI) Clear() {
	ai.tt.Clear()
}

// Resize replaces the transposition table with one of the given size.
func (ai *AI) Resize(buckets int) {
	ai.tt = NewTranspositionTable(buckets)
	ai.searcher = NewSearcher(ai.tt, &ai.stop)
}

// Table returns the transposition table.
func (ai *AI) Table() *TranspositionTable {
	return ai.tt
}

// Perft performs a perft test (for debugging move generation).
func (ai *AI) Perft(pos *board.State, depth int) uint64 {
	return pos.Perft(depth)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + strconv.Itoa(mateIn)
	}
	if score < -MateScore+MaxPly {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + strconv.Itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
