package engine

import (
	"sync/atomic"

	"github.com/bsumner2/gbachess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// nodes between stop-flag checks
const checkInterval = 1024

// Searcher performs a fixed-depth negamax alpha-beta search. Each ply works
// on its own slot of a state stack: children are built by copying the
// parent, so the parent never needs to be restored.
type Searcher struct {
	tt         *TranspositionTable
	gen        uint8
	arena      *board.MoveArena
	arenaDepth int

	stack [MaxPly + 1]board.State

	nodes    uint64
	stopFlag *atomic.Bool
	aborted  bool
}

// NewSearcher creates a searcher over a transposition table. stop may be
// nil.
func NewSearcher(tt *TranspositionTable, stop *atomic.Bool) *Searcher {
	if stop == nil {
		stop = new(atomic.Bool)
	}
	return &Searcher{tt: tt, stopFlag: stop}
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Aborted reports whether the last search was cut short by the stop flag.
func (s *Searcher) Aborted() bool {
	return s.aborted
}

// Search runs one depth-limited search of root under generation gen and
// returns the best move and its score for the side to move. last holds the
// flags of the move that produced root. A root without legal moves returns
// NoMove with the mate or stalemate score.
func (s *Searcher) Search(root *board.State, depth int, gen uint8, last board.MoveFlags) (board.Move, int) {
	if depth < 1 {
		depth = 1
	}
	depth = min(depth, MaxPly-1)

	s.gen = gen
	s.aborted = false
	if s.arena == nil || s.arenaDepth < depth {
		s.arena = board.NewMoveArena(depth)
		s.arenaDepth = depth
	}
	s.stack[0] = *root

	score, move := s.negamax(0, depth, -Infinity, Infinity, last)
	return move, score
}

// Reset clears the node counter and abort state.
func (s *Searcher) Reset() {
	s.nodes = 0
	s.aborted = false
}

func (s *Searcher) shouldStop() bool {
	if s.aborted {
		return true
	}
	if s.nodes%checkInterval != 0 {
		return false
	}
	if s.stopFlag.Load() {
		s.aborted = true
	}
	return s.aborted
}

// negamax searches the state at stack[ply] and returns its score for the
// side to move together with the best move.
func (s *Searcher) negamax(ply, depth, alpha, beta int, last board.MoveFlags) (int, board.Move) {
	s.nodes++
	pos := &s.stack[ply]
	us := pos.SideToMove

	if depth == 0 {
		if pos.InCheck(us) && !pos.HasLegalMove() {
			return -MateScore + ply, board.NoMove
		}
		return EvaluateRelative(pos, last), board.NoMove
	}
	if s.shouldStop() {
		return 0, board.NoMove
	}

	origAlpha := alpha
	best, bestMove := -Infinity, board.NoMove
	legal := 0

	for slot := board.Slot(0); slot < board.SlotCount; slot++ {
		if slot.Color() != us || !pos.Graph.Alive(slot) {
			continue
		}
		from := pos.Graph.Location(slot)
		cut := s.searchPiece(ply, depth, from, &alpha, beta, &best, &bestMove, &legal)
		if cut || s.aborted {
			break
		}
	}
	if s.aborted {
		return 0, board.NoMove
	}

	if legal == 0 {
		if pos.InCheck(us) {
			best = -MateScore + ply
		} else {
			best = 0
		}
		bestMove = board.NoMove
	}

	flag := TTExact
	switch {
	case best <= origAlpha:
		flag = TTUpperBound
	case best >= beta:
		flag = TTLowerBound
	}
	s.tt.Insert(TTEntry{
		Key:   pos.Hash,
		Move:  bestMove,
		Score: int16(AdjustScoreToTT(best, ply)),
		Depth: uint8(depth),
		Gen:   s.gen,
		Flag:  flag,
	})
	return best, bestMove
}

// searchPiece tries every move of the piece on from. It reports whether a
// beta cutoff happened. The move list is released on every path.
func (s *Searcher) searchPiece(ply, depth int, from board.Square, alpha *int, beta int,
	best *int, bestMove *board.Move, legal *int) bool {
	pos := &s.stack[ply]
	us := pos.SideToMove
	child := &s.stack[ply+1]

	list := pos.Moves(from, board.AllMinusAllied|board.Ordered, s.arena)
	defer list.Release()

	for i := 0; i < list.Len(); i++ {
		m := list.Move(i)
		if m.Flags.Any(board.MoveCastle) {
			// Castling through an attacked square leaves no trace in the
			// resulting position, so it has to be validated up front.
			if pos.Validate(m.From, m.To) == 0 {
				continue
			}
		}

		*child = *pos
		child.Apply(m)
		if child.InCheck(us) {
			continue
		}
		*legal++

		var score int
		if e, ok := s.tt.Probe(child.Hash, depth-1, s.gen); ok && usable(e, -beta, -*alpha, ply+1) {
			score = -AdjustScoreFromTT(int(e.Score), ply+1)
		} else {
			score, _ = s.negamax(ply+1, depth-1, -beta, -*alpha, m.Flags)
			score = -score
		}
		if s.aborted {
			return false
		}

		if score > *best {
			*best = score
			*bestMove = m
		}
		if score > *alpha {
			*alpha = score
		}
		if *alpha >= beta {
			return true
		}
	}
	return false
}

// usable reports whether a table entry settles a node searched with the
// window (alpha, beta).
func usable(e TTEntry, alpha, beta, ply int) bool {
	score := AdjustScoreFromTT(int(e.Score), ply)
	switch e.Flag {
	case TTExact:
		return true
	case TTLowerBound:
		return score >= beta
	case TTUpperBound:
		return score <= alpha
	}
	return false
}
