package board

import (
	"github.com/bsumner2/gbachess/internal/arena"
)

// MoveSetMode selects which destinations the materializer keeps.
type MoveSetMode uint8

const (
	// AllMinusAllied keeps every reachable destination not held by an ally,
	// tagging enemy-held ones as captures.
	AllMinusAllied MoveSetMode = iota
	// CollisionsOnly keeps only destinations holding a piece of either
	// team, under capture geometry. Used to build the adjacency graph.
	CollisionsOnly
	// AllSquares keeps every geometric destination; sliders still stop at
	// the first blocker.
	AllSquares

	modeMask MoveSetMode = 0x3

	// Ordered sorts the result for alpha-beta move ordering.
	Ordered MoveSetMode = 0x4
)

// MaxCandidates bounds the destinations of a single piece (a centralised
// queen on an empty board).
const MaxCandidates = 27

// MoveArena is the allocator move lists are carved from.
type MoveArena = arena.Arena[Candidate]

// NewMoveArena sizes an arena for a search of the given depth: five buffers
// per three plies of full-size candidate lists, plus headroom for the root.
func NewMoveArena(depth int) *MoveArena {
	if depth < 1 {
		depth = 1
	}
	buffers := (depth*5)/3 + 2
	return arena.New[Candidate](buffers * (MaxCandidates + 1))
}

// MoveList is the arena-owned candidate list of one piece. It must be
// released on every path once the caller is done with it.
type MoveList struct {
	From  Square
	Piece Piece

	a     *MoveArena
	buf   arena.Buffer
	items []Candidate
}

// Len returns the number of candidates.
func (l MoveList) Len() int {
	return len(l.items)
}

// At returns the i-th candidate.
func (l MoveList) At(i int) Candidate {
	return l.items[i]
}

// Candidates returns the candidates. The slice is invalid after Release.
func (l MoveList) Candidates() []Candidate {
	return l.items
}

// Move returns the i-th candidate as an applicable move.
func (l MoveList) Move(i int) Move {
	c := l.items[i]
	return Move{From: l.From, To: c.Dst, Flags: c.Flags, Promotion: c.Promotion}
}

// Release returns the list's storage to its arena.
func (l MoveList) Release() {
	if l.a != nil && !l.buf.IsZero() {
		l.a.Release(l.buf)
	}
}

// Moves materializes the destinations of the piece on from. Running out of
// arena space is fatal.
func (s *State) Moves(from Square, mode MoveSetMode, a *MoveArena) MoveList {
	var scratch [MaxCandidates]Candidate
	n := s.collect(from, mode, &scratch)

	l := MoveList{From: from, a: a}
	if from.Valid() {
		l.Piece = s.Grid.At(from)
	}
	if n == 0 {
		return l
	}
	if mode&Ordered != 0 {
		s.orderCandidates(from, scratch[:n])
	}

	buf, err := a.Alloc(n)
	if err != nil {
		fatalErr("Moves", err)
	}
	l.buf = buf
	l.items = a.Slice(buf)
	copy(l.items, scratch[:n])
	return l
}

// collect filters the piece iterator's output by occupancy and special-move
// preconditions into out, returning the count.
func (s *State) collect(from Square, mode MoveSetMode, out *[MaxCandidates]Candidate) int {
	if !from.Valid() {
		return 0
	}
	p := s.Grid.At(from)
	rights := s.Castling
	mode &= modeMask
	if mode == CollisionsOnly {
		rights = NoCastling
	}
	it, ok := newPieceIterator(p, from, rights)
	if !ok {
		return 0
	}

	mover := p.Color()
	n := 0
	add := func(c Candidate) {
		if n == len(out) {
			fatal("collect", s.Graph.SlotAt(from), from, c.Dst, "more than %d candidates", MaxCandidates)
		}
		out[n] = c
		n++
	}

	for {
		c, ok := it.next()
		if !ok {
			break
		}
		dst := s.Grid.At(c.Dst)

		switch {
		case p.Type() == Pawn:
			s.collectPawn(from, mover, mode, c, dst, add)

		case c.Flags.Any(MoveCastle):
			if mode != CollisionsOnly && s.castlePathOpen(mover, c.Flags) {
				add(c)
			}

		case dst.IsEmpty():
			if mode != CollisionsOnly {
				add(c)
			}

		default:
			it.skipDirection()
			if dst.Color() == mover {
				if mode != AllMinusAllied {
					add(c)
				}
				continue
			}
			c.Flags |= MoveCapture
			add(c)
		}
	}
	return n
}

func (s *State) collectPawn(from Square, mover Color, mode MoveSetMode, c Candidate, dst Piece, add func(Candidate)) {
	if c.Dst.File == from.File {
		// Pushes never capture, so they are never graph edges.
		switch mode {
		case CollisionsOnly:
			return
		case AllSquares:
			add(c)
			return
		}
		if !dst.IsEmpty() {
			return
		}
		if c.Flags.Any(MoveTwoSquare) && s.Grid.Occupied(from.Add(0, mover.Forward())) {
			return
		}
		add(c)
		return
	}

	switch {
	case !dst.IsEmpty() && dst.Color() != mover:
		c.Flags |= MoveCapture
		add(c)
	case !dst.IsEmpty():
		if mode != AllMinusAllied {
			add(c)
		}
	case mode == CollisionsOnly:
	case s.enPassantTarget(from, c.Dst, mover):
		c.Flags |= MoveCapture | MoveEnPassant
		add(c)
	case mode == AllSquares:
		add(c)
	}
}

// enPassantTarget reports whether a pawn of color mover on from may capture
// en passant onto the empty square dst.
func (s *State) enPassantTarget(from, dst Square, mover Color) bool {
	if s.EPFile == NoFile || dst.File != s.EPFile {
		return false
	}
	if dst.Rank != epCaptureRank(mover) || from.Rank != dst.Rank-mover.Forward() {
		return false
	}
	victim := s.Grid.At(Square{File: dst.File, Rank: from.Rank})
	return victim == NewPiece(mover.Other(), Pawn)
}

// epCaptureRank is the rank a capturing pawn lands on.
func epCaptureRank(c Color) int {
	if c == White {
		return 5
	}
	return 2
}

// castleRookSquares returns the rook's origin and destination for a castle.
func castleRookSquares(c Color, flags MoveFlags) (from, to Square) {
	rank := c.HomeRank()
	if flags.Any(MoveCastleKingSide) {
		return Square{File: 7, Rank: rank}, Square{File: 5, Rank: rank}
	}
	return Square{File: 0, Rank: rank}, Square{File: 3, Rank: rank}
}

// castlePathOpen checks the board-side castle preconditions: right held,
// king and rook on their home squares, and nothing between them. Attack
// checks belong to the validator.
func (s *State) castlePathOpen(c Color, flags MoveFlags) bool {
	right := QueenSide(c)
	if flags.Any(MoveCastleKingSide) {
		right = KingSide(c)
	}
	if s.Castling&right == 0 {
		return false
	}
	king := Square{File: 4, Rank: c.HomeRank()}
	rook, _ := castleRookSquares(c, flags)
	if s.Grid.At(king) != NewPiece(c, King) || s.Grid.At(rook) != NewPiece(c, Rook) {
		return false
	}
	return s.Grid.PathClear(king, rook)
}
