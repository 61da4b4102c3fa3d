package board

import (
	"testing"

	"github.com/bsumner2/gbachess/internal/testutil"
)

func TestOpeningMoveCounts(t *testing.T) {
	s := NewGame()
	a := NewMoveArena(1)

	for slot := Slot(0); slot < SlotCount; slot++ {
		from := slot.StartSquare()
		want := 0
		switch slot.StartKind() {
		case Knight, Pawn:
			want = 2
		}

		l := s.Moves(from, AllMinusAllied, a)
		if l.Len() != want {
			t.Errorf("%s on %s: %d moves, want %d", slot.StartKind(), from, l.Len(), want)
		}
		l.Release()
	}

	if a.InUse() != 0 {
		t.Errorf("arena still holds %d units", a.InUse())
	}
}

func TestPawnOpeningDestinations(t *testing.T) {
	s := NewGame()
	a := NewMoveArena(1)
	l := s.Moves(square("e2"), AllMinusAllied, a)
	defer l.Release()

	want := []Candidate{
		{Dst: square("e3")},
		{Dst: square("e4"), Flags: MoveTwoSquare},
	}
	testutil.AssertEqual(t, l.Candidates(), want)
}

func TestQueenOnOpenBoard(t *testing.T) {
	s := MustParseFEN("4k3/8/8/8/3Q4/8/8/4K3 w - - 0 1")
	a := NewMoveArena(1)
	l := s.Moves(square("d4"), AllMinusAllied, a)
	defer l.Release()

	if l.Len() != MaxCandidates {
		t.Errorf("queen on d4 has %d moves, want %d", l.Len(), MaxCandidates)
	}
}

func TestSliderStopsAtBlocker(t *testing.T) {
	s := MustParseFEN("4k3/8/8/3p4/8/8/3R4/4K3 w - - 0 1")
	a := NewMoveArena(1)
	l := s.Moves(square("d2"), AllMinusAllied, a)
	defer l.Release()

	seen := map[Square]MoveFlags{}
	for _, c := range l.Candidates() {
		seen[c.Dst] = c.Flags
	}
	if f, ok := seen[square("d5")]; !ok || !f.Any(MoveCapture) {
		t.Errorf("rook should capture on d5, got %v %v", ok, f)
	}
	if _, ok := seen[square("d6")]; ok {
		t.Error("rook slid through the pawn on d5")
	}
}

func TestCollisionsOnlyMode(t *testing.T) {
	s := NewGame()
	a := NewMoveArena(1)

	tests := []struct {
		from string
		want int
	}{
		{"b1", 1}, // d2
		{"e2", 0}, // pushes never collide, diagonals empty
		{"d1", 5}, // c1 c2 d2 e2 e1
		{"e1", 5},
		{"a1", 2}, // a2 b1
	}

	for _, tc := range tests {
		l := s.Moves(square(tc.from), CollisionsOnly, a)
		if l.Len() != tc.want {
			t.Errorf("collisions from %s = %d, want %d", tc.from, l.Len(), tc.want)
		}
		for _, c := range l.Candidates() {
			if !s.Grid.Occupied(c.Dst) {
				t.Errorf("collision from %s to empty %s", tc.from, c.Dst)
			}
		}
		l.Release()
	}
}

func TestPromotionExpansion(t *testing.T) {
	s := MustParseFEN("3r2k1/4P3/8/8/8/8/8/4K3 w - - 0 1")
	a := NewMoveArena(1)
	l := s.Moves(square("e7"), AllMinusAllied, a)
	defer l.Release()

	// e8 push and d8 capture, four kinds each.
	if l.Len() != 8 {
		t.Fatalf("got %d candidates, want 8", l.Len())
	}
	kinds := map[PieceType]int{}
	for _, c := range l.Candidates() {
		if !c.Flags.Any(MovePromotion) {
			t.Errorf("candidate %s lacks promotion flag", c.Dst)
		}
		kinds[c.Promotion]++
	}
	for _, k := range promotionOrder {
		if kinds[k] != 2 {
			t.Errorf("%s emitted %d times, want 2", k, kinds[k])
		}
	}
}

func TestCastleCandidates(t *testing.T) {
	s := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	a := NewMoveArena(1)
	l := s.Moves(square("e1"), AllMinusAllied, a)
	defer l.Release()

	var castles int
	for _, c := range l.Candidates() {
		if c.Flags.Any(MoveCastle) {
			castles++
		}
	}
	if castles != 2 {
		t.Errorf("king offered %d castles, want 2", castles)
	}

	// Blocked queen-side path.
	s = MustParseFEN("r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1")
	l2 := s.Moves(square("e1"), AllMinusAllied, a)
	defer l2.Release()
	for _, c := range l2.Candidates() {
		if c.Flags.Any(MoveCastleQueenSide) {
			t.Error("queen-side castle offered with b1 occupied")
		}
	}
}

func TestOrderedCapturesFirst(t *testing.T) {
	// The white queen can take either black knight or step to empty squares.
	s := MustParseFEN("4k3/8/5n2/2n5/8/2Q5/8/4K3 w - - 0 1")
	a := NewMoveArena(1)
	l := s.Moves(square("c3"), AllMinusAllied|Ordered, a)
	defer l.Release()

	if l.Len() < 3 {
		t.Fatalf("too few moves: %d", l.Len())
	}
	captures := 0
	for i, c := range l.Candidates() {
		if c.Flags.Any(MoveCapture) {
			if i != captures {
				t.Errorf("capture %s at index %d after quiet moves", c.Dst, i)
			}
			captures++
		}
	}
	if captures != 2 {
		t.Errorf("found %d captures, want 2", captures)
	}

	// Quiet moves are farthest first.
	prev := 1 << 30
	for _, c := range l.Candidates()[captures:] {
		d := square("c3").DistSq(c.Dst)
		if d > prev {
			t.Errorf("quiet move %s (dist %d) after a closer one (%d)", c.Dst, d, prev)
		}
		prev = d
	}
}

func TestOrderedDeterministic(t *testing.T) {
	s := NewGame()
	a := NewMoveArena(1)
	for i := 0; i < 3; i++ {
		l1 := s.Moves(square("g1"), AllMinusAllied|Ordered, a)
		l2 := s.Moves(square("g1"), AllMinusAllied|Ordered, a)
		testutil.AssertEqual(t, l2.Candidates(), l1.Candidates())
		l2.Release()
		l1.Release()
	}
}

func TestIteratorRejectsBadInput(t *testing.T) {
	if _, ok := newPieceIterator(NewPiece(White, Rook), NoSquare, NoCastling); ok {
		t.Error("iterator built for an off-board square")
	}
	if _, ok := newPieceIterator(Empty, square("e4"), NoCastling); ok {
		t.Error("iterator built for an empty square")
	}
}

func TestKingCastleOfferedOnce(t *testing.T) {
	it, ok := newPieceIterator(NewPiece(White, King), square("e1"), AllCastling)
	if !ok {
		t.Fatal("no iterator for king")
	}
	castles := map[MoveFlags]int{}
	for {
		c, ok := it.next()
		if !ok {
			break
		}
		if c.Flags.Any(MoveCastle) {
			castles[c.Flags]++
		}
	}
	if castles[MoveCastleKingSide] != 1 || castles[MoveCastleQueenSide] != 1 {
		t.Errorf("castles offered %v, want one of each", castles)
	}
}
