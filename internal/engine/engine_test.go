package engine

import (
	"errors"
	"testing"

	"github.com/bsumner2/gbachess/internal/board"
	"github.com/bsumner2/gbachess/internal/testutil"
)

func choose(t *testing.T, ai *AI, fen string, depth int) Result {
	t.Helper()
	s := board.MustParseFEN(fen)
	res, err := ai.ChooseMove(Params{Position: s, Depth: depth, Side: s.SideToMove})
	testutil.AssertNoError(t, err, "ChooseMove(%s)", fen)
	return res
}

func TestChooseMoveLegal(t *testing.T) {
	ai := NewAI(DefaultBuckets)
	s := board.NewGame()
	before := *s

	res, err := ai.ChooseMove(Params{Position: s, Depth: 2, Side: board.White})
	testutil.AssertNoError(t, err)
	if _, ok := s.ValidateMove(res.Move); !ok {
		t.Errorf("search returned illegal move %s", res.Move)
	}
	if *s != before {
		t.Error("ChooseMove modified the caller's position")
	}
	if res.Depth != 2 || res.Nodes == 0 {
		t.Errorf("result %+v, want depth 2 and some nodes", res)
	}
}

func TestChooseMoveDeterministic(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	a := choose(t, NewAI(DefaultBuckets), fen, 3)
	b := choose(t, NewAI(DefaultBuckets), fen, 3)
	testutil.AssertEqual(t, b.Move, a.Move)
	if a.Score != b.Score {
		t.Errorf("scores differ: %d vs %d", a.Score, b.Score)
	}

	ai := NewAI(DefaultBuckets)
	choose(t, ai, board.StartFEN, 2)
	ai.Clear()
	c := choose(t, ai, fen, 3)
	testutil.AssertEqual(t, c.Move, a.Move)
}

func TestMateInOne(t *testing.T) {
	fen := "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	want := board.Move{From: board.MustSquare("a1"), To: board.MustSquare("a8")}

	res := choose(t, NewAI(DefaultBuckets), fen, 1)
	if res.Move.From != want.From || res.Move.To != want.To {
		t.Errorf("depth 1 move = %s, want %s", res.Move, want)
	}
	if res.Score != MateScore-1 {
		t.Errorf("depth 1 score = %d, want %d", res.Score, MateScore-1)
	}

	// A full depth-3 search keeps the same mate score.
	tt := NewTranspositionTable(DefaultBuckets)
	move, score := NewSearcher(tt, nil).Search(board.MustParseFEN(fen), 3, tt.NewSearch(), 0)
	if move.From != want.From || move.To != want.To {
		t.Errorf("depth 3 move = %s, want %s", move, want)
	}
	if score != MateScore-1 {
		t.Errorf("depth 3 score = %d, want %d", score, MateScore-1)
	}
	if ScoreToString(score) != "Mate in 1" {
		t.Errorf("ScoreToString = %q", ScoreToString(score))
	}
}

func TestWinsHangingQueen(t *testing.T) {
	res := choose(t, NewAI(DefaultBuckets), "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1", 2)
	if res.Move.String() != "d2d5" {
		t.Errorf("move = %s, want d2d5", res.Move)
	}
}

func TestChooseMoveGameOver(t *testing.T) {
	ai := NewAI(DefaultBuckets)

	mated := board.MustParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	res, err := ai.ChooseMove(Params{Position: mated, Depth: 2, Side: board.White})
	testutil.AssertErrorIs(t, err, ErrNoLegalMoves)
	if !res.Move.IsNone() || res.Score != -MateScore {
		t.Errorf("checkmated result %+v", res)
	}

	stalemate := board.MustParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	res, err = ai.ChooseMove(Params{Position: stalemate, Depth: 2, Side: board.Black})
	testutil.AssertErrorIs(t, err, ErrNoLegalMoves)
	if res.Score != 0 {
		t.Errorf("stalemate score = %d, want 0", res.Score)
	}
}

func TestChooseMoveBadParams(t *testing.T) {
	ai := NewAI(DefaultBuckets)
	_, err := ai.ChooseMove(Params{})
	testutil.AssertErrorIs(t, err, ErrNoPosition)

	_, err = ai.ChooseMove(Params{Position: board.NewGame(), Depth: 1, Side: board.Black})
	testutil.AssertErrorIs(t, err, ErrWrongSide)
}

func TestChooseMoveReleasesPool(t *testing.T) {
	ai := NewAI(DefaultBuckets)
	for i := 0; i < 3*board.PoolSize; i++ {
		choose(t, ai, board.StartFEN, 1)
	}
	if got := ai.pool.Available(); got != board.PoolSize {
		t.Errorf("pool has %d free states, want %d", got, board.PoolSize)
	}
}

func TestOnInfoPerDepth(t *testing.T) {
	ai := NewAI(DefaultBuckets)
	var depths []int
	ai.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		if len(info.PV) != 1 {
			t.Errorf("depth %d PV = %v", info.Depth, info.PV)
		}
	}
	choose(t, ai, board.StartFEN, 3)
	testutil.AssertEqual(t, depths, []int{1, 2, 3})
}

func TestGenerationPerDecision(t *testing.T) {
	ai := NewAI(DefaultBuckets)
	res := choose(t, ai, board.StartFEN, 2)
	gen := ai.Table().Generation()
	if gen != 1 {
		t.Errorf("generation = %d after one decision, want 1", gen)
	}
	e, ok := ai.Table().Probe(board.NewGame().Hash, 2, gen)
	if !ok {
		t.Fatal("root entry missing from the table")
	}
	testutil.AssertEqual(t, e.Move, res.Move)
}

func TestDifficultyPresets(t *testing.T) {
	for _, tc := range []struct {
		name string
		d    Difficulty
	}{{"easy", Easy}, {"Medium", Medium}, {"HARD", Hard}} {
		d, err := ParseDifficulty(tc.name)
		testutil.AssertNoError(t, err)
		if d != tc.d {
			t.Errorf("ParseDifficulty(%q) = %s", tc.name, d)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Error("unknown difficulty accepted")
	}

	ai := NewAI(DefaultBuckets)
	ai.SetDifficulty(Easy)
	res, err := ai.Search(board.NewGame())
	testutil.AssertNoError(t, err)
	if res.Depth != DifficultySettings[Easy].Depth {
		t.Errorf("searched to depth %d, want %d", res.Depth, DifficultySettings[Easy].Depth)
	}
	if !errors.Is(func() error { _, err := ai.Search(nil); return err }(), ErrNoPosition) {
		t.Error("Search(nil) did not fail")
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{125, "1.25"},
		{-40, "-0.40"},
		{MateScore - 3, "Mate in 2"},
		{-MateScore + 2, "Mated in 1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
