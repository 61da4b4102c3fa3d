package engine

import (
	"testing"

	"github.com/bsumner2/gbachess/internal/board"
)

func TestEvaluateStartIsBalanced(t *testing.T) {
	if got := Evaluate(board.NewGame(), 0); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
}

func TestEvaluateMaterial(t *testing.T) {
	s := board.MustParseFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if got := Evaluate(s, 0); got < board.PieceValue[board.Queen] {
		t.Errorf("Evaluate = %d, want at least a queen", got)
	}
	if got := EvaluateRelative(s, 0); got != Evaluate(s, 0) {
		t.Errorf("EvaluateRelative for white = %d, want %d", got, Evaluate(s, 0))
	}

	s = board.MustParseFEN("4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	if got := EvaluateRelative(s, 0); got != -Evaluate(s, 0) {
		t.Errorf("EvaluateRelative for black = %d, want %d", got, -Evaluate(s, 0))
	}
}

func TestPositional(t *testing.T) {
	tests := []struct {
		pt   board.PieceType
		sq   string
		want int
	}{
		{board.Knight, "e4", centerBonus},
		{board.Bishop, "c3", centerBonus},
		{board.Queen, "f6", centerBonus},
		{board.Knight, "b4", 0},
		{board.Knight, "e2", 0},
		{board.Knight, "e7", 0},
		{board.Pawn, "e4", 0},
		{board.Rook, "d4", 0},
	}
	for _, tc := range tests {
		if got := positional(tc.pt, board.MustSquare(tc.sq)); got != tc.want {
			t.Errorf("positional(%s, %s) = %d, want %d", tc.pt, tc.sq, got, tc.want)
		}
	}
}

func TestCastlingTerm(t *testing.T) {
	tests := []struct {
		rights board.CastlingRights
		want   int
	}{
		{board.AllCastling, 0},
		{board.NoCastling, 0},
		{board.WhiteKingSideCastle | board.WhiteQueenSideCastle, 4 * castleRightBonus},
		{board.BlackKingSideCastle | board.BlackQueenSideCastle, -4 * castleRightBonus},
		{board.AllCastling &^ board.WhiteQueenSideCastle, -2 * castleRightBonus},
	}
	for _, tc := range tests {
		if got := castlingTerm(tc.rights); got != tc.want {
			t.Errorf("castlingTerm(%s) = %d, want %d", tc.rights, got, tc.want)
		}
	}
}

func TestCastledBonus(t *testing.T) {
	s := board.NewGame()
	for _, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1"} {
		m, _ := board.ParseUCI(uci)
		vm, ok := s.ValidateMove(m)
		if !ok {
			t.Fatalf("%s rejected", uci)
		}
		s.Apply(vm)
	}
	plain := Evaluate(s, 0)
	castled := Evaluate(s, board.MoveSuccessful|board.MoveCastleKingSide)
	if castled-plain != castledBonus {
		t.Errorf("castle bonus = %d, want %d", castled-plain, castledBonus)
	}
}

func TestCheckPressure(t *testing.T) {
	// Rook on a1 checks the white king.
	s := board.MustParseFEN("4k3/8/8/8/8/8/8/r3K3 w - - 0 1")
	if got := checkPressure(s, board.White); got != -checkerHangingMalus {
		t.Errorf("unchallenged checker: %d, want %d", got, -checkerHangingMalus)
	}
	if got := checkPressure(s, board.Black); got != 0 {
		t.Errorf("side not in check: %d, want 0", got)
	}

	// The knight on b3 attacks the checking rook.
	s = board.MustParseFEN("4k3/8/8/8/8/1N6/8/r3K3 w - - 0 1")
	if got := checkPressure(s, board.White); got != checkerCoveredBonus {
		t.Errorf("covered checker: %d, want %d", got, checkerCoveredBonus)
	}
}
