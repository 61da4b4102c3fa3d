package board

import (
	"math/rand"
	"testing"
)

// randomGame plays up to maxPlies random legal moves from the start
// position, calling visit before each move with the position and the move
// about to be played. It returns the final position.
func randomGame(t testing.TB, rng *rand.Rand, maxPlies int, visit func(s *State, m Move)) *State {
	t.Helper()
	s := NewGame()
	for ply := 0; ply < maxPlies; ply++ {
		moves := s.LegalMoves()
		if len(moves) == 0 {
			break
		}
		m := moves[rng.Intn(len(moves))]
		if visit != nil {
			visit(s, m)
		}
		s.Apply(m)
	}
	return s
}

// play applies UCI moves to a position, failing the test on any rejection.
func play(t testing.TB, s *State, moves ...string) *State {
	t.Helper()
	for _, uci := range moves {
		m, err := ParseUCI(uci)
		if err != nil {
			t.Fatalf("ParseUCI(%q): %v", uci, err)
		}
		vm, ok := s.ValidateMove(m)
		if !ok {
			t.Fatalf("move %s rejected in %s", uci, s.FEN())
		}
		s.Apply(vm)
	}
	return s
}

// fullScanAttacked is the board-scan version of the attack test: it looks
// outward from sq along every line, knight jump, pawn and king square.
func fullScanAttacked(g *Grid, sq Square, by Color) bool {
	for _, d := range allDirs {
		obs, hit := g.NextObstruction(sq, d)
		if !hit {
			continue
		}
		p := g.At(obs)
		if p.Color() != by {
			continue
		}
		if d.MovesAlong(p.Type()) {
			return true
		}
		df, dr := obs.File-sq.File, obs.Rank-sq.Rank
		if abs(df) <= 1 && abs(dr) <= 1 {
			if p.Type() == King {
				return true
			}
			// A pawn attacks sq if sq is one step forward-diagonal of it.
			if p.Type() == Pawn && dr == -by.Forward() && abs(df) == 1 {
				return true
			}
		}
	}
	for _, off := range knightOffsets {
		if n := sq.Add(off[0], off[1]); n.Valid() && g.At(n) == NewPiece(by, Knight) {
			return true
		}
	}
	return false
}

func square(s string) Square {
	return MustSquare(s)
}
