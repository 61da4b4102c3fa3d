package board

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/google/go-cmp/cmp"
	"github.com/notnil/chess"
)

func uciMoves(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	slices.Sort(out)
	return out
}

func oracleMoves(fen string) []string {
	b := dragontoothmg.ParseFen(fen)
	legal := b.GenerateLegalMoves()
	out := make([]string, 0, len(legal))
	for i := range legal {
		out = append(out, legal[i].String())
	}
	slices.Sort(out)
	return out
}

// The legal move set of random positions must match an independent
// bitboard generator.
func TestLegalMovesMatchOracle(t *testing.T) {
	games := 200
	if testing.Short() {
		games = 20
	}
	rng := rand.New(rand.NewSource(42))
	for g := 0; g < games; g++ {
		randomGame(t, rng, 100, func(s *State, _ Move) {
			fen := s.FEN()
			if diff := cmp.Diff(oracleMoves(fen), uciMoves(s.LegalMoves())); diff != "" {
				t.Fatalf("legal moves differ in %s (-oracle +ours):\n%s", fen, diff)
			}
		})
	}
}

func TestGameStatusMatchesOracle(t *testing.T) {
	fens := []string{
		StartFEN,
		"R6k/6pp/8/8/8/8/8/K7 b - - 0 1",                              // back-rank mate
		"6Rk/8/8/8/8/8/8/K7 b - - 0 1",                                // king takes the rook
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",                              // stalemate
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", // fool's mate
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatalf("oracle FEN: %v", err)
			}
			game := chess.NewGame(opt)
			want := game.Position().Status()

			s := MustParseFEN(fen)
			got := chess.NoMethod
			switch {
			case s.IsCheckmate(s.Checkers(s.SideToMove)):
				got = chess.Checkmate
			case s.IsStalemate():
				got = chess.Stalemate
			}
			if got != want {
				t.Errorf("status = %s, oracle %s", got, want)
			}
			if n, want := len(s.LegalMoves()), len(game.ValidMoves()); n != want {
				t.Errorf("%d legal moves, oracle %d", n, want)
			}
		})
	}
}
