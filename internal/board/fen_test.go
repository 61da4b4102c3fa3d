package board

import (
	"testing"

	"github.com/bsumner2/gbachess/internal/testutil"
)

func TestParseFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"4k3/8/8/8/3Pp3/8/8/4K3 b - d3 0 1",
		"6Rk/8/8/8/8/8/8/K7 b - - 3 40",
	} {
		s, err := ParseFEN(fen)
		testutil.AssertNoError(t, err, "ParseFEN(%s)", fen)
		testutil.AssertEqual(t, s.FEN(), fen)
	}
}

func TestParseFENRejectsImpossiblePositions(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"opponent king attacked", "4k3/8/8/8/8/8/4Q3/4K3 w - - 0 1"},
		{"opponent king attacked by knight", "4k3/8/3N4/8/8/8/8/4K3 w - - 0 1"},
		{"white king attacked with black to move", "4k3/8/8/8/8/8/8/r3K3 b - - 0 1"},
		{"pawn on first rank", "4k3/8/8/8/8/8/8/P3K3 w - - 0 1"},
		{"pawn on eighth rank", "p3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"missing king", "8/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"two kings", "4k3/8/8/8/8/8/8/K3K3 w - - 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseFEN(tt.fen)
			testutil.AssertErrorIs(t, err, ErrInvalidFEN)
			if s != nil {
				t.Errorf("ParseFEN(%s) returned a state alongside %v", tt.fen, err)
			}
		})
	}
}

func TestMustParseFENPanicsOnImpossiblePosition(t *testing.T) {
	testutil.AssertPanics(t, func() {
		MustParseFEN("4k3/8/8/8/8/8/4Q3/4K3 w - - 0 1")
	})
}
