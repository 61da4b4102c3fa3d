// Package engine implements the chess AI: static evaluation, the
// transposition table and the alpha-beta search.
package engine

import (
	"github.com/bsumner2/gbachess/internal/board"
)

// Evaluation weights
const (
	attackingWeight = 10 // per opposing piece threatened
	defendingWeight = 5  // per allied piece protected
	centerBonus     = 15 // minor piece or queen on c3-f6

	castleRightBonus = 25 // per right held; the same is lost per right forfeited
	castledBonus     = 50 // the move that produced the position was a castle

	checkerCoveredBonus = 20 // checker is itself under attack
	checkerHangingMalus = 30 // checker stands unchallenged
)

// Evaluate returns the static evaluation of a position from White's point
// of view. last holds the flags of the move that produced the position.
func Evaluate(s *board.State, last board.MoveFlags) int {
	score := 0
	g := &s.Graph

	for slot := board.Slot(0); slot < board.SlotCount; slot++ {
		if !g.Alive(slot) {
			continue
		}
		v := &g.Vertices[slot]
		sq := v.Location.Square()
		p := s.Grid.At(sq)

		value := board.PieceValue[p.Type()]
		value += attackingWeight*int(v.Attacking) + defendingWeight*int(v.Defending)
		value += positional(p.Type(), sq)

		if p.Color() == board.White {
			score += value
		} else {
			score -= value
		}
	}

	score += castlingTerm(s.Castling)

	if last.Any(board.MoveCastle) {
		// The side that castled is the one not to move.
		if s.SideToMove == board.Black {
			score += castledBonus
		} else {
			score -= castledBonus
		}
	}

	score += checkPressure(s, board.White) - checkPressure(s, board.Black)
	return score
}

// positional rewards knights, bishops and queens on the central files c-f
// and ranks 3-6.
func positional(pt board.PieceType, sq board.Square) int {
	switch pt {
	case board.Knight, board.Bishop, board.Queen:
	default:
		return 0
	}
	if sq.File < 2 || sq.File > 5 || sq.Rank < 2 || sq.Rank > 5 {
		return 0
	}
	return centerBonus
}

// castlingTerm scores each of the four rights: held is good for its owner,
// forfeited is bad.
func castlingTerm(cr board.CastlingRights) int {
	score := 0
	for _, right := range []board.CastlingRights{
		board.WhiteKingSideCastle, board.WhiteQueenSideCastle,
		board.BlackKingSideCastle, board.BlackQueenSideCastle,
	} {
		delta := castleRightBonus
		if cr&right == 0 {
			delta = -delta
		}
		if right&(board.BlackKingSideCastle|board.BlackQueenSideCastle) != 0 {
			delta = -delta
		}
		score += delta
	}
	return score
}

// checkPressure scores c's answer to a check: every checker that c already
// attacks is a plus, every unchallenged checker a minus.
func checkPressure(s *board.State, c board.Color) int {
	score := 0
	for _, checker := range s.Checkers(c) {
		if s.Graph.AttackersOf(checker, c) != 0 {
			score += checkerCoveredBonus
		} else {
			score -= checkerHangingMalus
		}
	}
	return score
}

// EvaluateRelative returns Evaluate from the side to move's point of view.
func EvaluateRelative(s *board.State, last board.MoveFlags) int {
	if s.SideToMove == board.Black {
		return -Evaluate(s, last)
	}
	return Evaluate(s, last)
}
