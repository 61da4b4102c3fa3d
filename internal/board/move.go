package board

import (
	"fmt"
	"strings"
)

// MoveFlags tags a move with its special-move metadata. Validate returns
// MoveSuccessful plus the tags of an accepted move, or zero.
type MoveFlags uint16

const (
	MoveSuccessful      MoveFlags = 0x0001
	MovePromotion       MoveFlags = 0x0400
	MoveCapture         MoveFlags = 0x0800
	MoveTwoSquare       MoveFlags = 0x1000
	MoveCastleKingSide  MoveFlags = 0x2000
	MoveCastleQueenSide MoveFlags = 0x4000
	MoveEnPassant       MoveFlags = 0x8000

	MoveCastle  = MoveCastleKingSide | MoveCastleQueenSide
	moveSpecial = MoveCastle | MoveTwoSquare
)

// Has reports whether all bits of f2 are set.
func (f MoveFlags) Has(f2 MoveFlags) bool {
	return f&f2 == f2
}

// Any reports whether any bit of f2 is set.
func (f MoveFlags) Any(f2 MoveFlags) bool {
	return f&f2 != 0
}

// String lists the set tags, e.g. "capture|ep".
func (f MoveFlags) String() string {
	if f == 0 {
		return "rejected"
	}
	var parts []string
	names := []struct {
		bit  MoveFlags
		name string
	}{
		{MoveSuccessful, "ok"},
		{MoveCapture, "capture"},
		{MoveEnPassant, "ep"},
		{MoveTwoSquare, "double"},
		{MoveCastleKingSide, "O-O"},
		{MoveCastleQueenSide, "O-O-O"},
		{MovePromotion, "promo"},
	}
	for _, n := range names {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Candidate is one destination produced by move generation for a piece.
type Candidate struct {
	Dst       Square
	Flags     MoveFlags
	Promotion PieceType
}

// Move is a fully specified move ready to be applied.
type Move struct {
	From      Square
	To        Square
	Flags     MoveFlags
	Promotion PieceType
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// IsNone reports whether m is NoMove.
func (m Move) IsNone() bool {
	return !m.From.Valid()
}

// String returns the UCI form of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += string(m.Promotion.Char())
	}
	return s
}

// ParseUCI splits a UCI move string into squares and promotion kind. The
// flags are left for Validate to fill in.
func ParseUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string %q: %w", s, ErrIllegalMove)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%v: %w", err, ErrIllegalMove)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%v: %w", err, ErrIllegalMove)
	}

	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		default:
			return NoMove, fmt.Errorf("invalid promotion in %q: %w", s, ErrIllegalMove)
		}
	}
	return m, nil
}
