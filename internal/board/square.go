// Package board implements the chess rules core: position state, the piece
// adjacency graph, move generation, move validation and position hashing.
package board

import "fmt"

// Square is the arithmetic square form. File and Rank are signed so that
// delta math can step off the board and be detected with Valid.
// File 0 is the a-file, Rank 0 is the 1st rank.
type Square struct {
	File int
	Rank int
}

// NoSquare is the "no square" sentinel.
var NoSquare = Square{File: -1, Rank: -1}

// Frequently used squares.
var (
	A1 = Square{0, 0}
	B1 = Square{1, 0}
	C1 = Square{2, 0}
	D1 = Square{3, 0}
	E1 = Square{4, 0}
	F1 = Square{5, 0}
	G1 = Square{6, 0}
	H1 = Square{7, 0}
	A8 = Square{0, 7}
	B8 = Square{1, 7}
	C8 = Square{2, 7}
	D8 = Square{3, 7}
	E8 = Square{4, 7}
	F8 = Square{5, 7}
	G8 = Square{6, 7}
	H8 = Square{7, 7}
)

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

// Valid returns true if both coordinates are on the board.
func (sq Square) Valid() bool {
	return sq.File >= 0 && sq.File < 8 && sq.Rank >= 0 && sq.Rank < 8
}

// Add returns the square offset by df files and dr ranks.
func (sq Square) Add(df, dr int) Square {
	return Square{File: sq.File + df, Rank: sq.Rank + dr}
}

// Index returns rank*8+file, for table lookups. Only valid squares.
func (sq Square) Index() int {
	return sq.Rank<<3 | sq.File
}

// Compact packs the square into its 4-bit/4-bit form.
func (sq Square) Compact() Compact {
	if !sq.Valid() {
		return NoCompact
	}
	return Compact(sq.Rank<<4 | sq.File)
}

// DistSq returns the squared euclidean distance between two squares.
func (sq Square) DistSq(o Square) int {
	df, dr := o.File-sq.File, o.Rank-sq.Rank
	return df*df + dr*dr
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File, '1'+sq.Rank)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	sq := Square{File: int(s[0]) - 'a', Rank: int(s[1]) - '1'}
	if !sq.Valid() {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	return sq, nil
}

// MustSquare is ParseSquare for literals; it panics on bad input.
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

// Compact is the packed square form: file in the low nibble, rank in the
// high nibble. Used as the graph vertex key and inside stored records.
type Compact uint8

// NoCompact is the packed "no square" sentinel.
const NoCompact Compact = 0xFF

// Square widens the packed form.
func (c Compact) Square() Square {
	if c == NoCompact {
		return NoSquare
	}
	return Square{File: int(c & 0xF), Rank: int(c >> 4)}
}

func (c Compact) String() string {
	return c.Square().String()
}

// NoFile marks the absence of an en-passant file.
const NoFile = -1
