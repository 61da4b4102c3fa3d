package board

import "strings"

// Color is the team flag of a piece. It is a bit that is OR-ed into a
// Piece so team and kind can be tested independently.
type Color uint8

const (
	NoColor Color = 0
	White   Color = 0x10
	Black   Color = 0x20

	colorMask = White | Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ colorMask
}

// Index returns 0 for White and 1 for Black.
func (c Color) Index() int {
	if c == Black {
		return 1
	}
	return 0
}

// Forward returns the rank delta of a pawn advance.
func (c Color) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// HomeRank returns the back rank of the color.
func (c Color) HomeRank() int {
	if c == White {
		return 0
	}
	return 7
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is the kind of a piece. The zero value is the empty kind.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King

	kindMask = 0x0F
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	const chars = " pnbrqk"
	if pt > King {
		return ' '
	}
	return chars[pt]
}

// IsSlider reports whether the kind moves continuously along lines.
func (pt PieceType) IsSlider() bool {
	return pt == Bishop || pt == Rook || pt == Queen
}

// PromotionRank orders promotion choices, queen highest. Zero for
// non-promotion kinds.
func (pt PieceType) PromotionRank() int {
	switch pt {
	case Queen:
		return 4
	case Rook:
		return 3
	case Bishop:
		return 2
	case Knight:
		return 1
	}
	return 0
}

// Piece is a Color flag combined with a PieceType. The zero value is an
// empty square.
type Piece uint8

// Empty is the piece value of an unoccupied square.
const Empty Piece = 0

// NewPiece creates a piece from its color and type.
func NewPiece(c Color, pt PieceType) Piece {
	return Piece(c) | Piece(pt)
}

// Color returns the team of the piece.
func (p Piece) Color() Color {
	return Color(p) & colorMask
}

// Type returns the kind of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & kindMask)
}

// IsEmpty reports whether the piece is the empty square value.
func (p Piece) IsEmpty() bool {
	return p.Type() == NoPieceType
}

// zobristIndex maps the 12 real pieces onto 0..11.
func (p Piece) zobristIndex() int {
	return p.Color().Index()*6 + int(p.Type()) - 1
}

// String returns the FEN character for the piece.
func (p Piece) String() string {
	if p.IsEmpty() {
		return "."
	}
	c := string(p.Type().Char())
	if p.Color() == White {
		return strings.ToUpper(c)
	}
	return c
}

// PieceFromChar parses a FEN piece character.
func PieceFromChar(ch byte) (Piece, bool) {
	var c Color = Black
	if ch >= 'A' && ch <= 'Z' {
		c = White
		ch += 'a' - 'A'
	}
	switch ch {
	case 'p':
		return NewPiece(c, Pawn), true
	case 'n':
		return NewPiece(c, Knight), true
	case 'b':
		return NewPiece(c, Bishop), true
	case 'r':
		return NewPiece(c, Rook), true
	case 'q':
		return NewPiece(c, Queen), true
	case 'k':
		return NewPiece(c, King), true
	}
	return Empty, false
}

// backRank is the starting kind of each back-rank file.
var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Slot is the stable roster identity (0-31) of a starting piece. Bit 4
// marks White; the low nibble is the back-rank file (0-7) or 8 plus the
// pawn's starting file.
type Slot uint8

// Named back-rank slot offsets within a team.
const (
	SlotRook0   Slot = 0
	SlotKnight0 Slot = 1
	SlotBishop0 Slot = 2
	SlotQueen   Slot = 3
	SlotKing    Slot = 4
	SlotBishop1 Slot = 5
	SlotKnight1 Slot = 6
	SlotRook1   Slot = 7
	SlotPawn0   Slot = 8

	slotWhite Slot = 0x10
	// NoSlot marks a square without a roster piece.
	NoSlot Slot = 0xFF
)

// SlotCount is the number of roster identities.
const SlotCount = 32

// TeamSlot returns the slot of the given team-relative id (0-15).
func TeamSlot(c Color, id Slot) Slot {
	if c == White {
		return slotWhite | id
	}
	return id
}

// KingSlot returns the roster slot of the color's king.
func KingSlot(c Color) Slot {
	return TeamSlot(c, SlotKing)
}

// Color returns the team of the slot.
func (s Slot) Color() Color {
	if s&slotWhite != 0 {
		return White
	}
	return Black
}

// ID returns the team-relative id (0-15).
func (s Slot) ID() Slot {
	return s & 0x0F
}

// StartKind returns the kind the slot starts the game as.
func (s Slot) StartKind() PieceType {
	if s.ID() >= SlotPawn0 {
		return Pawn
	}
	return backRank[s.ID()]
}

// StartSquare returns the square the slot starts the game on.
func (s Slot) StartSquare() Square {
	c := s.Color()
	if s.ID() >= SlotPawn0 {
		return Square{File: int(s.ID() - SlotPawn0), Rank: c.HomeRank() + c.Forward()}
	}
	return Square{File: int(s.ID()), Rank: c.HomeRank()}
}

// Roster is the 32-bit alive mask, one bit per Slot.
type Roster uint32

// FullRoster has every slot alive.
const FullRoster Roster = 0xFFFFFFFF

// Alive reports whether the slot is live.
func (r Roster) Alive(s Slot) bool {
	return r&(1<<s) != 0
}

// Set returns the roster with the slot marked live.
func (r Roster) Set(s Slot) Roster {
	return r | 1<<s
}

// Kill returns the roster with the slot cleared.
func (r Roster) Kill(s Slot) Roster {
	return r &^ (1 << s)
}

// Team returns the live slots of one color as a mask over Slot bits.
func (r Roster) Team(c Color) Roster {
	if c == White {
		return r & 0xFFFF0000
	}
	return r & 0x0000FFFF
}

// CastlingRights is the 4-bit castling availability mask.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = 0xF
)

// KingSide returns the king-side right of a color.
func KingSide(c Color) CastlingRights {
	if c == White {
		return WhiteKingSideCastle
	}
	return BlackKingSideCastle
}

// QueenSide returns the queen-side right of a color.
func QueenSide(c Color) CastlingRights {
	if c == White {
		return WhiteQueenSideCastle
	}
	return BlackQueenSideCastle
}

// Of returns the rights held by one color.
func (cr CastlingRights) Of(c Color) CastlingRights {
	return cr & (KingSide(c) | QueenSide(c))
}

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKingSideCastle != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQueenSideCastle != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKingSideCastle != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQueenSideCastle != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}
