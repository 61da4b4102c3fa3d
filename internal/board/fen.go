package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a position. Roster slots are assigned
// to pieces standing on their starting squares first, then to any free
// slot of the same kind, and finally promoted pieces take pawn slots.
func ParseFEN(fen string) (*State, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("need at least 4 fields, got %d: %w", len(parts), ErrInvalidFEN)
	}

	s := &State{EPFile: NoFile, FullMoveNumber: 1}

	if err := parsePiecePlacement(&s.Grid, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		s.SideToMove = White
	case "b":
		s.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move %q: %w", parts[1], ErrInvalidFEN)
	}

	rights, err := parseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}

	slots, err := assignSlots(&s.Grid)
	if err != nil {
		return nil, err
	}
	if err := s.placeSlots(slots); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidFEN)
	}
	s.Castling = s.castlingFromPlacement(rights)

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square %q: %w", parts[3], ErrInvalidFEN)
		}
		// Only keep the file when the capture is really there.
		pawnSq := Square{File: sq.File, Rank: sq.Rank - s.SideToMove.Forward()}
		if sq.Rank == epCaptureRank(s.SideToMove) &&
			s.Grid.At(pawnSq) == NewPiece(s.SideToMove.Other(), Pawn) &&
			s.enPassantPossible(pawnSq, s.SideToMove) {
			s.EPFile = sq.File
		}
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock %q: %w", parts[4], ErrInvalidFEN)
		}
		s.HalfMoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number %q: %w", parts[5], ErrInvalidFEN)
		}
		s.FullMoveNumber = fmn
	}

	s.Hash = s.ComputeHash()
	s.recomputeGraph()

	if err := s.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidFEN)
	}
	// The side that just moved cannot have left its king attacked.
	if s.InCheck(s.SideToMove.Other()) {
		return nil, fmt.Errorf("%s to move but %s is in check: %w",
			s.SideToMove, s.SideToMove.Other(), ErrInvalidFEN)
	}
	return s, nil
}

// MustParseFEN is ParseFEN for literals; it panics on bad input.
func MustParseFEN(fen string) *State {
	s, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return s
}

func parsePiecePlacement(g *Grid, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("need 8 ranks, got %d: %w", len(ranks), ErrInvalidFEN)
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d: %w", rank+1, ErrInvalidFEN)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			p, ok := PieceFromChar(byte(c))
			if !ok {
				return fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidFEN)
			}
			g.Set(Square{File: file, Rank: rank}, p)
			file++
		}
		if file != 8 {
			return fmt.Errorf("rank %d has %d squares: %w", rank+1, file, ErrInvalidFEN)
		}
	}
	return nil
}

func parseCastlingRights(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	var cr CastlingRights
	for _, c := range field {
		switch c {
		case 'K':
			cr |= WhiteKingSideCastle
		case 'Q':
			cr |= WhiteQueenSideCastle
		case 'k':
			cr |= BlackKingSideCastle
		case 'q':
			cr |= BlackQueenSideCastle
		default:
			return 0, fmt.Errorf("invalid castling character %q: %w", c, ErrInvalidFEN)
		}
	}
	return cr, nil
}

// assignSlots gives every piece on the grid a roster slot.
func assignSlots(g *Grid) ([SlotCount]Square, error) {
	var slots [SlotCount]Square
	for i := range slots {
		slots[i] = NoSquare
	}
	taken := func(s Slot) bool { return slots[s].Valid() }

	var pending []Square
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := Square{File: file, Rank: rank}
			p := g.At(sq)
			if p.IsEmpty() {
				continue
			}
			if p.Type() == King {
				k := KingSlot(p.Color())
				if taken(k) {
					return slots, fmt.Errorf("two %s kings: %w", p.Color(), ErrInvalidFEN)
				}
				slots[k] = sq
				continue
			}
			matched := false
			for id := Slot(0); id < 16; id++ {
				s := TeamSlot(p.Color(), id)
				if s.StartSquare() == sq && s.StartKind() == p.Type() && !taken(s) {
					slots[s] = sq
					matched = true
					break
				}
			}
			if !matched {
				pending = append(pending, sq)
			}
		}
	}

	for _, sq := range pending {
		p := g.At(sq)
		slot := NoSlot
		// Same starting kind first, then a pawn slot for a promoted piece.
		for id := Slot(0); id < 16 && slot == NoSlot; id++ {
			s := TeamSlot(p.Color(), id)
			if !taken(s) && s.StartKind() == p.Type() {
				slot = s
			}
		}
		for id := SlotPawn0; id < 16 && slot == NoSlot && p.Type() != Pawn; id++ {
			s := TeamSlot(p.Color(), id)
			if !taken(s) {
				slot = s
			}
		}
		if slot == NoSlot {
			return slots, fmt.Errorf("too many %s %ss: %w", p.Color(), p.Type(), ErrInvalidFEN)
		}
		slots[slot] = sq
	}
	return slots, nil
}

// FEN returns the FEN representation of the position.
func (s *State) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := s.Grid.At(Square{File: file, Rank: rank})
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if s.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(s.Castling.String())

	sb.WriteByte(' ')
	if s.EPFile == NoFile {
		sb.WriteByte('-')
	} else {
		sb.WriteString(Square{File: s.EPFile, Rank: epCaptureRank(s.SideToMove)}.String())
	}

	fmt.Fprintf(&sb, " %d %d", s.HalfMoveClock, s.FullMoveNumber)
	return sb.String()
}
