package board

import (
	"fmt"
	"strings"
)

// State is a complete chess position: placement, game state, hash and the
// adjacency graph. It holds no pointers, so a plain assignment clones it.
type State struct {
	Grid Grid

	SideToMove     Color
	Castling       CastlingRights
	EPFile         int // file of a capturable two-square pawn, NoFile if none
	HalfMoveClock  int // plies since the last pawn move or capture
	FullMoveNumber int // starts at 1, incremented after Black moves

	Hash uint64

	Graph Graph
}

// NewGame creates the starting position.
func NewGame() *State {
	s := &State{
		SideToMove:     White,
		Castling:       AllCastling,
		EPFile:         NoFile,
		FullMoveNumber: 1,
	}
	for slot := Slot(0); slot < SlotCount; slot++ {
		sq := slot.StartSquare()
		s.Grid.Set(sq, NewPiece(slot.Color(), slot.StartKind()))
		s.Graph.place(slot, sq)
	}
	s.Hash = s.ComputeHash()
	s.recomputeGraph()
	return s
}

// Clone returns an independent copy of the position.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// PieceAt returns the piece at a square, Empty for off-board squares.
func (s *State) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return Empty
	}
	return s.Grid.At(sq)
}

// KingSquare returns the square of a color's king. A missing king is an
// invariant violation.
func (s *State) KingSquare(c Color) Square {
	k := KingSlot(c)
	sq := s.Graph.Location(k)
	if !sq.Valid() || s.Grid.At(sq) != NewPiece(c, King) {
		fatal("KingSquare", k, sq, NoSquare, "%s king missing", c)
	}
	return sq
}

// Snapshot returns the placement snapshot FromHistory rebuilds from.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{Grid: s.Grid, SideToMove: s.SideToMove}
	for slot := Slot(0); slot < SlotCount; slot++ {
		snap.Slots[slot] = s.Graph.Location(slot)
	}
	return snap
}

// Material returns the material balance (positive favors white).
func (s *State) Material() int {
	score := 0
	for slot := Slot(0); slot < SlotCount; slot++ {
		if !s.Graph.Alive(slot) {
			continue
		}
		p := s.Grid.At(s.Graph.Location(slot))
		if p.Color() == White {
			score += PieceValue[p.Type()]
		} else {
			score -= PieceValue[p.Type()]
		}
	}
	return score
}

// PieceValue is the material value of each kind in centipawns.
var PieceValue = [7]int{
	NoPieceType: 0,
	Pawn:        100,
	Knight:      300,
	Bishop:      300,
	Rook:        500,
	Queen:       900,
	King:        0,
}

// CheckInvariants checks the structural invariants of the position: the grid
// and the graph agree on every square, each side has one king, and the hash
// matches a fresh computation.
func (s *State) CheckInvariants() error {
	kings := [2]int{}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := Square{File: file, Rank: rank}
			p := s.Grid.At(sq)
			slot := s.Graph.SlotAt(sq)
			if p.IsEmpty() != (slot == NoSlot) {
				return fmt.Errorf("square %s: piece %s, slot %d disagree", sq, p, slot)
			}
			if p.IsEmpty() {
				continue
			}
			if !s.Graph.Alive(slot) || s.Graph.Location(slot) != sq {
				return fmt.Errorf("square %s: slot %d not live here", sq, slot)
			}
			if slot.Color() != p.Color() {
				return fmt.Errorf("square %s: slot %d has wrong color", sq, slot)
			}
			if p.Type() == King {
				kings[p.Color().Index()]++
			}
			if p.Type() == Pawn && (rank == 0 || rank == 7) {
				return fmt.Errorf("pawn on back rank at %s", sq)
			}
		}
	}
	if kings[0] != 1 || kings[1] != 1 {
		return fmt.Errorf("need one king per side, have %d white %d black", kings[0], kings[1])
	}
	if h := s.ComputeHash(); h != s.Hash {
		return fmt.Errorf("hash %016x, recomputed %016x", s.Hash, h)
	}
	return nil
}

// String returns an ASCII diagram of the position.
func (s *State) String() string {
	var sb strings.Builder
	sb.WriteString("  +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d |", rank+1)
		for file := 0; file < 8; file++ {
			p := s.Grid.At(Square{File: file, Rank: rank})
			if p.IsEmpty() {
				sb.WriteString("   |")
			} else {
				fmt.Fprintf(&sb, " %s |", p)
			}
		}
		sb.WriteString("\n  +---+---+---+---+---+---+---+---+\n")
	}
	sb.WriteString("    a   b   c   d   e   f   g   h\n")
	fmt.Fprintf(&sb, "\nFEN: %s\n", s.FEN())
	fmt.Fprintf(&sb, "Hash: %016x\n", s.Hash)
	return sb.String()
}
