package board

import (
	"fmt"
)

// HalfMove is one side's move as recorded in a game history.
type HalfMove struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Flags     MoveFlags `json:"flags"`
	Promotion PieceType `json:"promotion,omitempty"`
	Slot      Slot      `json:"slot"`
}

// NoHalfMove marks the unplayed black half of the last round.
var NoHalfMove = HalfMove{From: NoSquare, To: NoSquare, Slot: NoSlot}

// Played reports whether the half-move holds a real move.
func (hm HalfMove) Played() bool {
	return hm.From.Valid()
}

// Move returns the half-move as an applicable move.
func (hm HalfMove) Move() Move {
	return Move{From: hm.From, To: hm.To, Flags: hm.Flags, Promotion: hm.Promotion}
}

// String returns the UCI form of the move.
func (hm HalfMove) String() string {
	return hm.Move().String()
}

// Round is one full move: White's half then Black's.
type Round struct {
	White HalfMove `json:"white"`
	Black HalfMove `json:"black"`
}

// History is the ordered list of rounds of a game.
type History []Round

// Append adds a half-move, opening a new round for White's moves.
func (h History) Append(hm HalfMove) History {
	if n := len(h); n > 0 && !h[n-1].Black.Played() {
		h[n-1].Black = hm
		return h
	}
	return append(h, Round{White: hm, Black: NoHalfMove})
}

// HalfMoves flattens the history into play order.
func (h History) HalfMoves() []HalfMove {
	out := make([]HalfMove, 0, 2*len(h))
	for _, r := range h {
		out = append(out, r.White)
		if r.Black.Played() {
			out = append(out, r.Black)
		}
	}
	return out
}

// SideToMove returns whose turn it is after the history.
func (h History) SideToMove() Color {
	if n := len(h); n > 0 && !h[n-1].Black.Played() {
		return Black
	}
	return White
}

// Snapshot is a bare placement: the grid, where each roster slot stands
// (NoSquare once captured) and whose turn it is.
type Snapshot struct {
	Grid       Grid
	Slots      [SlotCount]Square
	SideToMove Color
}

// FromHistory builds a position from a placement snapshot and the history
// that led to it. Castling rights come from replaying which kings and rooks
// have moved, the en passant file from the last half-move, and the hash is
// computed from scratch.
func FromHistory(snap Snapshot, hist History) (*State, error) {
	if hist.SideToMove() != snap.SideToMove {
		return nil, fmt.Errorf("history ends with %s to move, snapshot says %s: %w",
			hist.SideToMove(), snap.SideToMove, ErrInvalidHistory)
	}

	s := &State{
		Grid:       snap.Grid,
		SideToMove: snap.SideToMove,
		EPFile:     NoFile,
	}
	if err := s.placeSlots(snap.Slots); err != nil {
		return nil, err
	}

	moves := hist.HalfMoves()

	s.Castling = AllCastling
	promoted := [SlotCount]bool{}
	for i, hm := range moves {
		if hm.Slot >= SlotCount {
			return nil, fmt.Errorf("half-move %d (%s) has no roster slot: %w", i+1, hm, ErrInvalidHistory)
		}
		c := hm.Slot.Color()
		switch hm.Slot.ID() {
		case SlotKing:
			s.Castling &^= KingSide(c) | QueenSide(c)
		case SlotRook0:
			s.Castling &^= QueenSide(c)
		case SlotRook1:
			s.Castling &^= KingSide(c)
		}

		pawnMove := hm.Slot.StartKind() == Pawn && !promoted[hm.Slot]
		if pawnMove || hm.Flags.Any(MoveCapture) {
			s.HalfMoveClock = 0
		} else {
			s.HalfMoveClock++
		}
		if hm.Promotion != NoPieceType {
			promoted[hm.Slot] = true
		}
	}
	s.Castling = s.castlingFromPlacement(s.Castling)

	if n := len(moves); n > 0 {
		last := moves[n-1]
		if p := s.Grid.At(last.To); p.Type() == Pawn && abs(last.To.Rank-last.From.Rank) == 2 &&
			s.enPassantPossible(last.To, s.SideToMove) {
			s.EPFile = last.To.File
		}
	}

	s.FullMoveNumber = len(hist) + 1
	if s.SideToMove == Black {
		s.FullMoveNumber = max(len(hist), 1)
	}

	s.Hash = s.ComputeHash()
	s.recomputeGraph()
	return s, nil
}

// placeSlots installs the roster from slot locations and checks it against
// the grid.
func (s *State) placeSlots(slots [SlotCount]Square) error {
	for slot := Slot(0); slot < SlotCount; slot++ {
		sq := slots[slot]
		if !sq.Valid() {
			continue
		}
		p := s.Grid.At(sq)
		if p.IsEmpty() || p.Color() != slot.Color() {
			return fmt.Errorf("slot %d at %s holds %s: %w", slot, sq, p, ErrInvalidHistory)
		}
		if p.Type() != slot.StartKind() && slot.StartKind() != Pawn {
			return fmt.Errorf("slot %d at %s holds %s: %w", slot, sq, p, ErrInvalidHistory)
		}
		if s.Graph.SlotAt(sq) != NoSlot {
			return fmt.Errorf("two slots on %s: %w", sq, ErrInvalidHistory)
		}
		s.Graph.place(slot, sq)
	}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := Square{File: file, Rank: rank}
			if s.Grid.Occupied(sq) && s.Graph.SlotAt(sq) == NoSlot {
				return fmt.Errorf("piece on %s has no slot: %w", sq, ErrInvalidHistory)
			}
		}
	}
	for _, c := range [2]Color{White, Black} {
		k := KingSlot(c)
		if !s.Graph.Alive(k) || s.Grid.At(s.Graph.Location(k)) != NewPiece(c, King) {
			return fmt.Errorf("%s king missing: %w", c, ErrInvalidHistory)
		}
	}
	return nil
}

// castlingFromPlacement drops rights whose king or rook is no longer on its
// home square (or was captured).
func (s *State) castlingFromPlacement(cr CastlingRights) CastlingRights {
	for _, c := range [2]Color{White, Black} {
		if s.Graph.Location(KingSlot(c)) != (Square{File: 4, Rank: c.HomeRank()}) {
			cr &^= KingSide(c) | QueenSide(c)
		}
		if s.Graph.Location(TeamSlot(c, SlotRook0)) != (Square{File: 0, Rank: c.HomeRank()}) {
			cr &^= QueenSide(c)
		}
		if s.Graph.Location(TeamSlot(c, SlotRook1)) != (Square{File: 7, Rank: c.HomeRank()}) {
			cr &^= KingSide(c)
		}
	}
	return cr
}

// Replay plays a history from the starting position, validating each
// half-move, and rebuilds the final position through FromHistory.
func Replay(hist History) (*State, error) {
	s := NewGame()
	for i, hm := range hist.HalfMoves() {
		if slot := s.Graph.SlotAt(hm.From); slot != hm.Slot {
			return nil, fmt.Errorf("half-move %d (%s): slot %d on origin, record says %d: %w",
				i+1, hm, slot, hm.Slot, ErrInvalidHistory)
		}
		m, ok := s.ValidateMove(hm.Move())
		if !ok {
			return nil, fmt.Errorf("half-move %d (%s): %w", i+1, hm, ErrIllegalMove)
		}
		s.Apply(m)
	}
	rebuilt, err := FromHistory(s.Snapshot(), hist)
	if err != nil {
		return nil, err
	}
	if rebuilt.Hash != s.Hash {
		return nil, fmt.Errorf("rebuilt hash %016x differs from replayed %016x: %w",
			rebuilt.Hash, s.Hash, ErrInvalidHistory)
	}
	return rebuilt, nil
}

// Record returns the history entry for a validated move about to be applied.
func (s *State) Record(m Move) HalfMove {
	return HalfMove{
		From:      m.From,
		To:        m.To,
		Flags:     m.Flags,
		Promotion: m.Promotion,
		Slot:      s.Graph.SlotAt(m.From),
	}
}
