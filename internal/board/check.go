package board

// attacks reports whether piece p standing on from threatens target on
// grid g, using capture geometry only.
func attacks(g *Grid, from Square, p Piece, target Square) bool {
	if from == target {
		return false
	}
	df, dr := target.File-from.File, target.Rank-from.Rank
	switch p.Type() {
	case Pawn:
		return dr == p.Color().Forward() && abs(df) == 1
	case Knight:
		return DirectionOf(from, target).IsKnight()
	case King:
		return abs(df) <= 1 && abs(dr) <= 1
	case Bishop, Rook, Queen:
		return DirectionOf(from, target).MovesAlong(p.Type()) && g.PathClear(from, target)
	}
	return false
}

// InCheck reports whether the king of color c is attacked, according to the
// adjacency graph.
func (s *State) InCheck(c Color) bool {
	return s.checkerMask(c) != 0
}

// checkerMask returns the enemy slots with an edge to c's king.
func (s *State) checkerMask(c Color) Roster {
	king := KingSlot(c)
	if !s.Graph.Alive(king) {
		fatal("checkerMask", king, NoSquare, NoSquare, "%s king missing", c)
	}
	return s.Graph.AttackersOf(king, c.Other())
}

// Checkers returns the pieces giving check to c's king, in slot order. The
// result is nil when c is not in check.
func (s *State) Checkers(c Color) []Slot {
	mask := s.checkerMask(c)
	if mask == 0 {
		return nil
	}
	var out []Slot
	for slot := Slot(0); slot < SlotCount; slot++ {
		if mask.Alive(slot) {
			out = append(out, slot)
		}
	}
	return out
}

// kingEscapes reports whether moving the king from one square to another
// gets it out of reach of a single attacking slot. The king's origin is
// vacated first so sliders see through it; capturing the attacker escapes.
func (s *State) kingEscapes(from, to Square, attacker Slot) bool {
	loc := s.Graph.Location(attacker)
	if !loc.Valid() || loc == to {
		return true
	}
	g := s.Grid
	king := g.At(from)
	g.Set(from, Empty)
	g.Set(to, king)
	return !attacks(&g, loc, g.At(loc), to)
}

// kingMoveSafe checks the king's destination against every live opposing
// piece, one attacker at a time.
func (s *State) kingMoveSafe(from, to Square) bool {
	them := s.Grid.At(from).Color().Other()
	for slot := Slot(0); slot < SlotCount; slot++ {
		if slot.Color() != them || !s.Graph.Alive(slot) {
			continue
		}
		if !s.kingEscapes(from, to, slot) {
			return false
		}
	}
	return true
}

// squareAttacked reports whether any live piece of color by threatens sq on
// the current placement.
func (s *State) squareAttacked(sq Square, by Color) bool {
	for slot := Slot(0); slot < SlotCount; slot++ {
		if slot.Color() != by || !s.Graph.Alive(slot) {
			continue
		}
		loc := s.Graph.Location(slot)
		if attacks(&s.Grid, loc, s.Grid.At(loc), sq) {
			return true
		}
	}
	return false
}

// pinLine returns the square of the enemy slider pinning the piece on from
// to its king, and true, or false if the piece is free to leave its line.
func (s *State) pinLine(from, king Square) (Square, bool) {
	d := DirectionOf(king, from)
	if !d.IsLine() || !s.Grid.PathClear(king, from) {
		return NoSquare, false
	}
	obs, hit := s.Grid.NextObstruction(from, d)
	if !hit {
		return NoSquare, false
	}
	p := s.Grid.At(obs)
	if p.Color() == s.Grid.At(from).Color() || !d.MovesAlong(p.Type()) {
		return NoSquare, false
	}
	return obs, true
}

// epExposesKing plays an en passant capture on a scratch grid and reports
// whether it uncovers an attack on the mover's king. Two pawns leave the
// same rank at once, which the ordinary pin test does not see.
func (s *State) epExposesKing(from, to Square) bool {
	us := s.Grid.At(from).Color()
	king := s.KingSquare(us)
	victim := Square{File: to.File, Rank: from.Rank}
	vslot := s.Graph.SlotAt(victim)

	g := s.Grid
	g.Set(to, g.At(from))
	g.Set(from, Empty)
	g.Set(victim, Empty)

	for slot := Slot(0); slot < SlotCount; slot++ {
		if slot.Color() == us || slot == vslot || !s.Graph.Alive(slot) {
			continue
		}
		loc := s.Graph.Location(slot)
		if attacks(&g, loc, g.At(loc), king) {
			return true
		}
	}
	return false
}

// LegalMoves returns every move the validator accepts for the side to move,
// in slot order.
func (s *State) LegalMoves() []Move {
	var out []Move
	s.eachLegal(func(m Move) bool {
		out = append(out, m)
		return true
	})
	return out
}

// HasLegalMove reports whether the side to move can move at all.
func (s *State) HasLegalMove() bool {
	found := false
	s.eachLegal(func(Move) bool {
		found = true
		return false
	})
	return found
}

// eachLegal calls fn for every legal move until fn returns false.
func (s *State) eachLegal(fn func(Move) bool) {
	var buf [MaxCandidates]Candidate
	us := s.SideToMove
	for slot := Slot(0); slot < SlotCount; slot++ {
		if slot.Color() != us || !s.Graph.Alive(slot) {
			continue
		}
		from := s.Graph.Location(slot)
		n := s.collect(from, AllMinusAllied, &buf)
		for _, c := range buf[:n] {
			flags := s.Validate(from, c.Dst)
			if flags == 0 {
				continue
			}
			if !fn(Move{From: from, To: c.Dst, Flags: flags, Promotion: c.Promotion}) {
				return
			}
		}
	}
}

// IsCheckmate reports whether the side to move, attacked by checkers, has
// no legal move.
func (s *State) IsCheckmate(checkers []Slot) bool {
	return len(checkers) > 0 && !s.HasLegalMove()
}

// IsStalemate reports whether the side to move is not in check and has no
// legal move.
func (s *State) IsStalemate() bool {
	return !s.InCheck(s.SideToMove) && !s.HasLegalMove()
}

// EscapeCount returns how many legal moves the side to move has while in
// check, zero when not in check.
func (s *State) EscapeCount() int {
	if !s.InCheck(s.SideToMove) {
		return 0
	}
	return len(s.LegalMoves())
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func (s *State) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := s.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := *s
		child.Apply(m)
		nodes += child.Perft(depth - 1)
	}
	return nodes
}
