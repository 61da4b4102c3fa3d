package board

// Apply plays a move in place. The move is expected to have been accepted
// by Validate; en passant, castling and promotion are recognised from the
// piece and squares, so the flags only need to be consistent with them.
// A pawn reaching the far rank without a promotion kind becomes a queen.
//
// The hash is updated incrementally and the adjacency graph is rebuilt.
func (s *State) Apply(m Move) {
	from, to := m.From, m.To
	if !from.Valid() || !to.Valid() || from == to {
		fatal("Apply", NoSlot, from, to, "bad squares")
	}
	p := s.Grid.At(from)
	slot := s.Graph.SlotAt(from)
	if p.IsEmpty() || slot == NoSlot {
		fatal("Apply", slot, from, to, "no piece on origin")
	}
	us := p.Color()
	if us != s.SideToMove {
		fatal("Apply", slot, from, to, "%s piece moved on %s's turn", us, s.SideToMove)
	}

	h := s.Hash
	oldRights := s.Castling
	oldEP := s.EPFile
	resetClock := p.Type() == Pawn

	// Capture. The en passant victim stands beside the mover, not on the
	// destination.
	capSq := to
	if p.Type() == Pawn && from.File != to.File && !s.Grid.Occupied(to) {
		capSq = Square{File: to.File, Rank: from.Rank}
	}
	if victim := s.Grid.At(capSq); !victim.IsEmpty() {
		vslot := s.Graph.SlotAt(capSq)
		if victim.Color() == us || victim.Type() == King || vslot == NoSlot {
			fatal("Apply", vslot, from, capSq, "illegal capture of %s", victim)
		}
		h ^= ZobristPiece(victim, capSq)
		s.Grid.Set(capSq, Empty)
		s.Graph.remove(vslot, capSq)
		s.Castling &^= cornerRight(victim.Color(), capSq)
		resetClock = true
	}

	// Move the piece, promoting if needed.
	placed := p
	if p.Type() == Pawn && to.Rank == us.Other().HomeRank() {
		kind := m.Promotion
		if kind.PromotionRank() == 0 {
			kind = Queen
		}
		placed = NewPiece(us, kind)
	}
	h ^= ZobristPiece(p, from) ^ ZobristPiece(placed, to)
	s.Grid.Set(from, Empty)
	s.Grid.Set(to, placed)
	s.Graph.move(slot, from, to)

	// Castling moves the rook too.
	if p.Type() == King && abs(to.File-from.File) == 2 {
		side := MoveCastleQueenSide
		if to.File > from.File {
			side = MoveCastleKingSide
		}
		rookFrom, rookTo := castleRookSquares(us, side)
		rook := s.Grid.At(rookFrom)
		rslot := s.Graph.SlotAt(rookFrom)
		if rook != NewPiece(us, Rook) || rslot == NoSlot {
			fatal("Apply", rslot, rookFrom, rookTo, "castle without rook")
		}
		h ^= ZobristPiece(rook, rookFrom) ^ ZobristPiece(rook, rookTo)
		s.Grid.Set(rookFrom, Empty)
		s.Grid.Set(rookTo, rook)
		s.Graph.move(rslot, rookFrom, rookTo)
	}

	if p.Type() == King {
		s.Castling &^= KingSide(us) | QueenSide(us)
	}
	s.Castling &^= cornerRight(us, from)
	if s.Castling != oldRights {
		h ^= ZobristCastling(oldRights) ^ ZobristCastling(s.Castling)
	}

	// The ep file is only recorded when a capture is actually possible, so
	// positions that differ only by an unusable ep square hash alike.
	s.EPFile = NoFile
	if p.Type() == Pawn && abs(to.Rank-from.Rank) == 2 && s.enPassantPossible(to, us.Other()) {
		s.EPFile = to.File
	}
	if oldEP != NoFile {
		h ^= ZobristEnPassant(oldEP)
	}
	if s.EPFile != NoFile {
		h ^= ZobristEnPassant(s.EPFile)
	}

	if resetClock {
		s.HalfMoveClock = 0
	} else {
		s.HalfMoveClock++
	}
	if us == Black {
		s.FullMoveNumber++
	}
	s.SideToMove = us.Other()
	h ^= zobristSideToMove

	s.Hash = h
	s.recomputeGraph()
}

// enPassantPossible reports whether a pawn of color capturer stands beside
// the pawn that just advanced two squares onto sq.
func (s *State) enPassantPossible(sq Square, capturer Color) bool {
	want := NewPiece(capturer, Pawn)
	for _, df := range [2]int{-1, 1} {
		if n := sq.Add(df, 0); n.Valid() && s.Grid.At(n) == want {
			return true
		}
	}
	return false
}

// cornerRight returns the castling right tied to a rook's home corner, or
// NoCastling for any other square.
func cornerRight(c Color, sq Square) CastlingRights {
	if sq.Rank != c.HomeRank() {
		return NoCastling
	}
	switch sq.File {
	case 0:
		return QueenSide(c)
	case 7:
		return KingSide(c)
	}
	return NoCastling
}
