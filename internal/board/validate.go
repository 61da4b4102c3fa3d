package board

// Validate decides whether the side to move may play from one square to
// another. It returns MoveSuccessful together with the capture, en passant,
// two-square, castle and promotion tags of the move, or zero when the move
// is rejected. The position is not modified.
//
// Checks run in order and stop at the first failure:
//  1. squares on the board, mover owned by the side to move, destination
//     empty or enemy-held;
//  2. the piece's movement shape and a clear path (castling also checks
//     rights, rook, path and attacked squares here);
//  3. when in check, the move must answer every checker;
//  4. a non-king piece must not leave a pin line;
//  5. a king must not step onto an attacked square.
func (s *State) Validate(from, to Square) MoveFlags {
	if !from.Valid() || !to.Valid() || from == to {
		return 0
	}
	p := s.Grid.At(from)
	if p.IsEmpty() || p.Color() != s.SideToMove {
		return 0
	}
	dst := s.Grid.At(to)
	if !dst.IsEmpty() && (dst.Color() == p.Color() || dst.Type() == King) {
		return 0
	}

	flags, ok := s.validateShape(from, to, p)
	if !ok {
		return 0
	}

	if p.Type() == King {
		if flags.Any(MoveCastle) {
			return flags | MoveSuccessful
		}
		checkers := s.checkerMask(p.Color())
		for slot := Slot(0); slot < SlotCount; slot++ {
			if checkers.Alive(slot) && !s.kingEscapes(from, to, slot) {
				return 0
			}
		}
		if !s.kingMoveSafe(from, to) {
			return 0
		}
		return flags | MoveSuccessful
	}

	king := s.KingSquare(p.Color())
	if !s.answersCheck(from, to, king, flags) {
		return 0
	}
	if pinner, pinned := s.pinLine(from, king); pinned {
		if to != pinner && !Between(king, pinner, to) {
			return 0
		}
	}
	if flags.Any(MoveEnPassant) && s.epExposesKing(from, to) {
		return 0
	}
	return flags | MoveSuccessful
}

// ValidateMove is Validate for a parsed move. It fills in the flags and a
// default queen promotion; the boolean is false when the move is rejected.
func (s *State) ValidateMove(m Move) (Move, bool) {
	flags := s.Validate(m.From, m.To)
	if flags == 0 {
		return NoMove, false
	}
	m.Flags = flags
	if flags.Any(MovePromotion) {
		if m.Promotion.PromotionRank() == 0 {
			m.Promotion = Queen
		}
	} else {
		m.Promotion = NoPieceType
	}
	return m, true
}

// answersCheck handles step 3 for a non-king mover: with one checker the
// move must capture it or block its line; with two only the king can move.
func (s *State) answersCheck(from, to, king Square, flags MoveFlags) bool {
	checkers := s.checkerMask(s.SideToMove)
	if checkers == 0 {
		return true
	}
	if checkers&(checkers-1) != 0 {
		return false
	}

	var checker Slot
	for slot := Slot(0); slot < SlotCount; slot++ {
		if checkers.Alive(slot) {
			checker = slot
			break
		}
	}
	loc := s.Graph.Location(checker)

	captured := to
	if flags.Any(MoveEnPassant) {
		captured = Square{File: to.File, Rank: from.Rank}
	}
	if captured == loc {
		return true
	}
	return s.Grid.At(loc).Type().IsSlider() && Between(loc, king, to)
}

// validateShape checks the movement pattern of the piece and path clearance,
// returning the move's tags.
func (s *State) validateShape(from, to Square, p Piece) (MoveFlags, bool) {
	var flags MoveFlags
	if s.Grid.Occupied(to) {
		flags |= MoveCapture
	}
	d := DirectionOf(from, to)

	switch p.Type() {
	case Pawn:
		return s.validatePawn(from, to, p.Color())

	case Knight:
		return flags, d.IsKnight()

	case Bishop, Rook, Queen:
		return flags, d.MovesAlong(p.Type()) && s.Grid.PathClear(from, to)

	case King:
		df, dr := abs(to.File-from.File), abs(to.Rank-from.Rank)
		if df <= 1 && dr <= 1 {
			return flags, true
		}
		if dr == 0 && df == 2 {
			return s.validateCastle(from, to, p.Color())
		}
	}
	return 0, false
}

func (s *State) validatePawn(from, to Square, c Color) (MoveFlags, bool) {
	var flags MoveFlags
	fwd := c.Forward()
	df, dr := to.File-from.File, to.Rank-from.Rank

	switch {
	case df == 0 && dr == fwd:
		if s.Grid.Occupied(to) {
			return 0, false
		}
	case df == 0 && dr == 2*fwd:
		if from.Rank != c.HomeRank()+fwd || s.Grid.Occupied(to) || s.Grid.Occupied(from.Add(0, fwd)) {
			return 0, false
		}
		flags |= MoveTwoSquare
	case abs(df) == 1 && dr == fwd:
		switch {
		case s.Grid.Occupied(to):
			flags |= MoveCapture
		case s.enPassantTarget(from, to, c):
			flags |= MoveCapture | MoveEnPassant
		default:
			return 0, false
		}
	default:
		return 0, false
	}

	if to.Rank == c.Other().HomeRank() {
		flags |= MovePromotion
	}
	return flags, true
}

// validateCastle checks every castle precondition: the right is held, king
// and rook are home with nothing between them, the king is not in check and
// no square it crosses or lands on is attacked.
func (s *State) validateCastle(from, to Square, c Color) (MoveFlags, bool) {
	if from != (Square{File: 4, Rank: c.HomeRank()}) {
		return 0, false
	}
	flags := MoveCastleQueenSide
	if to.File == 6 {
		flags = MoveCastleKingSide
	}
	if !s.castlePathOpen(c, flags) {
		return 0, false
	}
	if s.InCheck(c) {
		return 0, false
	}
	step := 1
	if flags == MoveCastleQueenSide {
		step = -1
	}
	for sq := from.Add(step, 0); ; sq = sq.Add(step, 0) {
		if s.squareAttacked(sq, c.Other()) {
			return 0, false
		}
		if sq == to {
			break
		}
	}
	return flags, true
}
