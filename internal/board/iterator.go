package board

// promotionOrder is the order promotion choices are emitted in.
var promotionOrder = [4]PieceType{Queen, Rook, Bishop, Knight}

// pieceIterator enumerates the geometrically reachable destinations of one
// piece without looking at the board. Sliders walk one square at a time and
// can be told to abandon the current direction; the other kinds emit a
// short list fixed at construction.
type pieceIterator struct {
	kind  PieceType
	color Color
	from  Square

	// sliders
	dirs []Direction
	dir  int
	cur  Square

	// knights, pawns and kings
	fixed  [8]Candidate
	nfixed int
	idx    int
	promo  int

	// king castle destinations not yet offered
	castles CastlingRights
}

// newPieceIterator builds the iterator for a piece on a square. rights are
// the castling rights of the position; only the mover's are used. It fails
// for an off-board square or an empty piece.
func newPieceIterator(p Piece, from Square, rights CastlingRights) (pieceIterator, bool) {
	it := pieceIterator{kind: p.Type(), color: p.Color(), from: from, cur: from}
	if !from.Valid() || (it.color != White && it.color != Black) {
		return it, false
	}

	switch it.kind {
	case Bishop:
		it.dirs = diagonalDirs[:]
	case Rook:
		it.dirs = straightDirs[:]
	case Queen:
		it.dirs = allDirs[:]
	case Knight:
		for _, off := range knightOffsets {
			if dst := from.Add(off[0], off[1]); dst.Valid() {
				it.push(Candidate{Dst: dst})
			}
		}
	case King:
		for _, d := range allDirs {
			df, dr := d.Step()
			if dst := from.Add(df, dr); dst.Valid() {
				it.push(Candidate{Dst: dst})
			}
		}
		if from == (Square{File: 4, Rank: it.color.HomeRank()}) {
			it.castles = rights.Of(it.color)
		}
	case Pawn:
		fwd := it.color.Forward()
		if dst := from.Add(0, fwd); dst.Valid() {
			it.push(Candidate{Dst: dst})
			if from.Rank == it.color.HomeRank()+fwd {
				it.push(Candidate{Dst: from.Add(0, 2*fwd), Flags: MoveTwoSquare})
			}
		}
		for _, df := range [2]int{-1, 1} {
			if dst := from.Add(df, fwd); dst.Valid() {
				it.push(Candidate{Dst: dst})
			}
		}
	default:
		return it, false
	}
	return it, true
}

func (it *pieceIterator) push(c Candidate) {
	it.fixed[it.nfixed] = c
	it.nfixed++
}

// isSlider reports whether the iterator walks continuous lines.
func (it *pieceIterator) isSlider() bool {
	return it.dirs != nil
}

// skipDirection abandons the current slide; the next call to next starts
// the following direction from the origin square.
func (it *pieceIterator) skipDirection() {
	if it.isSlider() {
		it.dir++
		it.cur = it.from
	}
}

// next returns the following candidate destination.
func (it *pieceIterator) next() (Candidate, bool) {
	if it.isSlider() {
		for it.dir < len(it.dirs) {
			df, dr := it.dirs[it.dir].Step()
			dst := it.cur.Add(df, dr)
			if !dst.Valid() {
				it.dir++
				it.cur = it.from
				continue
			}
			it.cur = dst
			return Candidate{Dst: dst}, true
		}
		return Candidate{}, false
	}

	if it.idx < it.nfixed {
		c := it.fixed[it.idx]
		if it.kind == Pawn && c.Dst.Rank == it.color.Other().HomeRank() {
			c.Promotion = promotionOrder[it.promo]
			c.Flags |= MovePromotion
			it.promo++
			if it.promo == len(promotionOrder) {
				it.promo = 0
				it.idx++
			}
			return c, true
		}
		it.idx++
		return c, true
	}

	if it.kind == King {
		rank := it.color.HomeRank()
		if ks := KingSide(it.color); it.castles&ks != 0 {
			it.castles &^= ks
			return Candidate{Dst: Square{File: 6, Rank: rank}, Flags: MoveCastleKingSide}, true
		}
		if qs := QueenSide(it.color); it.castles&qs != 0 {
			it.castles &^= qs
			return Candidate{Dst: Square{File: 2, Rank: rank}, Flags: MoveCastleQueenSide}, true
		}
	}
	return Candidate{}, false
}
