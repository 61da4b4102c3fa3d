package board

// Direction describes the geometric relation between two squares as a set
// of flags: one vertical bit, one horizontal bit, and a diagonal or knight
// marker. DirInvalid is returned for squares that share no line.
type Direction uint8

const (
	DirDown     Direction = 0x01 // toward rank 1
	DirUp       Direction = 0x02 // toward rank 8
	DirRight    Direction = 0x04 // toward the h-file
	DirLeft     Direction = 0x08 // toward the a-file
	DirDiagonal Direction = 0x10
	DirKnight   Direction = 0x20
	DirInvalid  Direction = 0x80

	dirVertical   = DirUp | DirDown
	dirHorizontal = DirLeft | DirRight
)

// The eight line directions, used by sliders and the king.
var (
	straightDirs = [4]Direction{DirUp, DirDown, DirLeft, DirRight}
	diagonalDirs = [4]Direction{
		DirDiagonal | DirUp | DirRight,
		DirDiagonal | DirUp | DirLeft,
		DirDiagonal | DirDown | DirRight,
		DirDiagonal | DirDown | DirLeft,
	}
	allDirs = [8]Direction{
		DirUp, DirDown, DirLeft, DirRight,
		DirDiagonal | DirUp | DirRight,
		DirDiagonal | DirUp | DirLeft,
		DirDiagonal | DirDown | DirRight,
		DirDiagonal | DirDown | DirLeft,
	}
	knightOffsets = [8][2]int{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
)

// DirectionOf classifies the move from one square to another. The result is
// a straight direction, a diagonal, a knight jump, or DirInvalid when the
// squares are equal or not on a common line.
func DirectionOf(from, to Square) Direction {
	df, dr := to.File-from.File, to.Rank-from.Rank
	if df == 0 && dr == 0 {
		return DirInvalid
	}

	var d Direction
	switch {
	case dr > 0:
		d |= DirUp
	case dr < 0:
		d |= DirDown
	}
	switch {
	case df > 0:
		d |= DirRight
	case df < 0:
		d |= DirLeft
	}

	adf, adr := abs(df), abs(dr)
	switch {
	case adf == 0 || adr == 0:
		return d
	case adf == adr:
		return d | DirDiagonal
	case (adf == 1 && adr == 2) || (adf == 2 && adr == 1):
		return d | DirKnight
	}
	return DirInvalid
}

// Valid reports whether d describes a real relation.
func (d Direction) Valid() bool {
	return d&DirInvalid == 0 && d != 0
}

// IsStraight reports a rank or file line.
func (d Direction) IsStraight() bool {
	return d.Valid() && d&(DirDiagonal|DirKnight) == 0
}

// IsDiagonal reports a 45 degree line.
func (d Direction) IsDiagonal() bool {
	return d.Valid() && d&DirDiagonal != 0
}

// IsKnight reports an L-shaped jump.
func (d Direction) IsKnight() bool {
	return d.Valid() && d&DirKnight != 0
}

// IsLine reports a straight or diagonal line, the ones sliders travel.
func (d Direction) IsLine() bool {
	return d.IsStraight() || d.IsDiagonal()
}

// Step returns the unit file and rank delta of a line direction.
func (d Direction) Step() (df, dr int) {
	if d&DirUp != 0 {
		dr = 1
	} else if d&DirDown != 0 {
		dr = -1
	}
	if d&DirRight != 0 {
		df = 1
	} else if d&DirLeft != 0 {
		df = -1
	}
	return df, dr
}

// Reverse returns the opposite line direction.
func (d Direction) Reverse() Direction {
	r := d &^ (dirVertical | dirHorizontal)
	if d&dirVertical != 0 {
		r |= d&dirVertical ^ dirVertical
	}
	if d&dirHorizontal != 0 {
		r |= d&dirHorizontal ^ dirHorizontal
	}
	return r
}

// MovesAlong reports whether a piece of the given kind can travel along d
// (ignoring distance, pawns and kings).
func (d Direction) MovesAlong(pt PieceType) bool {
	switch pt {
	case Rook:
		return d.IsStraight()
	case Bishop:
		return d.IsDiagonal()
	case Queen:
		return d.IsLine()
	}
	return false
}

// Grid is the 8x8 placement, indexed [rank][file].
type Grid [8][8]Piece

// At returns the piece on a valid square.
func (g *Grid) At(sq Square) Piece {
	return g[sq.Rank][sq.File]
}

// Set places a piece on a valid square.
func (g *Grid) Set(sq Square, p Piece) {
	g[sq.Rank][sq.File] = p
}

// Occupied reports whether a valid square holds a piece.
func (g *Grid) Occupied(sq Square) bool {
	return !g[sq.Rank][sq.File].IsEmpty()
}

// NextObstruction walks from one square along a line direction until it
// reaches an occupied square or the board edge. It returns the occupied
// square and true, or the last on-board square and false at the wall.
func (g *Grid) NextObstruction(from Square, d Direction) (Square, bool) {
	df, dr := d.Step()
	if df == 0 && dr == 0 {
		return from, false
	}
	cur := from
	for {
		next := cur.Add(df, dr)
		if !next.Valid() {
			return cur, false
		}
		if g.Occupied(next) {
			return next, true
		}
		cur = next
	}
}

// PathClear reports whether every square strictly between from and to is
// empty. Knight jumps have no path and are always clear; squares without a
// common line never are.
func (g *Grid) PathClear(from, to Square) bool {
	d := DirectionOf(from, to)
	if d.IsKnight() {
		return true
	}
	if !d.IsLine() {
		return false
	}
	df, dr := d.Step()
	for cur := from.Add(df, dr); cur != to; cur = cur.Add(df, dr) {
		if g.Occupied(cur) {
			return false
		}
	}
	return true
}

// Between reports whether sq lies strictly between a and b on their line.
func Between(a, b, sq Square) bool {
	d := DirectionOf(a, b)
	if !d.IsLine() {
		return false
	}
	df, dr := d.Step()
	for cur := a.Add(df, dr); cur != b; cur = cur.Add(df, dr) {
		if cur == sq {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
