package board

import (
	"fmt"
	"strings"
)

const sanPieces = " PNBRQK"

// SAN returns a validated move in Standard Algebraic Notation.
func (s *State) SAN(m Move) string {
	if m.IsNone() {
		return "-"
	}
	p := s.PieceAt(m.From)
	if p.IsEmpty() {
		return m.String()
	}

	var sb strings.Builder

	switch {
	case m.Flags.Any(MoveCastleKingSide):
		sb.WriteString("O-O")
	case m.Flags.Any(MoveCastleQueenSide):
		sb.WriteString("O-O-O")
	default:
		pt := p.Type()
		if pt != Pawn {
			sb.WriteByte(sanPieces[pt])
			sb.WriteString(s.disambiguation(m, pt))
		}
		if m.Flags.Any(MoveCapture) {
			if pt == Pawn {
				sb.WriteByte('a' + byte(m.From.File))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.Flags.Any(MovePromotion) {
			sb.WriteByte('=')
			sb.WriteByte(sanPieces[m.Promotion])
		}
	}

	child := *s
	child.Apply(m)
	if checkers := child.Checkers(child.SideToMove); len(checkers) > 0 {
		if child.IsCheckmate(checkers) {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when
// another piece of the same kind can reach the destination.
func (s *State) disambiguation(m Move, pt PieceType) string {
	var others []Square
	for _, lm := range s.LegalMoves() {
		if lm.To != m.To || lm.From == m.From {
			continue
		}
		if s.PieceAt(lm.From).Type() == pt && !containsSquare(others, lm.From) {
			others = append(others, lm.From)
		}
	}
	if len(others) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range others {
		sameFile = sameFile || sq.File == m.From.File
		sameRank = sameRank || sq.Rank == m.From.Rank
	}
	switch {
	case !sameFile:
		return string(rune('a' + m.From.File))
	case !sameRank:
		return string(rune('1' + m.From.Rank))
	}
	return m.From.String()
}

func containsSquare(list []Square, sq Square) bool {
	for _, x := range list {
		if x == sq {
			return true
		}
	}
	return false
}

// ParseSAN finds the legal move written in Standard Algebraic Notation.
func (s *State) ParseSAN(san string) (Move, error) {
	text := strings.TrimSpace(san)
	text = strings.TrimRight(text, "+#!?")

	switch text {
	case "O-O", "0-0", "O-O-O", "0-0-0":
		want := MoveCastleKingSide
		if len(text) == 5 {
			want = MoveCastleQueenSide
		}
		for _, m := range s.LegalMoves() {
			if m.Flags.Any(want) {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("%s: %w", san, ErrIllegalMove)
	}

	promo := NoPieceType
	if idx := strings.IndexByte(text, '='); idx >= 0 {
		if idx+1 >= len(text) {
			return NoMove, fmt.Errorf("%s: missing promotion piece: %w", san, ErrIllegalMove)
		}
		promo = PieceType(strings.IndexByte(sanPieces, text[idx+1]))
		if promo <= Pawn || promo >= King {
			return NoMove, fmt.Errorf("%s: bad promotion piece: %w", san, ErrIllegalMove)
		}
		text = text[:idx]
	}

	capture := strings.Contains(text, "x")
	text = strings.ReplaceAll(text, "x", "")

	pt := Pawn
	if len(text) > 0 && text[0] >= 'A' && text[0] <= 'Z' {
		i := strings.IndexByte(sanPieces, text[0])
		if i <= int(Pawn) {
			return NoMove, fmt.Errorf("%s: unknown piece: %w", san, ErrIllegalMove)
		}
		pt = PieceType(i)
		text = text[1:]
	}

	if len(text) < 2 {
		return NoMove, fmt.Errorf("%s: no destination: %w", san, ErrIllegalMove)
	}
	dest, err := ParseSquare(text[len(text)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("%s: %v: %w", san, err, ErrIllegalMove)
	}

	file, rank := NoFile, NoFile
	for _, c := range text[:len(text)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		}
	}

	for _, m := range s.LegalMoves() {
		switch {
		case m.To != dest,
			s.PieceAt(m.From).Type() != pt,
			file != NoFile && m.From.File != file,
			rank != NoFile && m.From.Rank != rank,
			capture && !m.Flags.Any(MoveCapture):
			continue
		}
		if m.Flags.Any(MovePromotion) {
			// A bare pawn push to the last rank promotes to a queen.
			want := promo
			if want == NoPieceType {
				want = Queen
			}
			if m.Promotion != want {
				continue
			}
		} else if promo != NoPieceType {
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("%s: %w", san, ErrIllegalMove)
}

// SAN replays the history from the starting position and returns every
// half-move in Standard Algebraic Notation.
func (h History) SAN() ([]string, error) {
	s := NewGame()
	moves := h.HalfMoves()
	out := make([]string, 0, len(moves))
	for i, hm := range moves {
		m, ok := s.ValidateMove(hm.Move())
		if !ok {
			return nil, fmt.Errorf("half-move %d (%s): %w", i+1, hm, ErrIllegalMove)
		}
		out = append(out, s.SAN(m))
		s.Apply(m)
	}
	return out, nil
}

// MoveText formats SAN half-moves with move numbers: "1. e4 e5 2. Nf3".
func MoveText(san []string) string {
	var sb strings.Builder
	for i, m := range san {
		if i%2 == 0 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(m)
	}
	return sb.String()
}
