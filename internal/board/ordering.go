package board

import "slices"

// orderCandidates sorts a piece's candidates for alpha-beta:
//   - occupied destinations first, by 2*attacking - defending of the
//     victim's vertex, highest first;
//   - knights to empty squares by the mobility of the destination;
//   - other empty destinations by promotion value, then special moves
//     (castle, two-square), then distance from the origin, farthest first.
//
// The sort is stable, so ties keep iterator order.
func (s *State) orderCandidates(from Square, cands []Candidate) {
	kind := s.Grid.At(from).Type()

	slices.SortStableFunc(cands, func(a, b Candidate) int {
		aOcc, bOcc := s.Grid.Occupied(a.Dst), s.Grid.Occupied(b.Dst)
		switch {
		case aOcc && !bOcc:
			return -1
		case !aOcc && bOcc:
			return 1
		case aOcc:
			return s.captureScore(b.Dst) - s.captureScore(a.Dst)
		}

		if kind == Knight {
			return s.knightMobility(b.Dst) - s.knightMobility(a.Dst)
		}
		if d := b.Promotion.PromotionRank() - a.Promotion.PromotionRank(); d != 0 {
			return d
		}
		aSpecial, bSpecial := a.Flags.Any(moveSpecial), b.Flags.Any(moveSpecial)
		switch {
		case aSpecial && !bSpecial:
			return -1
		case !aSpecial && bSpecial:
			return 1
		}
		return from.DistSq(b.Dst) - from.DistSq(a.Dst)
	})
}

// captureScore ranks a capture by how active the victim is.
func (s *State) captureScore(sq Square) int {
	slot := s.Graph.SlotAt(sq)
	if slot == NoSlot {
		return 0
	}
	v := &s.Graph.Vertices[slot]
	return 2*int(v.Attacking) - int(v.Defending)
}

// knightMobility counts the empty squares a knight on sq could jump to.
func (s *State) knightMobility(sq Square) int {
	n := 0
	for _, off := range knightOffsets {
		if dst := sq.Add(off[0], off[1]); dst.Valid() && !s.Grid.Occupied(dst) {
			n++
		}
	}
	return n
}
