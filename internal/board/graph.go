package board

// Vertex is the adjacency record of one roster slot.
type Vertex struct {
	Location  Compact
	Edges     Roster // slots whose square this piece threatens
	Attacking uint8  // opposing pieces threatened
	Defending uint8  // allied pieces protected
}

// Graph tracks, for every live piece, which other pieces it threatens.
// Vertices of captured pieces are not cleared; their roster bit is, and the
// record is ignored until the slot would be reused (it never is).
type Graph struct {
	Vertices [SlotCount]Vertex
	Roster   Roster

	// occupant[sq] is slot+1 of the piece on sq, 0 when empty.
	occupant [64]uint8
}

// SlotAt returns the roster slot on a square, or NoSlot.
func (g *Graph) SlotAt(sq Square) Slot {
	if !sq.Valid() {
		return NoSlot
	}
	o := g.occupant[sq.Index()]
	if o == 0 {
		return NoSlot
	}
	return Slot(o - 1)
}

// Location returns the square of a slot, NoSquare when captured.
func (g *Graph) Location(s Slot) Square {
	if !g.Roster.Alive(s) {
		return NoSquare
	}
	return g.Vertices[s].Location.Square()
}

// Alive reports whether a slot is still on the board.
func (g *Graph) Alive(s Slot) bool {
	return g.Roster.Alive(s)
}

// Attacks reports whether the piece in slot a threatens the piece in slot b.
func (g *Graph) Attacks(a, b Slot) bool {
	return g.Roster.Alive(a) && g.Vertices[a].Edges.Alive(b)
}

// AttackersOf returns the live slots of color c with an edge to target.
func (g *Graph) AttackersOf(target Slot, c Color) Roster {
	var r Roster
	for s := Slot(0); s < SlotCount; s++ {
		if s.Color() == c && g.Attacks(s, target) {
			r = r.Set(s)
		}
	}
	return r
}

func (g *Graph) place(s Slot, sq Square) {
	g.Roster = g.Roster.Set(s)
	g.Vertices[s] = Vertex{Location: sq.Compact()}
	g.occupant[sq.Index()] = uint8(s) + 1
}

func (g *Graph) move(s Slot, from, to Square) {
	g.occupant[from.Index()] = 0
	g.occupant[to.Index()] = uint8(s) + 1
	g.Vertices[s].Location = to.Compact()
}

func (g *Graph) remove(s Slot, sq Square) {
	g.occupant[sq.Index()] = 0
	g.Roster = g.Roster.Kill(s)
}

// recomputeGraph rebuilds every live vertex's edges from the current
// placement. A move can open or close lines far from its squares, so the
// whole graph is rebuilt after each Apply.
func (s *State) recomputeGraph() {
	var buf [MaxCandidates]Candidate
	g := &s.Graph
	for slot := Slot(0); slot < SlotCount; slot++ {
		if !g.Roster.Alive(slot) {
			continue
		}
		v := &g.Vertices[slot]
		loc := v.Location.Square()
		if !loc.Valid() {
			fatal("recomputeGraph", slot, NoSquare, NoSquare, "live slot has no location")
		}
		if p := s.Grid.At(loc); p.IsEmpty() || p.Color() != slot.Color() {
			fatal("recomputeGraph", slot, loc, NoSquare, "live slot has no matching piece (found %s)", p)
		}

		v.Edges, v.Attacking, v.Defending = 0, 0, 0
		n := s.collect(loc, CollisionsOnly, &buf)
		for _, c := range buf[:n] {
			target := g.SlotAt(c.Dst)
			if target == NoSlot {
				fatal("recomputeGraph", slot, loc, c.Dst, "occupied square without a roster slot")
			}
			v.Edges = v.Edges.Set(target)
			if target.Color() == slot.Color() {
				v.Defending++
			} else {
				v.Attacking++
			}
		}
	}
}
