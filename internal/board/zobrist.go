package board

// Zobrist keys for position hashing, generated from a fixed seed so hashes
// are stable across runs.
var (
	zobristPiece      [12][64]uint64 // [piece identity][square]
	zobristEnPassant  [8]uint64      // one per file
	zobristCastling   [16]uint64     // every castling-rights combination
	zobristSideToMove uint64         // XOR when black to move
)

func init() {
	initZobrist()
}

type prng struct {
	state uint64
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := &prng{state: 0x98F107A2BEEF1234}

	for id := range zobristPiece {
		for sq := range zobristPiece[id] {
			zobristPiece[id][sq] = rng.next()
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	for cr := range zobristCastling {
		zobristCastling[cr] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// ZobristPiece returns the key for a piece on a square.
func ZobristPiece(p Piece, sq Square) uint64 {
	return zobristPiece[p.zobristIndex()][sq.Index()]
}

// ZobristEnPassant returns the key for an en passant file.
func ZobristEnPassant(file int) uint64 {
	return zobristEnPassant[file]
}

// ZobristCastling returns the key for a castling-rights combination.
func ZobristCastling(cr CastlingRights) uint64 {
	return zobristCastling[cr&AllCastling]
}

// ZobristSideToMove returns the key for black to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}

// ComputeHash computes the position hash from scratch. Apply maintains the
// same value incrementally.
func (s *State) ComputeHash() uint64 {
	var h uint64
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := Square{File: file, Rank: rank}
			if p := s.Grid.At(sq); !p.IsEmpty() {
				h ^= ZobristPiece(p, sq)
			}
		}
	}
	h ^= ZobristCastling(s.Castling)
	if s.EPFile != NoFile {
		h ^= ZobristEnPassant(s.EPFile)
	}
	if s.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
