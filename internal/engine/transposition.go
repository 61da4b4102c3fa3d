package engine

import (
	"github.com/bsumner2/gbachess/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// ClusterSize is the number of entries sharing one bucket.
const ClusterSize = 2

// DefaultBuckets is the bucket count of a default table.
const DefaultBuckets = 1 << 12

// TTL is how many generations an entry may lag behind a probe before the
// probe evicts it.
const TTL = 2

// TTEntry represents an entry in the transposition table. A zero Key marks
// a free slot.
type TTEntry struct {
	Key   uint64     // Full 64-bit Zobrist hash
	Move  board.Move // Best move found, NoMove at a terminal node
	Score int16      // Score from the side to move, bounded by Flag
	Depth uint8      // Remaining depth the score was searched to
	Gen   uint8      // Decision generation that wrote the entry
	Flag  TTFlag
}

type ttBucket [ClusterSize]TTEntry

// TranspositionTable is a fixed-size clustered hash table of search
// results. It is not safe for concurrent use; one search owns it at a time.
type TranspositionTable struct {
	buckets []ttBucket
	mask    uint64
	gen     uint8

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a table with the given number of buckets,
// rounded down to a power of two.
func NewTranspositionTable(buckets int) *TranspositionTable {
	if buckets < 1 {
		buckets = 1
	}
	n := roundDownToPowerOf2(uint64(buckets))
	return &TranspositionTable{
		buckets: make([]ttBucket, n),
		mask:    n - 1,
	}
}

// BucketsForMB returns the bucket count that fits a table in sizeMB.
func BucketsForMB(sizeMB int) int {
	const bucketSize = 2 * 24
	return max(1, sizeMB*1024*1024/bucketSize)
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe scans the key's bucket for an entry of generation gen searched to
// at least minDepth. Entries of other generations never match; those more
// than TTL generations old are cleared on the way.
func (tt *TranspositionTable) Probe(key uint64, minDepth int, gen uint8) (TTEntry, bool) {
	tt.probes++
	b := &tt.buckets[key&tt.mask]
	for i := range b {
		e := &b[i]
		if e.Key == 0 || e.Key != key {
			continue
		}
		if e.Gen != gen {
			if gen-e.Gen > TTL {
				*e = TTEntry{}
			}
			continue
		}
		if int(e.Depth) < minDepth {
			continue
		}
		tt.hits++
		return *e, true
	}
	return TTEntry{}, false
}

// Insert stores an entry in its bucket. An entry for the same key is
// overwritten; otherwise a free slot is taken first, then a slot from
// another generation, then the shallowest slot.
func (tt *TranspositionTable) Insert(e TTEntry) {
	b := &tt.buckets[e.Key&tt.mask]
	target := 0
	for i := range b {
		if b[i].Key == e.Key {
			target = i
			break
		}
	}
	if b[target].Key == e.Key {
		b[target] = e
		return
	}
	for i := range b {
		if b[i].Key == 0 || b[i].Gen != e.Gen {
			target = i
			break
		}
		if b[i].Depth < b[target].Depth {
			target = i
		}
	}
	b[target] = e
}

// NewSearch advances the generation and returns it.
func (tt *TranspositionTable) NewSearch() uint8 {
	tt.gen++
	return tt.gen
}

// Generation returns the current generation.
func (tt *TranspositionTable) Generation() uint8 {
	return tt.gen
}

// Clear empties the table and resets the statistics.
func (tt *TranspositionTable) Clear() {
	clear(tt.buckets)
	tt.gen = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille of sampled slots holding entries of the
// current generation.
func (tt *TranspositionTable) HashFull() int {
	sample := min(len(tt.buckets), 500)
	used := 0
	for _, b := range tt.buckets[:sample] {
		for _, e := range b {
			if e.Key != 0 && e.Gen == tt.gen {
				used++
			}
		}
	}
	return used * 1000 / (sample * ClusterSize)
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of buckets.
func (tt *TranspositionTable) Size() int {
	return len(tt.buckets)
}

// AdjustScoreFromTT converts a stored mate score back to the distance from
// the root at ply.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT makes a mate score relative to the node at ply before it
// is stored.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
