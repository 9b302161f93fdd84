package engine

import (
	"unsafe"

	"vast-chess/vastmg"
)

// Bound tells how a stored score relates to the true value.
type Bound uint8

const (
	BoundNone Bound = iota
	// BoundUpper: the search failed low, score is an upper bound.
	BoundUpper
	// BoundLower: the search failed high, score is a lower bound.
	BoundLower
	BoundExact
)

type TTEntry struct {
	Key   uint64
	Move  vastmg.Move
	Depth int8
	Bound Bound
	Score int32
}

// ScoreAt converts the stored score back to the root-relative form used at
// the probing node's ply.
func (e TTEntry) ScoreAt(ply int) int32 { return scoreFromTT(e.Score, ply) }

// TransTable is a direct-mapped hash table with a power-of-two capacity,
// indexed by hash & (capacity-1) and verified against the full 64-bit key.
type TransTable struct {
	entries []TTEntry
	mask    uint64
}

// NewTransTable allocates a table of at most megabytes MiB.
func NewTransTable(megabytes int) *TransTable {
	tt := &TransTable{}
	tt.Resize(megabytes)
	return tt
}

// Resize reallocates the table, dropping every entry.
func (tt *TransTable) Resize(megabytes int) {
	if megabytes < 1 {
		megabytes = 1
	}
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	want := uint64(megabytes) * 1024 * 1024 / entrySize
	capacity := uint64(1)
	for capacity*2 <= want {
		capacity *= 2
	}
	tt.entries = make([]TTEntry, capacity)
	tt.mask = capacity - 1
}

// Clear zeroes every entry without reallocating.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
}

// Len returns the capacity in entries.
func (tt *TransTable) Len() int { return len(tt.entries) }

// Probe returns the entry stored for hash, if any.
func (tt *TransTable) Probe(hash uint64) (TTEntry, bool) {
	e := tt.entries[hash&tt.mask]
	if e.Bound == BoundNone || e.Key != hash {
		return TTEntry{}, false
	}
	return e, true
}

// Store records a search result. Mate scores arrive relative to the root and
// are stored relative to this node so they stay valid at any ply. A slot
// holding a different key is always replaced; the same key is replaced only
// by an equal or deeper result.
func (tt *TransTable) Store(hash uint64, move vastmg.Move, depth int, score int32, bound Bound, ply int) {
	e := &tt.entries[hash&tt.mask]
	if e.Key == hash && e.Bound != BoundNone {
		if depth < int(e.Depth) {
			return
		}
		if move == vastmg.NoMove {
			move = e.Move
		}
	}
	*e = TTEntry{
		Key:   hash,
		Move:  move,
		Depth: int8(Clamp(depth, -1, 127)),
		Bound: bound,
		Score: scoreToTT(score, ply),
	}
}

// Hashfull returns the permille of used slots among the first thousand.
func (tt *TransTable) Hashfull() int {
	n := Min(1000, len(tt.entries))
	used := 0
	for i := 0; i < n; i++ {
		if tt.entries[i].Bound != BoundNone {
			used++
		}
	}
	return used * 1000 / n
}

func scoreToTT(score int32, ply int) int32 {
	if score > MateBound {
		return score + int32(ply)
	}
	if score < -MateBound {
		return score - int32(ply)
	}
	return score
}

func scoreFromTT(score int32, ply int) int32 {
	if score > MateBound {
		return score - int32(ply)
	}
	if score < -MateBound {
		return score + int32(ply)
	}
	return score
}
