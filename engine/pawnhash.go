package engine

import (
	"math/bits"

	"vast-chess/vastmg"
)

// =============================================================================
// PAWN HASH TABLE
// =============================================================================

const PawnHashSize = 1 << 16

// PawnHashEntry stores cached pawn structure analysis
type PawnHashEntry struct {
	// Key for verifying collisions (pawn bitboards)
	WhitePawns uint64
	BlackPawns uint64

	WPassedBB uint64
	BPassedBB uint64

	// Passed pawn score, White minus Black
	PassedMG int
	PassedEG int

	Valid bool
}

// PawnHash caches pawn structure terms; they depend on nothing but the pawn
// bitboards. Not safe for concurrent use.
type PawnHash struct {
	entries []PawnHashEntry
	mask    uint64

	Hits, Misses uint64
}

// NewPawnHash allocates size entries; size must be a power of two.
func NewPawnHash(size int) *PawnHash {
	return &PawnHash{entries: make([]PawnHashEntry, size), mask: uint64(size - 1)}
}

// Compute index into pawn hash table from pawn bitboards (mix bits for distribution)
func pawnHashIndex(whitePawns, blackPawns uint64) uint64 {
	const goldenRatio = 0x9E3779B97F4A7C15
	hash := whitePawns ^ (blackPawns * goldenRatio)
	hash ^= hash >> 33
	hash *= 0xFF51AFD7ED558CCD
	hash ^= hash >> 33
	return hash
}

// probe returns the entry for the pawn structure, computing and storing it on
// a miss. A nil table always computes.
func (ph *PawnHash) probe(whitePawns, blackPawns uint64) PawnHashEntry {
	if ph == nil {
		return computePawnEntry(whitePawns, blackPawns)
	}
	entry := &ph.entries[pawnHashIndex(whitePawns, blackPawns)&ph.mask]
	if entry.Valid && entry.WhitePawns == whitePawns && entry.BlackPawns == blackPawns {
		ph.Hits++
		return *entry
	}
	ph.Misses++
	*entry = computePawnEntry(whitePawns, blackPawns)
	return *entry
}

// Clear resets the pawn hash table
func (ph *PawnHash) Clear() {
	if ph == nil {
		return
	}
	for i := range ph.entries {
		ph.entries[i] = PawnHashEntry{}
	}
	ph.Hits, ph.Misses = 0, 0
}

// computePawnEntry calculates the pawn structure data from scratch (on a cache miss)
func computePawnEntry(whitePawns, blackPawns uint64) PawnHashEntry {
	entry := PawnHashEntry{WhitePawns: whitePawns, BlackPawns: blackPawns, Valid: true}

	for x := whitePawns; x != 0; x &= x - 1 {
		sq := bits.TrailingZeros64(x)
		if passedMask[vastmg.White][sq]&blackPawns == 0 {
			entry.WPassedBB |= 1 << uint(sq)
			entry.PassedMG += passedPawnMG[sq]
			entry.PassedEG += passedPawnEG[sq]
		}
	}
	for x := blackPawns; x != 0; x &= x - 1 {
		sq := bits.TrailingZeros64(x)
		if passedMask[vastmg.Black][sq]&whitePawns == 0 {
			entry.BPassedBB |= 1 << uint(sq)
			entry.PassedMG -= passedPawnMG[sq^56]
			entry.PassedEG -= passedPawnEG[sq^56]
		}
	}
	return entry
}
