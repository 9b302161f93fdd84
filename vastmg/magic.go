package vastmg

import (
	"math/bits"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrMagicNotFound is returned when no collision-free magic was found for a
// square within maxMagicTrials candidates.
var ErrMagicNotFound = errors.New("no magic found")

const maxMagicTrials = 1000000

// magicEntry is the per-square perfect hash for one slider type.
type magicEntry struct {
	mask    uint64   // relevant occupancy, board edges removed
	magic   uint64   // multiplier
	shift   uint8    // 64 - popcount(mask)
	attacks []uint64 // 1 << popcount(mask) attack sets
}

func (m *magicEntry) index(occ uint64) uint64 {
	return ((occ & m.mask) * m.magic) >> m.shift
}

// RookAttacks returns rook attacks from sq for the given occupancy.
func (t *Tables) RookAttacks(sq Square, occ uint64) uint64 {
	m := &t.rookMagic[sq]
	return m.attacks[m.index(occ)]
}

// BishopAttacks returns bishop attacks from sq for the given occupancy.
func (t *Tables) BishopAttacks(sq Square, occ uint64) uint64 {
	m := &t.bishopMagic[sq]
	return m.attacks[m.index(occ)]
}

// QueenAttacks is the union of rook and bishop attacks.
func (t *Tables) QueenAttacks(sq Square, occ uint64) uint64 {
	return t.RookAttacks(sq, occ) | t.BishopAttacks(sq, occ)
}

// wizard holds the scratch buffers for the magic search of one slider type.
type wizard struct {
	name string
	rays func(t *Tables, sq Square) *[4]uint64
	// forward[d] is set when ray d runs towards higher square indices
	forward [4]bool

	rng *rng

	reference []uint64 // blocker subsets
	occupancy []uint64 // true attack set per subset
	store     []uint64
	epoch     []uint32 // store[i] is valid when epoch[i] == try
	try       uint32
	trials    uint64
}

func (t *Tables) initMagics(r *rng, log zerolog.Logger) error {
	rook := &wizard{
		name:    "rook",
		rays:    func(t *Tables, sq Square) *[4]uint64 { return &t.rookRays[sq] },
		forward: [4]bool{true, false, true, false},
		rng:     r,
	}
	bishop := &wizard{
		name:    "bishop",
		rays:    func(t *Tables, sq Square) *[4]uint64 { return &t.bishopRays[sq] },
		forward: [4]bool{true, true, false, false},
		rng:     r,
	}
	for sq := Square(0); sq < 64; sq++ {
		if err := rook.searchSquareMagic(t, sq, &t.rookMagic[sq]); err != nil {
			return err
		}
		if err := bishop.searchSquareMagic(t, sq, &t.bishopMagic[sq]); err != nil {
			return err
		}
	}
	t.MagicTrials = rook.trials + bishop.trials
	log.Debug().Uint64("rookTrials", rook.trials).Uint64("bishopTrials", bishop.trials).Msg("magics found")
	return nil
}

// relevanceMask is the empty-board attack set minus the edge squares, since
// a blocker on the last square of a ray never changes the attack set.
func (w *wizard) relevanceMask(t *Tables, sq Square) uint64 {
	const rank1, rank8 = uint64(0xFF), uint64(0xFF) << 56
	const fileA, fileH = uint64(0x0101010101010101), uint64(0x8080808080808080)
	border := (rank1 | rank8) &^ (uint64(0xFF) << (8 * uint(sq.Rank())))
	border |= (fileA | fileH) &^ (fileA << uint(sq.File()))
	return w.slidingAttack(t, sq, 0) &^ border
}

// slidingAttack ray-casts from sq, stopping each ray at its first blocker
// (the blocker itself is included).
func (w *wizard) slidingAttack(t *Tables, sq Square, occ uint64) uint64 {
	rays := w.rays(t, sq)
	var att uint64
	for d := 0; d < 4; d++ {
		r := rays[d]
		blockers := r & occ
		if blockers != 0 {
			var first int
			if w.forward[d] {
				first = bits.TrailingZeros64(blockers)
			} else {
				first = 63 - bits.LeadingZeros64(blockers)
			}
			r &^= w.rays(t, Square(first))[d]
		}
		att |= r
	}
	return att
}

// prepare computes reference and occupancy tables for a square.
func (w *wizard) prepare(t *Tables, sq Square, mask uint64) {
	w.reference = w.reference[:0]
	w.occupancy = w.occupancy[:0]

	// Carry-Rippler trick to enumerate all subsets of mask.
	for subset := uint64(0); ; {
		w.reference = append(w.reference, subset)
		w.occupancy = append(w.occupancy, w.slidingAttack(t, sq, subset))
		subset = (subset - mask) & mask
		if subset == 0 {
			break
		}
	}
}

// randMagic returns a sparse random candidate.
func (w *wizard) randMagic() uint64 {
	return w.rng.Uint64() & w.rng.Uint64() & w.rng.Uint64()
}

// tryMagicNumber reports whether magic hashes every subset without two
// different attack sets landing on the same slot.
func (w *wizard) tryMagicNumber(magic uint64, shift uint8) bool {
	w.trials++
	w.try++
	if w.try == 0 {
		for i := range w.epoch {
			w.epoch[i] = 0
		}
		w.try = 1
	}
	for i, subset := range w.reference {
		idx := (subset * magic) >> shift
		if w.epoch[idx] == w.try {
			if w.store[idx] != w.occupancy[i] {
				return false
			}
			continue
		}
		w.epoch[idx] = w.try
		w.store[idx] = w.occupancy[i]
	}
	return true
}

func (w *wizard) searchSquareMagic(t *Tables, sq Square, me *magicEntry) error {
	mask := w.relevanceMask(t, sq)
	n := bits.OnesCount64(mask)
	shift := uint8(64 - n)
	w.prepare(t, sq, mask)

	size := 1 << n
	if len(w.store) < size {
		w.store = make([]uint64, size)
		w.epoch = make([]uint32, size)
		w.try = 0
	}

	for i := 0; i < maxMagicTrials; i++ {
		magic := w.randMagic()
		// Candidates that spread too few bits into the index are hopeless.
		if bits.OnesCount64((mask*magic)&0xFF00000000000000) < 6 {
			continue
		}
		if !w.tryMagicNumber(magic, shift) {
			continue
		}
		me.mask = mask
		me.magic = magic
		me.shift = shift
		me.attacks = make([]uint64, size)
		for j, subset := range w.reference {
			me.attacks[(subset*magic)>>shift] = w.occupancy[j]
		}
		return nil
	}
	return errors.Wrapf(ErrMagicNotFound, "%s square %v", w.name, sq)
}

func (t *Tables) tableEntries(m *[64]magicEntry) int {
	n := 0
	for i := range m {
		n += len(m[i].attacks)
	}
	return n
}
