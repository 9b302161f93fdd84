package vastmg

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"
)

// DefaultSeed seeds the RNG used for Zobrist keys and magic candidates.
// A fixed seed keeps hashes reproducible between runs.
const DefaultSeed uint64 = 0xC0DE

// attackFunc returns the attack set of a piece type from sq given occupancy.
type attackFunc func(t *Tables, sq Square, occ uint64) uint64

// attackFns dispatches on the closed PieceType set. Pawns are color
// dependent and go through PawnAttacks instead.
var attackFns = [7]attackFunc{
	Knight: func(t *Tables, sq Square, _ uint64) uint64 { return t.knightMoves[sq] },
	Bishop: func(t *Tables, sq Square, occ uint64) uint64 { return t.BishopAttacks(sq, occ) },
	Rook:   func(t *Tables, sq Square, occ uint64) uint64 { return t.RookAttacks(sq, occ) },
	Queen:  func(t *Tables, sq Square, occ uint64) uint64 { return t.QueenAttacks(sq, occ) },
	King:   func(t *Tables, sq Square, _ uint64) uint64 { return t.kingMoves[sq] },
}

// Tables is the read-only context shared by positions, the move generator
// and the search: leaper masks, slider rays, magic lookup tables and the
// Zobrist keys. Build it once with NewTables and pass it around by pointer.
type Tables struct {
	knightMoves [64]uint64
	kingMoves   [64]uint64
	// pawnAttacks[color][sq] gives the squares a pawn of color attacks from sq
	pawnAttacks [2][64]uint64

	// Rook directions: 0=N, 1=S, 2=E, 3=W
	rookRays [64][4]uint64
	// Bishop directions: 0=NE, 1=NW, 2=SE, 3=SW
	bishopRays [64][4]uint64

	// between[a][b] holds the squares strictly between two aligned squares
	between [64][64]uint64

	rookMagic   [64]magicEntry
	bishopMagic [64]magicEntry

	zobristPiece     [15][64]uint64 // indexed by Piece code
	zobristCastle    [16]uint64     // one key per castling rights state
	zobristEnPassant [8]uint64      // indexed by en passant file
	zobristSide      uint64         // XORed in when Black is to move

	// MagicTrials is how many candidates were tested while building.
	MagicTrials uint64
}

// NewTables builds the attack tables and Zobrist keys from seed.
func NewTables(seed uint64) (*Tables, error) {
	return NewTablesWithLogger(seed, zerolog.Nop())
}

// NewTablesWithLogger is NewTables with magic search statistics reported to log.
func NewTablesWithLogger(seed uint64, log zerolog.Logger) (*Tables, error) {
	t := &Tables{}
	rng := newRNG(seed)

	t.initLeapers()
	t.initRays()
	t.initBetween()
	t.initZobrist(rng)

	if err := t.initMagics(rng, log); err != nil {
		return nil, errors.Wrap(err, "building slider tables")
	}
	log.Debug().
		Uint64("trials", t.MagicTrials).
		Int("rookEntries", t.tableEntries(&t.rookMagic)).
		Int("bishopEntries", t.tableEntries(&t.bishopMagic)).
		Msg("attack tables ready")
	return t, nil
}

var (
	defaultTables    *Tables
	defaultTablesErr error
	defaultOnce      sync.Once
)

// MustTables returns a process-wide Tables built from DefaultSeed, building
// it on first use. It panics if construction fails.
func MustTables() *Tables {
	defaultOnce.Do(func() {
		defaultTables, defaultTablesErr = NewTables(DefaultSeed)
	})
	if defaultTablesErr != nil {
		panic(defaultTablesErr)
	}
	return defaultTables
}

// rng wraps a deterministic frand stream.
type rng struct {
	r   *frand.RNG
	buf [8]byte
}

func newRNG(seed uint64) *rng {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9E3779B97F4A7C15)
	return &rng{r: frand.NewCustom(key[:], 1024, 12)}
}

func (r *rng) Uint64() uint64 {
	r.r.Read(r.buf[:])
	return binary.LittleEndian.Uint64(r.buf[:])
}

// KnightAttacks returns the knight mask from sq.
func (t *Tables) KnightAttacks(sq Square) uint64 { return t.knightMoves[sq] }

// KingAttacks returns the king mask from sq.
func (t *Tables) KingAttacks(sq Square) uint64 { return t.kingMoves[sq] }

// PawnAttacks returns the squares a pawn of color c attacks from sq.
func (t *Tables) PawnAttacks(c Color, sq Square) uint64 { return t.pawnAttacks[c][sq] }

// AttacksFor returns the attack set of a non-pawn piece type.
func (t *Tables) AttacksFor(pt PieceType, sq Square, occ uint64) uint64 {
	if f := attackFns[pt]; f != nil {
		return f(t, sq, occ)
	}
	return 0
}

// Between returns the squares strictly between a and b when they share a
// rank, file or diagonal, and 0 otherwise.
func (t *Tables) Between(a, b Square) uint64 { return t.between[a][b] }

// initLeapers precomputes move attack bitboards for knights, kings, and pawn captures.
func (t *Tables) initLeapers() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := Square(0); sq < 64; sq++ {
		t.knightMoves[sq] = stepMask(sq, knightOffsets[:])
		t.kingMoves[sq] = stepMask(sq, kingOffsets[:])
		t.pawnAttacks[White][sq] = stepMask(sq, [][2]int{{1, -1}, {1, 1}})
		t.pawnAttacks[Black][sq] = stepMask(sq, [][2]int{{-1, -1}, {-1, 1}})
	}
}

// stepMask collects the on-board targets of single steps given as {rank, file} deltas.
func stepMask(sq Square, offsets [][2]int) uint64 {
	var mask uint64
	rank, file := sq.Rank(), sq.File()
	for _, off := range offsets {
		rf := rank + off[0]
		ff := file + off[1]
		if rf >= 0 && rf < 8 && ff >= 0 && ff < 8 {
			mask |= bb(MakeSquare(ff, rf))
		}
	}
	return mask
}

var (
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// initRays precomputes directional rays for rook and bishop moves,
// excluding the origin square.
func (t *Tables) initRays() {
	for sq := Square(0); sq < 64; sq++ {
		for d := 0; d < 4; d++ {
			t.rookRays[sq][d] = ray(sq, rookDirs[d])
			t.bishopRays[sq][d] = ray(sq, bishopDirs[d])
		}
	}
}

func ray(sq Square, dir [2]int) uint64 {
	var r uint64
	for rf, ff := sq.Rank()+dir[0], sq.File()+dir[1]; rf >= 0 && rf < 8 && ff >= 0 && ff < 8; rf, ff = rf+dir[0], ff+dir[1] {
		r |= bb(MakeSquare(ff, rf))
	}
	return r
}

func (t *Tables) initBetween() {
	for a := Square(0); a < 64; a++ {
		for d := 0; d < 4; d++ {
			for _, dirs := range [2]*[4][2]int{&rookDirs, &bishopDirs} {
				dir := dirs[d]
				var acc uint64
				for rf, ff := a.Rank()+dir[0], a.File()+dir[1]; rf >= 0 && rf < 8 && ff >= 0 && ff < 8; rf, ff = rf+dir[0], ff+dir[1] {
					b := MakeSquare(ff, rf)
					t.between[a][b] = acc
					acc |= bb(b)
				}
			}
		}
	}
}

func (t *Tables) initZobrist(r *rng) {
	for pc := 0; pc < 15; pc++ {
		for sq := 0; sq < 64; sq++ {
			t.zobristPiece[pc][sq] = r.Uint64()
		}
	}
	for cr := 0; cr < 16; cr++ {
		t.zobristCastle[cr] = r.Uint64()
	}
	for f := 0; f < 8; f++ {
		t.zobristEnPassant[f] = r.Uint64()
	}
	t.zobristSide = r.Uint64()
}
