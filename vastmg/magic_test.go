package vastmg

import (
	"testing"

	"lukechampine.com/frand"
)

// slowSlider walks each direction square by square until it leaves the
// board or hits a blocker.
func slowSlider(sq Square, occ uint64, dirs [4][2]int) uint64 {
	var att uint64
	for _, d := range dirs {
		for r, f := sq.Rank()+d[0], sq.File()+d[1]; r >= 0 && r < 8 && f >= 0 && f < 8; r, f = r+d[0], f+d[1] {
			s := MakeSquare(f, r)
			att |= bb(s)
			if occ&bb(s) != 0 {
				break
			}
		}
	}
	return att
}

func TestMagicMatchesRaycast(t *testing.T) {
	tb := MustTables()
	for sq := Square(0); sq < 64; sq++ {
		for i := 0; i < 200; i++ {
			occ := frand.Uint64n(^uint64(0)) & frand.Uint64n(^uint64(0))
			if got, want := tb.RookAttacks(sq, occ), slowSlider(sq, occ, rookDirs); got != want {
				t.Fatalf("rook %v occ %016x: got %016x want %016x", sq, occ, got, want)
			}
			if got, want := tb.BishopAttacks(sq, occ), slowSlider(sq, occ, bishopDirs); got != want {
				t.Fatalf("bishop %v occ %016x: got %016x want %016x", sq, occ, got, want)
			}
		}
		if got, want := tb.QueenAttacks(sq, 0), slowSlider(sq, 0, rookDirs)|slowSlider(sq, 0, bishopDirs); got != want {
			t.Fatalf("queen %v on empty board: got %016x want %016x", sq, got, want)
		}
	}
}

func TestMagicTableSizes(t *testing.T) {
	tb := MustTables()
	// rook tables need 102400 entries and bishop tables 5248 without sharing
	if n := tb.tableEntries(&tb.rookMagic); n != 102400 {
		t.Fatalf("rook entries: got %d", n)
	}
	if n := tb.tableEntries(&tb.bishopMagic); n != 5248 {
		t.Fatalf("bishop entries: got %d", n)
	}
	if tb.MagicTrials < 128 {
		t.Fatalf("magic trials %d below one per square and slider", tb.MagicTrials)
	}
}

func TestTablesDeterministicPerSeed(t *testing.T) {
	a, err := NewTables(42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTables(42)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewTables(43)
	if err != nil {
		t.Fatal(err)
	}
	if a.zobristPiece != b.zobristPiece || a.zobristSide != b.zobristSide {
		t.Fatalf("same seed produced different keys")
	}
	if a.zobristSide == c.zobristSide {
		t.Fatalf("different seeds produced the same side key")
	}
	for sq := Square(0); sq < 64; sq++ {
		if a.RookAttacks(sq, 0) != c.RookAttacks(sq, 0) {
			t.Fatalf("attack sets differ between seeds at %v", sq)
		}
	}
}

func TestLeaperTables(t *testing.T) {
	tb := MustTables()
	if n := popCount(tb.KnightAttacks(A1)); n != 2 {
		t.Fatalf("knight a1: %d targets", n)
	}
	if n := popCount(tb.KnightAttacks(MakeSquare(3, 3))); n != 8 {
		t.Fatalf("knight d4: %d targets", n)
	}
	if n := popCount(tb.KingAttacks(H8)); n != 3 {
		t.Fatalf("king h8: %d targets", n)
	}
	if tb.PawnAttacks(White, MakeSquare(4, 1)) != bb(MakeSquare(3, 2))|bb(MakeSquare(5, 2)) {
		t.Fatalf("white pawn e2 attacks")
	}
	if tb.PawnAttacks(Black, MakeSquare(0, 6)) != bb(MakeSquare(1, 5)) {
		t.Fatalf("black pawn a7 attacks")
	}
	if tb.Between(A1, H8) != tb.BishopAttacks(A1, bb(H8))&^bb(H8) {
		t.Fatalf("between a1 h8")
	}
	if tb.Between(A1, MakeSquare(1, 2)) != 0 {
		t.Fatalf("unaligned squares have nothing between")
	}
	if tb.AttacksFor(Pawn, E1, 0) != 0 {
		t.Fatalf("pawns are not dispatched through AttacksFor")
	}
}

func popCount(x uint64) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}
