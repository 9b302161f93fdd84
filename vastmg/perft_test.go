package vastmg_test

import (
	"context"
	"testing"

	"vast-chess/vastmg"
)

const kiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustParse(t testing.TB, fen string) *vastmg.Position {
	t.Helper()
	p, err := vastmg.ParseFEN(vastmg.MustTables(), fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func TestPerftInitialPosition(t *testing.T) {
	p := mustParse(t, vastmg.FENStartPos)
	want := []uint64{1, 20, 400, 8902, 197281}
	for depth, n := range want {
		if depth == 4 && testing.Short() {
			t.Skip("depth 4 skipped in -short mode")
		}
		if got := vastmg.Perft(p, depth); got != n {
			t.Fatalf("perft(%d): got %d want %d", depth, got, n)
		}
	}
	if p.ToFEN() != vastmg.FENStartPos {
		t.Fatalf("perft left position changed: %s", p.ToFEN())
	}
}

func TestPerftKiwipete(t *testing.T) {
	p := mustParse(t, kiwipeteFEN)
	want := []uint64{1, 48, 2039, 97862}
	for depth, n := range want {
		if depth == 3 && testing.Short() {
			t.Skip("depth 3 skipped in -short mode")
		}
		if got := vastmg.Perft(p, depth); got != n {
			t.Fatalf("kiwipete perft(%d): got %d want %d", depth, got, n)
		}
	}
}

func TestPerftSpecialPositions(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		depth int
		want  uint64
	}{
		{"en passant d1", "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", 1, 5},
		{"en passant d2", "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", 2, 19},
		{"promotion", "1n5k/P7/8/8/8/8/8/7K w - - 0 1", 1, 11},
		// position 3 from the chess programming wiki
		{"rook endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
		// position 4, promotions and castling everywhere
		{"position 4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 3, 9467},
		{"position 5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 2, 1486},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParse(t, tc.fen)
			if got := vastmg.Perft(p, tc.depth); got != tc.want {
				t.Fatalf("perft(%d): got %d want %d", tc.depth, got, tc.want)
			}
		})
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	p := mustParse(t, kiwipeteFEN)
	div := vastmg.PerftDivide(p, 2)
	if len(div) != 48 {
		t.Fatalf("divide root moves: got %d want 48", len(div))
	}
	var sum uint64
	for _, n := range div {
		sum += n
	}
	if sum != 2039 {
		t.Fatalf("divide sum: got %d want 2039", sum)
	}

	par, err := vastmg.ParallelPerftDivide(context.Background(), p, 2)
	if err != nil {
		t.Fatalf("ParallelPerftDivide: %v", err)
	}
	for m, n := range div {
		if par[m] != n {
			t.Fatalf("parallel divide %v: got %d want %d", m, par[m], n)
		}
	}
}

func TestParallelPerftDivideCancelled(t *testing.T) {
	p := mustParse(t, vastmg.FENStartPos)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := vastmg.ParallelPerftDivide(ctx, p, 3); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func BenchmarkPerftInitialD4(b *testing.B) {
	p := mustParse(b, vastmg.FENStartPos)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vastmg.Perft(p, 4)
	}
}

func BenchmarkPerftKiwipeteD3(b *testing.B) {
	p := mustParse(b, kiwipeteFEN)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vastmg.Perft(p, 3)
	}
}

func BenchmarkGenerateMoves(b *testing.B) {
	p := mustParse(b, kiwipeteFEN)
	buf := make([]vastmg.Move, 0, 256)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = p.GenerateMoves(buf[:0])
	}
}

func BenchmarkGenerateCapturesEP(b *testing.B) {
	p := mustParse(b, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	buf := make([]vastmg.Move, 0, 64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = p.GenerateCaptures(buf[:0])
	}
}

func BenchmarkMakeUndoAllMoves(b *testing.B) {
	p := mustParse(b, kiwipeteFEN)
	moves := p.GenerateMoves(nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, m := range moves {
			if p.MakeMove(m) {
				p.UndoMove(m)
			}
		}
	}
}
