package engine

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"

	"vast-chess/vastmg"
)

var (
	tablesOnce sync.Once
	tables     *vastmg.Tables
	tablesErr  error
)

func testTables(t testing.TB) *vastmg.Tables {
	t.Helper()
	tablesOnce.Do(func() {
		tables, tablesErr = vastmg.NewTables(vastmg.DefaultSeed)
	})
	if tablesErr != nil {
		t.Fatalf("build tables: %v", tablesErr)
	}
	return tables
}

func mustPosition(t testing.TB, fen string) *vastmg.Position {
	t.Helper()
	pos, err := vastmg.ParseFEN(testTables(t), fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	return pos
}

func newTestEngine() *Engine {
	return NewEngine(Options{HashMB: 4})
}

func isLegal(pos *vastmg.Position, m vastmg.Move) bool {
	return lo.Contains(pos.LegalMoves(), m)
}

func TestThinkZeroBudgetReturnsLegalMove(t *testing.T) {
	pos := mustPosition(t, vastmg.FENStartPos)
	e := newTestEngine()

	move, info := e.Think(0, pos)
	if move == vastmg.NoMove || !isLegal(pos, move) {
		t.Fatalf("expected a legal fallback move, got %v", move)
	}
	if info.Depth != 0 {
		t.Fatalf("no iteration should complete with a zero budget, got depth %d", info.Depth)
	}
}

func TestThinkWithBudget(t *testing.T) {
	pos := mustPosition(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	fen := pos.ToFEN()
	e := newTestEngine()

	move, info := e.Think(2*time.Second, pos)
	if !isLegal(pos, move) {
		t.Fatalf("illegal move %v", move)
	}
	if info.Depth < 1 || info.Nodes == 0 {
		t.Fatalf("expected at least one completed depth, got %+v", info)
	}
	if info.Elapsed > time.Second {
		t.Fatalf("search overran its deadline: %v", info.Elapsed)
	}
	if pos.ToFEN() != fen {
		t.Fatalf("search modified the caller's position")
	}
}

func TestMateInOne(t *testing.T) {
	pos := mustPosition(t, "7k/6pp/6Q1/8/8/2B5/8/6K1 w - - 0 1")
	e := newTestEngine()

	info := e.Search(context.Background(), pos, Limits{Depth: 4})
	if info.Score != MateScore-1 || info.Mate != 1 {
		t.Fatalf("expected mate in 1, got score %d mate %d", info.Score, info.Mate)
	}
	if !pos.MakeMove(info.BestMove) || !pos.InCheckmate() {
		t.Fatalf("%v does not mate", info.BestMove)
	}
}

func TestMatedInOne(t *testing.T) {
	// Black to move cannot stop Qg7#.
	pos := mustPosition(t, "7k/6pp/8/8/8/2B3Q1/8/6K1 b - - 0 1")
	e := newTestEngine()

	info := e.Search(context.Background(), pos, Limits{Depth: 5})
	if info.Mate >= 0 {
		t.Fatalf("expected a negative mate count, got score %d mate %d", info.Score, info.Mate)
	}
}

func TestRootWithoutLegalMoves(t *testing.T) {
	e := newTestEngine()

	stalemate := mustPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	info := e.Search(context.Background(), stalemate, Limits{Depth: 3})
	if info.BestMove != vastmg.NoMove || info.Score != DrawScore {
		t.Fatalf("stalemate: got move %v score %d", info.BestMove, info.Score)
	}

	mated := mustPosition(t, "7k/6Q1/6K1/8/8/8/8/8 b - - 0 1")
	info = e.Search(context.Background(), mated, Limits{Depth: 3})
	if info.BestMove != vastmg.NoMove || info.Score != -MateScore {
		t.Fatalf("checkmate: got move %v score %d", info.BestMove, info.Score)
	}
}

func TestTerminalNodeScores(t *testing.T) {
	e := newTestEngine()
	e.rootDepth = 1

	e.pos = mustPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if score := e.alphabeta(-MaxScore, MaxScore, 2, 3, false); score != DrawScore {
		t.Fatalf("stalemate should score %d, got %d", DrawScore, score)
	}

	e.pos = mustPosition(t, "7k/6Q1/6K1/8/8/8/8/8 b - - 0 1")
	if score := e.alphabeta(-MaxScore, MaxScore, 2, 3, false); score != -MateScore+3 {
		t.Fatalf("mate at ply 3 should score %d, got %d", -MateScore+3, score)
	}
}

func TestReverseFutilityPruning(t *testing.T) {
	const fen = "4k3/8/8/8/8/8/8/3QK3 w - - 0 1"
	e := newTestEngine()
	e.rootDepth = 2
	e.pos = mustPosition(t, fen)
	eval := e.eval.Evaluate(e.pos)

	// A queen up against a null window at zero: cut before any move.
	if score := e.alphabeta(0, 1, 2, 1, true); score != eval || e.nodes != 1 {
		t.Fatalf("expected a static cut with %d, got %d after %d nodes", eval, score, e.nodes)
	}
	if e.Stats.ReverseFutilityCutoffs != 1 {
		t.Fatalf("cutoffs %d", e.Stats.ReverseFutilityCutoffs)
	}

	// Beta just out of reach of the margin must be searched.
	e = newTestEngine()
	e.rootDepth = 2
	e.pos = mustPosition(t, fen)
	beta := eval - 2*ReverseFutilityMargin + 1
	e.alphabeta(beta-1, beta, 2, 1, true)
	if e.nodes == 1 {
		t.Fatalf("node within the margin was pruned")
	}

	// Never at PV nodes.
	e = newTestEngine()
	e.rootDepth = 2
	e.pos = mustPosition(t, fen)
	e.alphabeta(-MaxScore, MaxScore, 2, 1, true)
	if e.nodes == 1 {
		t.Fatalf("PV node was pruned")
	}
}

func TestPrefersMateOverStalemate(t *testing.T) {
	// Kb6-a6 stalemates, Qc7-c8 mates.
	pos := mustPosition(t, "k7/2Q5/1K6/8/8/8/8/8 w - - 0 1")
	e := newTestEngine()
	info := e.Search(context.Background(), pos, Limits{Depth: 3})
	if info.Mate != 1 {
		t.Fatalf("expected mate in 1, got %+v", info)
	}
	pos.MakeMove(info.BestMove)
	if pos.InStalemate() {
		t.Fatalf("engine walked into stalemate with %v", info.BestMove)
	}
}

func TestStoppedSearchLeavesNoRootEntry(t *testing.T) {
	pos := mustPosition(t, vastmg.FENStartPos)
	e := newTestEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	info := e.Search(ctx, pos, Limits{Infinite: true})
	if info.Depth != 0 || !isLegal(pos, info.BestMove) {
		t.Fatalf("cancelled search: got %+v", info)
	}
	if _, ok := e.TT().Probe(pos.Hash()); ok {
		t.Fatalf("a cancelled search must not store the root")
	}
}

func TestRootEntryOnlyForCompletedDepths(t *testing.T) {
	pos := mustPosition(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	e := newTestEngine()

	info := e.Search(context.Background(), pos, Limits{Nodes: 30000})
	if info.Depth == 0 {
		t.Fatalf("expected at least one completed depth")
	}
	entry, ok := e.TT().Probe(pos.Hash())
	if !ok {
		t.Fatalf("completed depths store the root")
	}
	if int(entry.Depth) != info.Depth {
		t.Fatalf("root entry depth %d, last completed depth %d", entry.Depth, info.Depth)
	}
	if entry.Move != info.BestMove {
		t.Fatalf("root entry move %v, best move %v", entry.Move, info.BestMove)
	}
}

func TestOnIterationReportsEachDepth(t *testing.T) {
	pos := mustPosition(t, vastmg.FENStartPos)
	var depths []int
	e := NewEngine(Options{HashMB: 4, OnIteration: func(si SearchInfo) {
		depths = append(depths, si.Depth)
		if len(si.PV) == 0 || si.PV[0] != si.BestMove {
			t.Errorf("depth %d: pv %v does not start with %v", si.Depth, si.PV, si.BestMove)
		}
	}})

	info := e.Search(context.Background(), pos, Limits{Depth: 4})
	if want := []int{1, 2, 3, 4}; !reflect.DeepEqual(depths, want) {
		t.Fatalf("got iterations %v, want %v", depths, want)
	}
	if info.Depth != 4 {
		t.Fatalf("got depth %d", info.Depth)
	}
}

func TestSearchPrefersWinningMaterial(t *testing.T) {
	// The rook on d5 hangs.
	pos := mustPosition(t, "4k3/8/8/3r4/8/8/3Q4/4K3 w - - 0 1")
	e := newTestEngine()
	info := e.Search(context.Background(), pos, Limits{Depth: 3})
	if info.BestMove.String() != "d2d5" {
		t.Fatalf("expected d2d5, got %v (pv %s)", info.BestMove, PVString(info.PV))
	}
}

func TestBenchIsDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("bench search skipped in short mode")
	}
	e := newTestEngine()
	first, err := e.Bench(testTables(t), BenchFENs[:3], 4)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Bench(testTables(t), BenchFENs[:3], 4)
	if err != nil {
		t.Fatal(err)
	}
	if first.Nodes != second.Nodes || first.Positions != 3 {
		t.Fatalf("node counts differ: %d vs %d", first.Nodes, second.Nodes)
	}
}

func TestBenchRejectsBadFEN(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Bench(testTables(t), []string{"not a fen"}, 1); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestMateIn(t *testing.T) {
	cases := map[int32]int{
		MateScore - 1:  1,
		MateScore - 3:  2,
		MateScore - 4:  2,
		-MateScore + 2: -1,
		-MateScore + 4: -2,
		150:            0,
		-MateBound:     0,
	}
	for score, want := range cases {
		if got := MateIn(score); got != want {
			t.Errorf("MateIn(%d) = %d, want %d", score, got, want)
		}
	}
}

func BenchmarkSearchDepth5(b *testing.B) {
	pos := mustPosition(b, vastmg.FENStartPos)
	e := newTestEngine()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.NewGame()
		e.Search(context.Background(), pos, Limits{Depth: 5})
	}
}
