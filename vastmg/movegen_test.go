package vastmg_test

import (
	"sort"
	"testing"

	"github.com/samber/lo"

	"vast-chess/vastmg"
)

func moveStrings(moves []vastmg.Move) []string {
	out := lo.Map(moves, func(m vastmg.Move, _ int) string { return m.String() })
	sort.Strings(out)
	return out
}

func TestCheckDetectionPerPieceType(t *testing.T) {
	cases := []struct {
		name    string
		fen     string
		inCheck bool
	}{
		{"pawn", "4k3/8/8/8/8/8/3p4/4K3 w - - 0 1", true},
		{"pawn in front", "4k3/8/8/8/8/8/4p3/4K3 w - - 0 1", false},
		{"knight", "4k3/8/8/8/8/3n4/8/4K3 w - - 0 1", true},
		{"bishop", "4k3/8/8/8/1b6/8/8/4K3 w - - 0 1", true},
		{"bishop blocked", "4k3/8/8/8/1b6/8/3P4/4K3 w - - 0 1", false},
		{"rook", "4k3/8/8/8/8/8/8/r3K3 w - - 0 1", true},
		{"rook blocked", "4k3/8/8/8/8/8/8/r1N1K3 w - - 0 1", false},
		{"queen diagonal", "4k3/8/8/q7/8/8/8/4K3 w - - 0 1", true},
		{"queen file", "4k3/4q3/8/8/8/8/8/4K3 w - - 0 1", true},
		{"none", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"black by pawn", "4k3/3P4/8/8/8/8/8/4K3 b - - 0 1", true},
		{"black by knight", "4k3/8/5N2/8/8/8/8/4K3 b - - 0 1", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParse(t, tc.fen)
			if got := p.InCheck(); got != tc.inCheck {
				t.Fatalf("InCheck: got %v want %v", got, tc.inCheck)
			}
		})
	}
}

func TestKingAdjacencyAttack(t *testing.T) {
	p := mustParse(t, "8/8/8/8/8/8/3k4/5K2 w - - 0 1")
	if !p.IsSquareAttacked(vastmg.E1, vastmg.Black) {
		t.Fatalf("e1 should be attacked by the d2 king")
	}
	for _, m := range p.LegalMoves() {
		if m.To() == vastmg.E1 || m.To() == vastmg.E1+8 {
			t.Fatalf("king walked next to the enemy king: %v", m)
		}
	}
}

func TestLegalityFilterDropsPinnedAndCheckIgnoringMoves(t *testing.T) {
	// white is in check from the rook; only king moves and the block survive
	p := mustParse(t, "4r2k/8/8/8/8/8/3N4/4K3 w - - 0 1")
	pseudo := p.GenerateMoves(nil)
	legal := p.LegalMoves()
	if len(legal) >= len(pseudo) {
		t.Fatalf("no pseudo-legal moves were filtered: %d vs %d", len(legal), len(pseudo))
	}
	got := moveStrings(legal)
	expect := []string{"d2e4", "e1d1", "e1f1", "e1f2"}
	if !lo.Every(got, expect) || len(got) != len(expect) {
		t.Fatalf("legal moves: got %v want %v", got, expect)
	}
}

func TestFoolsMateAndStalemate(t *testing.T) {
	p := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if !p.InCheck() || p.HasLegalMoves() || !p.InCheckmate() || p.InStalemate() {
		t.Fatalf("fool's mate not detected")
	}
	if p.Outcome() != vastmg.Checkmate {
		t.Fatalf("outcome: %v", p.Outcome())
	}
	s := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if s.InCheck() || s.HasLegalMoves() || !s.InStalemate() {
		t.Fatalf("stalemate not detected")
	}
	if s.Outcome() != vastmg.Stalemate {
		t.Fatalf("outcome: %v", s.Outcome())
	}
}

func TestEnPassant(t *testing.T) {
	p := mustParse(t, vastmg.FENStartPos)
	for _, s := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		p.MakeMove(mustMove(t, p, s))
	}
	if p.EnPassantSquare().String() != "d6" {
		t.Fatalf("en passant square: got %v want d6", p.EnPassantSquare())
	}
	m := mustMove(t, p, "e5d6")
	if !p.IsEnPassant(m) || p.CapturedPiece(m) != vastmg.BlackPawn {
		t.Fatalf("e5d6 should be an en passant capture")
	}
	p.MakeMove(m)
	if p.PieceAt(vastmg.MakeSquare(3, 4)) != vastmg.NoPiece {
		t.Fatalf("captured pawn still on d5")
	}
	if p.PieceAt(vastmg.MakeSquare(3, 5)) != vastmg.WhitePawn {
		t.Fatalf("capturing pawn not on d6")
	}
	if p.HalfmoveClock() != 0 {
		t.Fatalf("en passant must reset halfmove clock")
	}
	p.UndoMove(m)
	if p.PieceAt(vastmg.MakeSquare(3, 4)) != vastmg.BlackPawn {
		t.Fatalf("undo did not restore d5 pawn")
	}
}

func TestEnPassantExposingKingIsIllegal(t *testing.T) {
	// capturing on d6 would clear the fifth rank between the rook and king
	p := mustParse(t, "8/8/8/K2pP2r/8/8/8/7k w - d6 0 1")
	for _, m := range p.LegalMoves() {
		if m.String() == "e5d6" {
			t.Fatalf("en passant exposing the king was allowed")
		}
	}
}

func TestCastling(t *testing.T) {
	p := mustParse(t, "r1bqkbnr/pppp2pp/2n2p2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 1 3")
	m := mustMove(t, p, "e1g1")
	if !p.IsCastle(m) {
		t.Fatalf("e1g1 should be castling")
	}
	p.MakeMove(m)
	want := "r1bqkbnr/pppp2pp/2n2p2/4p3/2B1P3/5N2/PPPP1PPP/RNBQ1RK1 b kq - 2 3"
	if got := p.ToFEN(); got != want {
		t.Fatalf("after O-O: got %q want %q", got, want)
	}
	p.UndoMove(m)

	q := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1")
	q.MakeMove(mustMove(t, q, "e8c8"))
	if got := q.ToFEN(); got != "2kr3r/8/8/8/8/8/8/R3K2R w KQ - 1 2" {
		t.Fatalf("after O-O-O: %q", got)
	}
}

func TestCastlingThroughOrOutOfCheck(t *testing.T) {
	cases := []struct {
		name, fen, move string
	}{
		{"through f1", "4k3/8/8/8/8/8/5r2/4K2R w K - 0 1", "e1g1"},
		{"into g1", "4k3/8/8/8/8/8/6r1/4K2R w K - 0 1", "e1g1"},
		{"out of check", "4k3/8/8/8/8/8/4r3/4K2R w K - 0 1", "e1g1"},
		{"through d8", "r3k3/8/8/8/8/8/8/3RK3 b q - 0 1", "e8c8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParse(t, tc.fen)
			if lo.Contains(moveStrings(p.LegalMoves()), tc.move) {
				t.Fatalf("%s should be illegal", tc.move)
			}
		})
	}
	// b1 attacked does not matter for queenside castling
	p := mustParse(t, "4k3/8/8/8/8/8/1r6/R3K3 w Q - 0 1")
	if !lo.Contains(moveStrings(p.LegalMoves()), "e1c1") {
		t.Fatalf("e1c1 should be legal when only b1 is attacked")
	}
}

func TestCastlingBlockedByPieceOnPath(t *testing.T) {
	for fen, move := range map[string]string{
		"4k3/8/8/8/8/8/8/RN2K3 w Q - 0 1": "e1c1",
		"4k3/8/8/8/8/8/8/4K1NR w K - 0 1": "e1g1",
		"r2bk3/8/8/8/8/8/8/4K3 b q - 0 1": "e8c8",
		"4kn1r/8/8/8/8/8/8/4K3 b k - 0 1": "e8g8",
	} {
		p := mustParse(t, fen)
		if lo.Contains(moveStrings(p.GenerateMoves(nil)), move) {
			t.Fatalf("%s: %s generated through a blocker", fen, move)
		}
	}
}

func TestCastlingRightsLost(t *testing.T) {
	p := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	p.MakeMove(mustMove(t, p, "h1h8"))
	if p.CastlingRights() != vastmg.CastlingWhiteQ|vastmg.CastlingBlackQ {
		t.Fatalf("rook capture on h8 must clear K and k, got %04b", p.CastlingRights())
	}
	p.MakeMove(mustMove(t, p, "e8d7"))
	if p.CastlingRights() != vastmg.CastlingWhiteQ {
		t.Fatalf("king move must clear black rights, got %04b", p.CastlingRights())
	}
}

func TestPromotion(t *testing.T) {
	p := mustParse(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	got := moveStrings(p.LegalMoves())
	for _, want := range []string{"a7a8q", "a7a8r", "a7a8b", "a7a8n", "a7b8q", "a7b8n"} {
		if !lo.Contains(got, want) {
			t.Fatalf("missing %s in %v", want, got)
		}
	}
	m := mustMove(t, p, "a7b8n")
	p.MakeMove(m)
	if p.PieceAt(vastmg.B8) != vastmg.WhiteKnight {
		t.Fatalf("b8 should hold the promoted knight, got %v", p.PieceAt(vastmg.B8))
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	p.UndoMove(m)
	if p.PieceAt(vastmg.B8) != vastmg.BlackKnight || p.PieceAt(vastmg.MakeSquare(0, 6)) != vastmg.WhitePawn {
		t.Fatalf("promotion capture not undone: %s", p.ToFEN())
	}
}

func TestGenerateCaptures(t *testing.T) {
	p := mustParse(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	got := moveStrings(p.GenerateCaptures(nil))
	// four quiet promotions and four capture promotions
	if len(got) != 8 {
		t.Fatalf("captures: got %v", got)
	}
	q := mustParse(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	if got := moveStrings(q.GenerateCaptures(nil)); len(got) != 1 || got[0] != "e5d6" {
		t.Fatalf("en passant capture missing: %v", got)
	}
	k := mustParse(t, kiwipeteFEN)
	for _, m := range k.GenerateCaptures(nil) {
		if !k.IsTactical(m) {
			t.Fatalf("%v is not tactical", m)
		}
	}
}
