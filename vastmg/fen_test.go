package vastmg_test

import (
	"testing"

	"github.com/pkg/errors"

	"vast-chess/vastmg"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		vastmg.FENStartPos,
		kiwipeteFEN,
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	} {
		p := mustParse(t, fen)
		if got := p.ToFEN(); got != fen {
			t.Fatalf("round trip: got %q want %q", got, fen)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: %v", fen, err)
		}
	}
}

func TestFENOptionalClocks(t *testing.T) {
	p := mustParse(t, "4k3/8/8/8/8/8/8/4K3 b - -")
	if p.HalfmoveClock() != 0 || p.FullmoveNumber() != 1 {
		t.Fatalf("clocks default: %d %d", p.HalfmoveClock(), p.FullmoveNumber())
	}
	if p.SideToMove() != vastmg.Black {
		t.Fatalf("side to move")
	}
}

func TestFENDropsInconsistentCastlingRights(t *testing.T) {
	p := mustParse(t, "4k3/8/8/8/8/8/8/4K3 w KQkq - 0 1")
	if p.CastlingRights() != vastmg.CastlingNone {
		t.Fatalf("rights without rooks kept: %04b", p.CastlingRights())
	}
}

func TestMalformedFEN(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8/8 w - - 0 1",                                  // no kings
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",            // 7 ranks
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",   // 9 columns
		"rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",   // bad piece
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",   // side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQz - 0 1",    // castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",  // ep square
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e3 0 1",  // ep rank
		"4k3/8/8/3PN3/8/8/8/4K3 w - e6 0 1",                          // ep without a pushed pawn
		"4k3/4p3/8/3Pp3/8/8/8/4K3 w - e6 0 1",                        // ep origin occupied
		"4k3/8/4n3/3Pp3/8/8/8/4K3 w - e6 0 1",                        // ep target occupied
		"4k3/8/8/8/3pp3/8/8/4K3 b - e3 0 1",                          // own pawn behind the target
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",   // halfmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 1", // extra field
		"4k3/8/8/8/8/8/8/2K1K3 w - - 0 1",                            // two kings
		"P3k3/8/8/8/8/8/8/4K3 w - - 0 1",                             // pawn on back rank
		"4k3/4Q3/8/8/8/8/8/4K3 w - - 0 1",                            // side not to move in check
	}
	for _, fen := range bad {
		_, err := vastmg.ParseFEN(vastmg.MustTables(), fen)
		if err == nil {
			t.Fatalf("ParseFEN(%q) accepted malformed input", fen)
		}
		if errors.Cause(err) != vastmg.ErrInvalidFEN {
			t.Fatalf("ParseFEN(%q): cause %v, want ErrInvalidFEN", fen, errors.Cause(err))
		}
	}
}

func TestParseMove(t *testing.T) {
	m, err := vastmg.ParseMove("e7e8q")
	if err != nil {
		t.Fatal(err)
	}
	if m.From().String() != "e7" || m.To().String() != "e8" || m.Promotion() != vastmg.Queen {
		t.Fatalf("parsed %v", m)
	}
	if m.String() != "e7e8q" {
		t.Fatalf("String: %s", m)
	}
	for _, s := range []string{"", "e2", "e2e", "e2e4qq", "i2e4", "e0e4", "e2e2", "e7e8k", "e7e8x"} {
		if _, err := vastmg.ParseMove(s); errors.Cause(err) != vastmg.ErrInvalidMove {
			t.Fatalf("ParseMove(%q): got %v, want ErrInvalidMove", s, err)
		}
	}
}

func TestParseLegalMoveRejectsIllegal(t *testing.T) {
	p := mustParse(t, vastmg.FENStartPos)
	if _, err := p.ParseLegalMove("e2e5"); errors.Cause(err) != vastmg.ErrIllegalMove {
		t.Fatalf("e2e5: got %v, want ErrIllegalMove", err)
	}
	if _, err := p.ParseLegalMove("e2e4"); err != nil {
		t.Fatalf("e2e4: %v", err)
	}
	if vastmg.NoMove.String() != "0000" {
		t.Fatalf("null move text: %s", vastmg.NoMove)
	}
}
