package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"vast-chess/vastmg"
)

// BenchFENs is a small fixed suite of middlegame and endgame positions.
var BenchFENs = []string{
	vastmg.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r1bq1rk1/pp2bppp/2n1pn2/3p4/2PP4/2N1PN2/PP3PPP/R2QKB1R w KQ - 0 8",
	"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
}

// BenchResult sums a fixed-depth search over a position suite.
type BenchResult struct {
	Positions int
	Nodes     uint64
	Elapsed   time.Duration
	BestMoves []vastmg.Move
}

func (r BenchResult) NPS() uint64 {
	return SearchInfo{Nodes: r.Nodes, Elapsed: r.Elapsed}.NPS()
}

// Bench searches every FEN to depth with a fresh game each, so the node
// count is reproducible for a given build.
func (e *Engine) Bench(t *vastmg.Tables, fens []string, depth int) (BenchResult, error) {
	var res BenchResult
	for i, fen := range fens {
		pos, err := vastmg.ParseFEN(t, fen)
		if err != nil {
			return res, errors.Wrapf(err, "bench position %d", i)
		}
		e.NewGame()
		info := e.Search(context.Background(), pos, Limits{Depth: depth})
		res.Positions++
		res.Nodes += info.Nodes
		res.Elapsed += info.Elapsed
		res.BestMoves = append(res.BestMoves, info.BestMove)
		e.log.Debug().Int("position", i).Uint64("nodes", info.Nodes).Str("best", info.BestMove.String()).Msg("bench")
	}
	return res, nil
}
