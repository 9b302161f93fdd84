package vastmg

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	bufs := make([][]Move, depth+1)
	for i := range bufs {
		bufs[i] = make([]Move, 0, 256)
	}
	return perft(p, depth, bufs)
}

func perft(p *Position, depth int, bufs [][]Move) uint64 {
	moves := p.GenerateMoves(bufs[depth][:0])
	bufs[depth] = moves
	var nodes uint64
	for _, m := range moves {
		if !p.MakeMove(m) {
			continue
		}
		if depth == 1 {
			nodes++
		} else {
			nodes += perft(p, depth-1, bufs)
		}
		p.UndoMove(m)
	}
	return nodes
}

// PerftDivide returns the perft count below each legal root move.
func PerftDivide(p *Position, depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range p.LegalMoves() {
		p.MakeMove(m)
		out[m] = Perft(p, depth-1)
		p.UndoMove(m)
	}
	return out
}

// ParallelPerftDivide is PerftDivide with one goroutine per root move, each
// working on its own clone, bounded by GOMAXPROCS.
func ParallelPerftDivide(ctx context.Context, p *Position, depth int) (map[Move]uint64, error) {
	out := make(map[Move]uint64)
	if depth <= 0 {
		return out, nil
	}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, m := range p.LegalMoves() {
		m := m
		child := p.Clone()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child.MakeMove(m)
			n := Perft(child, depth-1)
			mu.Lock()
			out[m] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
