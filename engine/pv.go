package engine

import (
	"strings"

	"github.com/samber/lo"

	"vast-chess/vastmg"
)

// pvTable is the triangular principal variation table: row ply holds the
// best line found from that ply, and length[ply] is where it ends.
type pvTable struct {
	moves  [MaxPly + 1][MaxPly + 1]vastmg.Move
	length [MaxPly + 1]int
}

func (pv *pvTable) clear(ply int) { pv.length[ply] = ply }

// update makes m followed by the child's line the best line at ply.
func (pv *pvTable) update(ply int, m vastmg.Move) {
	pv.moves[ply][ply] = m
	next := pv.length[ply+1]
	if next < ply+1 {
		next = ply + 1
	}
	copy(pv.moves[ply][ply+1:next], pv.moves[ply+1][ply+1:next])
	pv.length[ply] = next
}

// root returns a copy of the line from the root.
func (pv *pvTable) root() []vastmg.Move {
	n := pv.length[0]
	out := make([]vastmg.Move, n)
	copy(out, pv.moves[0][:n])
	return out
}

// PVString renders a line as space separated long algebraic moves.
func PVString(line []vastmg.Move) string {
	return strings.Join(lo.Map(line, func(m vastmg.Move, _ int) string { return m.String() }), " ")
}
