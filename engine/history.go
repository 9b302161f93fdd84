package engine

import "vast-chess/vastmg"

// historyMax caps history scores; the gravity update keeps every entry
// within [-historyMax, historyMax].
const historyMax = 16384

/*
HISTORY
Quiet moves that caused a beta cutoff get a bonus of depth*depth, scaled down
as the entry approaches historyMax. Quiet moves tried before the cutoff move
get the same amount as a malus.
*/
type historyTable [2][64][64]int32

func (h *historyTable) score(c vastmg.Color, m vastmg.Move) int32 {
	return h[c][m.From()][m.To()]
}

func (h *historyTable) update(c vastmg.Color, m vastmg.Move, bonus int32) {
	bonus = Clamp(bonus, -historyMax, historyMax)
	v := &h[c][m.From()][m.To()]
	*v += bonus - *v*Abs(bonus)/historyMax
}

// age halves every entry so older searches weigh less.
func (h *historyTable) age() {
	for c := range h {
		for from := range h[c] {
			for to := range h[c][from] {
				h[c][from][to] /= 2
			}
		}
	}
}

func (h *historyTable) clear() { *h = historyTable{} }

// KillerStruct holds two quiet cutoff moves per ply.
type KillerStruct struct {
	KillerMoves [MaxPly + 1][2]vastmg.Move
}

func (k *KillerStruct) InsertKiller(move vastmg.Move, ply int) {
	if move != k.KillerMoves[ply][0] {
		k.KillerMoves[ply][1] = k.KillerMoves[ply][0]
		k.KillerMoves[ply][0] = move
	}
}

func (k *KillerStruct) IsKiller(move vastmg.Move, ply int) bool {
	return move == k.KillerMoves[ply][0] || move == k.KillerMoves[ply][1]
}

// Clear the killer moves table.
func (k *KillerStruct) ClearKillers() {
	*k = KillerStruct{}
}
