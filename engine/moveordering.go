package engine

import (
	"vast-chess/vastmg"
)

type scoredMove struct {
	move  vastmg.Move
	score int32
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva = [7][7]int32{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 15, 14, 13, 12, 11, 10}, // victim Pawn
	{0, 25, 24, 23, 22, 21, 20}, // victim Knight
	{0, 35, 34, 33, 32, 31, 30}, // victim Bishop
	{0, 45, 44, 43, 42, 41, 40}, // victim Rook
	{0, 55, 54, 53, 52, 51, 50}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},       // victim King
}

/*
Move ordering offsets:
  - The TT move is the best move of a previous search of this node; try it first.
  - Promotions and captures next, captures by MVV-LVA.
  - Killers, then the counter move to the previous move.
  - History scores stay within +-historyMax, below every offset above.
*/
const (
	pvOffset        int32 = 1 << 20
	promotionOffset int32 = 1 << 18
	captureOffset   int32 = 1 << 17
	killerOffset    int32 = 1 << 16
	counterOffset   int32 = 1 << 15
)

func (e *Engine) scoreMoves(pos *vastmg.Position, moves []vastmg.Move, dst []scoredMove, ttMove vastmg.Move, ply int) []scoredMove {
	dst = dst[:0]
	us := pos.SideToMove()
	prev := pos.LastMove()
	for _, m := range moves {
		var s int32
		switch {
		case m == ttMove:
			s = pvOffset
		case m.Promotion() != vastmg.PieceTypeNone:
			s = promotionOffset + int32(pieceValueMG[m.Promotion()])/10 + e.captureScore(pos, m)
		case pos.IsCapture(m):
			s = captureOffset + e.captureScore(pos, m)
		case m == e.killers.KillerMoves[ply][0]:
			s = killerOffset + 1
		case m == e.killers.KillerMoves[ply][1]:
			s = killerOffset
		case prev != vastmg.NoMove && e.counters[us][prev.From()][prev.To()] == m:
			s = counterOffset
		default:
			s = e.history.score(us, m)
		}
		dst = append(dst, scoredMove{move: m, score: s})
	}
	return dst
}

// scoreCaptures orders quiescence moves by MVV-LVA with promotions first.
func (e *Engine) scoreCaptures(pos *vastmg.Position, moves []vastmg.Move, dst []scoredMove) []scoredMove {
	dst = dst[:0]
	for _, m := range moves {
		s := e.captureScore(pos, m)
		if m.Promotion() != vastmg.PieceTypeNone {
			s += promotionOffset + int32(pieceValueMG[m.Promotion()])/10
		}
		dst = append(dst, scoredMove{move: m, score: s})
	}
	return dst
}

func (e *Engine) captureScore(pos *vastmg.Position, m vastmg.Move) int32 {
	victim := pos.CapturedPiece(m)
	if victim == vastmg.NoPiece {
		return 0
	}
	return mvvLva[victim.Type()][pos.MovedPiece(m).Type()]
}

// orderNextMove swaps the best scored move from currIndex onwards into place.
func orderNextMove(currIndex int, moves []scoredMove) {
	bestIndex := currIndex
	bestScore := moves[bestIndex].score

	for index := bestIndex + 1; index < len(moves); index++ {
		if moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves[index].score
		}
	}
	moves[currIndex], moves[bestIndex] = moves[bestIndex], moves[currIndex]
}
