package engine

import (
	"vast-chess/vastmg"
)

var SeePieceValue = [7]int{
	vastmg.King:   5000,
	vastmg.Pawn:   100,
	vastmg.Knight: 300,
	vastmg.Bishop: 300,
	vastmg.Rook:   500,
	vastmg.Queen:  900}

// Quiescence skips captures that lose more than this by exchange.
var QuiescenceSeeMargin = 100

// see returns the material balance of the capture sequence on move's target
// square, both sides always recapturing with their least valuable piece.
// Sliders behind a capturer join in once it leaves the square's rays.
func see(pos *vastmg.Position, move vastmg.Move) int {
	var gain [32]int
	depth := 0
	from, to := move.From(), move.To()
	occ := pos.AllOccupancy()

	if pos.IsEnPassant(move) {
		occ &^= 1 << uint(vastmg.MakeSquare(to.File(), from.Rank()))
	}

	gain[depth] = SeePieceValue[pos.CapturedPiece(move).Type()]
	attacker := pos.MovedPiece(move).Type()
	attackerBB := uint64(1) << uint(from)
	side := pos.SideToMove()

	for attackerBB != 0 && depth < len(gain)-1 {
		depth++
		gain[depth] = SeePieceValue[attacker] - gain[depth-1]

		// If we're in a losing position after the last trade, we break
		if Max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		occ ^= attackerBB
		side = side.Other()
		attackerBB, attacker = leastValuableAttacker(pos, to, side, occ)
	}

	for x := depth - 1; x > 0; x-- {
		gain[x-1] = -Max(-gain[x-1], gain[x])
	}
	return gain[0]
}

func leastValuableAttacker(pos *vastmg.Position, sq vastmg.Square, side vastmg.Color, occ uint64) (uint64, vastmg.PieceType) {
	attackers := pos.AttackersTo(sq, side, occ) & occ
	if attackers == 0 {
		return 0, vastmg.PieceTypeNone
	}
	for _, pt := range vastmg.PieceTypes {
		if bb := attackers & pos.Pieces(side, pt); bb != 0 {
			return bb & -bb, pt
		}
	}
	return 0, vastmg.PieceTypeNone
}
