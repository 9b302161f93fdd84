package vastmg

const (
	rank1BB uint64 = 0xFF
	rank3BB uint64 = 0xFF << 16
	rank6BB uint64 = 0xFF << 40
	rank8BB uint64 = 0xFF << 56
)

// generation modes
const (
	genAll = iota
	genTactical
)

// promoOrder lists promotion pieces best first.
var promoOrder = [4]PieceType{Queen, Rook, Bishop, Knight}

func appendPromotions(dst []Move, from, to Square) []Move {
	for _, pt := range promoOrder {
		dst = append(dst, NewMove(from, to, pt))
	}
	return dst
}

// GenerateMoves appends every pseudo-legal move for the side to move to dst.
// Moves that leave the king attacked are rejected later by MakeMove.
func (p *Position) GenerateMoves(dst []Move) []Move {
	return p.generate(dst, genAll)
}

// GenerateCaptures appends captures (en passant included) and all
// promotions, capturing or not. Quiescence search runs on these.
func (p *Position) GenerateCaptures(dst []Move) []Move {
	return p.generate(dst, genTactical)
}

func (p *Position) generate(dst []Move, mode int) []Move {
	us := p.st.sideToMove
	them := us.Other()
	own := p.st.occupancy[us]
	enemies := p.st.occupancy[them]
	all := own | enemies
	empty := ^all

	dst = p.genPawnMoves(dst, mode, us, enemies, empty)

	targets := ^own
	if mode == genTactical {
		targets = enemies
	}
	for _, pt := range [5]PieceType{Knight, Bishop, Rook, Queen, King} {
		for pcs := p.st.pieces[us][pt]; pcs != 0; {
			from := popLSB(&pcs)
			for to := p.t.AttacksFor(pt, from, all) & targets; to != 0; {
				dst = append(dst, NewMove(from, popLSB(&to), PieceTypeNone))
			}
		}
	}

	if mode == genAll {
		dst = p.genCastling(dst, us, all)
	}
	return dst
}

func (p *Position) genPawnMoves(dst []Move, mode int, us Color, enemies, empty uint64) []Move {
	pawns := p.st.pieces[us][Pawn]
	var single, double, promoRank uint64
	var up Square
	if us == White {
		single = (pawns << 8) & empty
		double = ((single & rank3BB) << 8) & empty
		promoRank, up = rank8BB, 8
	} else {
		single = (pawns >> 8) & empty
		double = ((single & rank6BB) >> 8) & empty
		promoRank, up = rank1BB, -8
	}

	for s := single & promoRank; s != 0; {
		to := popLSB(&s)
		dst = appendPromotions(dst, to-up, to)
	}
	if mode == genAll {
		for s := single &^ promoRank; s != 0; {
			to := popLSB(&s)
			dst = append(dst, NewMove(to-up, to, PieceTypeNone))
		}
		for s := double; s != 0; {
			to := popLSB(&s)
			dst = append(dst, NewMove(to-2*up, to, PieceTypeNone))
		}
	}

	ep := p.st.enPassantSquare
	for pcs := pawns; pcs != 0; {
		from := popLSB(&pcs)
		att := p.t.pawnAttacks[us][from]
		for caps := att & enemies; caps != 0; {
			to := popLSB(&caps)
			if bb(to)&promoRank != 0 {
				dst = appendPromotions(dst, from, to)
			} else {
				dst = append(dst, NewMove(from, to, PieceTypeNone))
			}
		}
		if ep != NoSquare && att&bb(ep) != 0 {
			dst = append(dst, NewMove(from, ep, PieceTypeNone))
		}
	}
	return dst
}

// genCastling emits castling moves whose rights are held and whose path is
// empty. Attacks on the king's path are checked by MakeMove.
func (p *Position) genCastling(dst []Move, us Color, all uint64) []Move {
	cr := p.st.castlingRights
	if us == White {
		if cr&CastlingWhiteK != 0 && all&p.t.Between(E1, H1) == 0 {
			dst = append(dst, NewMove(E1, G1, PieceTypeNone))
		}
		if cr&CastlingWhiteQ != 0 && all&p.t.Between(E1, A1) == 0 {
			dst = append(dst, NewMove(E1, C1, PieceTypeNone))
		}
		return dst
	}
	if cr&CastlingBlackK != 0 && all&p.t.Between(E8, H8) == 0 {
		dst = append(dst, NewMove(E8, G8, PieceTypeNone))
	}
	if cr&CastlingBlackQ != 0 && all&p.t.Between(E8, A8) == 0 {
		dst = append(dst, NewMove(E8, C8, PieceTypeNone))
	}
	return dst
}

// LegalMoves returns the pseudo-legal moves that survive MakeMove.
func (p *Position) LegalMoves() []Move {
	moves := p.GenerateMoves(make([]Move, 0, 64))
	legal := moves[:0]
	for _, m := range moves {
		if p.MakeMove(m) {
			p.UndoMove(m)
			legal = append(legal, m)
		}
	}
	return legal
}

// HasLegalMoves stops at the first legal move found.
func (p *Position) HasLegalMoves() bool {
	var buf [256]Move
	for _, m := range p.GenerateMoves(buf[:0]) {
		if p.MakeMove(m) {
			p.UndoMove(m)
			return true
		}
	}
	return false
}

// IsSquareAttacked reports whether any piece of side by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	s := &p.st.pieces[by]
	if p.t.pawnAttacks[by.Other()][sq]&s[Pawn] != 0 {
		return true
	}
	if p.t.knightMoves[sq]&s[Knight] != 0 || p.t.kingMoves[sq]&s[King] != 0 {
		return true
	}
	occ := p.AllOccupancy()
	if p.t.BishopAttacks(sq, occ)&(s[Bishop]|s[Queen]) != 0 {
		return true
	}
	return p.t.RookAttacks(sq, occ)&(s[Rook]|s[Queen]) != 0
}

// AttackersTo returns every piece of side by attacking sq under occupancy occ.
func (p *Position) AttackersTo(sq Square, by Color, occ uint64) uint64 {
	s := &p.st.pieces[by]
	return p.t.pawnAttacks[by.Other()][sq]&s[Pawn] |
		p.t.knightMoves[sq]&s[Knight] |
		p.t.kingMoves[sq]&s[King] |
		p.t.BishopAttacks(sq, occ)&(s[Bishop]|s[Queen]) |
		p.t.RookAttacks(sq, occ)&(s[Rook]|s[Queen])
}

// IsInCheck reports whether side c's king is attacked.
func (p *Position) IsInCheck(c Color) bool {
	k := p.st.kingSquare[c]
	if k == NoSquare {
		return false
	}
	return p.IsSquareAttacked(k, c.Other())
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.IsInCheck(p.st.sideToMove) }
