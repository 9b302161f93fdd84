package vastmg

// undoRecord is one slot of the undo arena: the complete pre-move state plus
// the move that left it, so UndoMove restores by value copy.
type undoRecord struct {
	st   posState
	move Move
}

// castleMask[sq] is ANDed into the castling rights whenever a move touches sq.
var castleMask = func() (m [64]CastlingRights) {
	for i := range m {
		m[i] = CastlingAll
	}
	m[E1] &^= CastlingWhiteK | CastlingWhiteQ
	m[H1] &^= CastlingWhiteK
	m[A1] &^= CastlingWhiteQ
	m[E8] &^= CastlingBlackK | CastlingBlackQ
	m[H8] &^= CastlingBlackK
	m[A8] &^= CastlingBlackQ
	return m
}()

// castleRookSquares returns the rook's origin and destination for a castling
// king move from -> to.
func castleRookSquares(from, to Square) (Square, Square) {
	if to > from {
		return from + 3, from + 1
	}
	return from - 4, from - 1
}

// MakeMove plays a pseudo-legal move. If the move leaves the mover's king
// attacked (or castles out of or through check) the position is left
// untouched and false is returned. A successful move must be reverted with
// UndoMove in LIFO order.
func (p *Position) MakeMove(m Move) bool {
	from, to := m.From(), m.To()
	pc := p.st.board[from]
	us := p.st.sideToMove
	them := us.Other()
	if m == NoMove || pc == NoPiece || pc.Color() != us {
		return false
	}

	castle := pc.Type() == King && (to-from == 2 || from-to == 2)
	if castle {
		if p.IsSquareAttacked(from, them) || p.IsSquareAttacked((from+to)/2, them) {
			return false
		}
	}

	p.undo = append(p.undo, undoRecord{st: p.st, move: m})

	ep := p.st.enPassantSquare
	if ep != NoSquare {
		if p.enPassantCapturable(ep, us) {
			p.st.hash ^= p.t.zobristEnPassant[ep.File()]
		}
		p.st.enPassantSquare = NoSquare
	}

	irreversible := pc.Type() == Pawn
	if pc.Type() == Pawn && to == ep && from.File() != to.File() {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.removePiece(capSq)
	} else if p.st.board[to] != NoPiece {
		p.removePiece(to)
		irreversible = true
	}

	if promo := m.Promotion(); promo != PieceTypeNone {
		p.removePiece(from)
		p.addPiece(to, MakePiece(us, promo))
	} else {
		p.movePiece(from, to)
	}

	if castle {
		rf, rt := castleRookSquares(from, to)
		p.movePiece(rf, rt)
	}

	if cr := p.st.castlingRights & castleMask[from] & castleMask[to]; cr != p.st.castlingRights {
		p.st.hash ^= p.t.zobristCastle[p.st.castlingRights] ^ p.t.zobristCastle[cr]
		p.st.castlingRights = cr
	}

	if pc.Type() == Pawn && (to-from == 16 || from-to == 16) {
		p.st.enPassantSquare = (from + to) / 2
		if p.enPassantCapturable(p.st.enPassantSquare, them) {
			p.st.hash ^= p.t.zobristEnPassant[from.File()]
		}
	}

	if irreversible {
		p.st.halfmoveClock = 0
		p.st.reversible = 0
	} else {
		p.st.halfmoveClock++
		p.st.reversible++
	}
	if us == Black {
		p.st.fullmoveNumber++
	}
	p.st.sideToMove = them
	p.st.hash ^= p.t.zobristSide
	p.st.ply++

	if p.IsSquareAttacked(p.st.kingSquare[us], them) {
		n := len(p.undo) - 1
		p.st = p.undo[n].st
		p.undo = p.undo[:n]
		return false
	}
	p.keys = append(p.keys, p.st.hash)
	return true
}

// UndoMove reverts the most recent successful MakeMove, which must have been m.
func (p *Position) UndoMove(m Move) {
	n := len(p.undo) - 1
	if n < 0 {
		panic("UndoMove: empty undo stack")
	}
	if p.undo[n].move != m {
		panic("UndoMove: " + m.String() + " is not the last move made (" + p.undo[n].move.String() + ")")
	}
	p.pop(n)
}

func (p *Position) pop(n int) {
	p.st = p.undo[n].st
	p.undo = p.undo[:n]
	if k := len(p.keys); k > 0 {
		p.keys = p.keys[:k-1]
	}
}

// MakeNullMove passes the turn. The caller must not be in check.
func (p *Position) MakeNullMove() {
	p.undo = append(p.undo, undoRecord{st: p.st, move: NoMove})
	if ep := p.st.enPassantSquare; ep != NoSquare {
		if p.enPassantCapturable(ep, p.st.sideToMove) {
			p.st.hash ^= p.t.zobristEnPassant[ep.File()]
		}
		p.st.enPassantSquare = NoSquare
	}
	p.st.halfmoveClock++
	// repetitions never span a null move
	p.st.reversible = 0
	p.st.sideToMove = p.st.sideToMove.Other()
	p.st.hash ^= p.t.zobristSide
	p.st.ply++
	p.keys = append(p.keys, p.st.hash)
}

// UndoNullMove reverts MakeNullMove.
func (p *Position) UndoNullMove() {
	p.UndoMove(NoMove)
}

// LastMove returns the move that produced the current position, NoMove after
// a null move or when nothing has been played.
func (p *Position) LastMove() Move {
	if len(p.undo) == 0 {
		return NoMove
	}
	return p.undo[len(p.undo)-1].move
}
