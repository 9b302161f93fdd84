package vastmg

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ComputeHash rebuilds the Zobrist key from scratch. The incrementally
// maintained Hash must always equal it.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := Square(0); sq < 64; sq++ {
		if pc := p.st.board[sq]; pc != NoPiece {
			h ^= p.t.zobristPiece[pc][sq]
		}
	}
	h ^= p.t.zobristCastle[p.st.castlingRights]
	if ep := p.st.enPassantSquare; ep != NoSquare && p.enPassantCapturable(ep, p.st.sideToMove) {
		h ^= p.t.zobristEnPassant[ep.File()]
	}
	if p.st.sideToMove == Black {
		h ^= p.t.zobristSide
	}
	return h
}

// enPassantCapturable reports whether a pawn of side by attacks ep. The
// en-passant key is part of the hash only then, so a double push nobody can
// answer leaves repetitions intact.
func (p *Position) enPassantCapturable(ep Square, by Color) bool {
	return p.st.pieces[by][Pawn]&p.t.pawnAttacks[by.Other()][ep] != 0
}

// Validate cross-checks the redundant representations of the position:
// board array against bitboards, occupancy, king cache and hash.
func (p *Position) Validate() error {
	var occ [2]uint64
	for c := White; c <= Black; c++ {
		for _, pt := range PieceTypes {
			set := p.st.pieces[c][pt]
			if occ[c]&set != 0 {
				return errors.Errorf("%s %d bitboard overlaps another type", c, pt)
			}
			occ[c] |= set
			for s := set; s != 0; {
				sq := popLSB(&s)
				if p.st.board[sq] != MakePiece(c, pt) {
					return errors.Errorf("board[%v]=%d but bitboard says %s %d", sq, p.st.board[sq], c, pt)
				}
			}
		}
		if occ[c] != p.st.occupancy[c] {
			return errors.Errorf("%s occupancy mismatch", c)
		}
		if n := bits.OnesCount64(p.st.pieces[c][King]); n != 1 {
			return errors.Errorf("%s has %d kings", c, n)
		}
		if bb(p.st.kingSquare[c]) != p.st.pieces[c][King] {
			return errors.Errorf("%s king cache %v is stale", c, p.st.kingSquare[c])
		}
	}
	if occ[White]&occ[Black] != 0 {
		return errors.New("white and black occupancy overlap")
	}
	for sq := Square(0); sq < 64; sq++ {
		if p.st.board[sq] != NoPiece && (occ[White]|occ[Black])&bb(sq) == 0 {
			return errors.Errorf("board[%v] set but square is not occupied", sq)
		}
	}
	if h := p.ComputeHash(); h != p.st.hash {
		return errors.Errorf("hash %016x, recomputed %016x", p.st.hash, h)
	}
	return nil
}
