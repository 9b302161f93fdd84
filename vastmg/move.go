package vastmg

import (
	"github.com/pkg/errors"
)

// Move encodes origin, destination and optional promotion in 16 bits.
// It carries no capture or special-move flags; those are derived from the
// position the move is played in.
type Move uint16

// Bitfield layout within Move (from LSB to MSB)
const (
	moveFromShift    = 0  // 6 bits
	moveToShift      = 6  // 6 bits
	movePromoteShift = 12 // 3 bits
)

// NoMove is the zero move (a1a1), never produced by the generator.
const NoMove Move = 0

var (
	ErrInvalidMove = errors.New("invalid move text")
	ErrIllegalMove = errors.New("illegal move")
)

// NewMove constructs a Move value from components.
func NewMove(from, to Square, promo PieceType) Move {
	return Move(uint16(from&0x3F)<<moveFromShift | uint16(to&0x3F)<<moveToShift | uint16(promo&7)<<movePromoteShift)
}

// From returns the source square of the move.
func (m Move) From() Square { return Square((m >> moveFromShift) & 0x3F) }

// To returns the destination square of the move.
func (m Move) To() Square { return Square((m >> moveToShift) & 0x3F) }

// Promotion returns the promotion piece type, or PieceTypeNone.
func (m Move) Promotion() PieceType { return PieceType((m >> movePromoteShift) & 7) }

var promoLetters = [7]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}

// String produces long algebraic text, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	buf := make([]byte, 4, 5)
	from, to := m.From(), m.To()
	buf[0] = 'a' + byte(from.File())
	buf[1] = '1' + byte(from.Rank())
	buf[2] = 'a' + byte(to.File())
	buf[3] = '1' + byte(to.Rank())
	if pt := m.Promotion(); pt != PieceTypeNone {
		buf = append(buf, promoLetters[pt])
	}
	return string(buf)
}

// ParseSquare converts algebraic text ("e4") to a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, errors.Errorf("bad square %q", s)
	}
	return MakeSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// ParseMove parses long algebraic text into a Move without consulting a
// position. The result may still be illegal; see ParseLegalMove.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, errors.Wrapf(ErrInvalidMove, "%q: want 4 or 5 characters", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, errors.Wrapf(ErrInvalidMove, "%q: %v", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, errors.Wrapf(ErrInvalidMove, "%q: %v", s, err)
	}
	if from == to {
		return NoMove, errors.Wrapf(ErrInvalidMove, "%q: origin equals destination", s)
	}
	promo := PieceTypeNone
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'Q':
			promo = Queen
		case 'r', 'R':
			promo = Rook
		case 'b', 'B':
			promo = Bishop
		case 'n', 'N':
			promo = Knight
		default:
			return NoMove, errors.Wrapf(ErrInvalidMove, "%q: bad promotion piece %q", s, s[4])
		}
	}
	return NewMove(from, to, promo), nil
}

// ParseLegalMove parses s and resolves it against the legal moves of p.
func (p *Position) ParseLegalMove(s string) (Move, error) {
	m, err := ParseMove(s)
	if err != nil {
		return NoMove, err
	}
	for _, lm := range p.LegalMoves() {
		if lm == m {
			return m, nil
		}
	}
	return NoMove, errors.Wrapf(ErrIllegalMove, "%s in %s", s, p.ToFEN())
}

// MovedPiece returns the piece standing on the move's origin.
func (p *Position) MovedPiece(m Move) Piece { return p.st.board[m.From()] }

// IsEnPassant reports whether m is an en passant capture in p.
func (p *Position) IsEnPassant(m Move) bool {
	return m.To() == p.st.enPassantSquare && p.st.board[m.From()].Type() == Pawn &&
		m.From().File() != m.To().File()
}

// IsCastle reports whether m is a castling move in p (king moves two files).
func (p *Position) IsCastle(m Move) bool {
	if p.st.board[m.From()].Type() != King {
		return false
	}
	d := m.To().File() - m.From().File()
	return d == 2 || d == -2
}

// CapturedPiece returns the piece m would capture, including the pawn taken
// en passant, or NoPiece.
func (p *Position) CapturedPiece(m Move) Piece {
	if p.IsEnPassant(m) {
		return MakePiece(p.st.sideToMove.Other(), Pawn)
	}
	return p.st.board[m.To()]
}

// IsCapture reports whether m captures something in p.
func (p *Position) IsCapture(m Move) bool { return p.CapturedPiece(m) != NoPiece }

// IsTactical reports whether m is a capture or a promotion.
func (p *Position) IsTactical(m Move) bool {
	return m.Promotion() != PieceTypeNone || p.IsCapture(m)
}
