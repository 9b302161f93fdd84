package vastmg

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is the cause of every FEN parse failure.
var ErrInvalidFEN = errors.New("invalid FEN")

var fenPieces = map[byte]Piece{
	'P': WhitePawn, 'N': WhiteKnight, 'B': WhiteBishop, 'R': WhiteRook, 'Q': WhiteQueen, 'K': WhiteKing,
	'p': BlackPawn, 'n': BlackKnight, 'b': BlackBishop, 'r': BlackRook, 'q': BlackQueen, 'k': BlackKing,
}

const pieceChars = " PNBRQK  pnbrqk"

// charFromPiece converts a Piece constant to its FEN character representation.
func charFromPiece(pc Piece) byte {
	if int(pc) >= len(pieceChars) {
		return '?'
	}
	return pieceChars[pc]
}

func fenError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidFEN, format, args...)
}

// ParseFEN parses a FEN string into a new Position bound to t. The half-move
// and full-move fields are optional and default to 0 and 1.
func ParseFEN(t *Tables, fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fenError("%q: not enough fields", fen)
	}
	if len(fields) > 6 {
		return nil, fenError("%q: too many fields", fen)
	}

	p := NewPosition(t)

	// 1. Piece placement
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fenError("%q: want 8 ranks, got %d", fields[0], len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc, ok := fenPieces[ch]
			if !ok {
				return nil, fenError("unrecognized piece character %q", ch)
			}
			if file >= 8 {
				return nil, fenError("rank %d has too many squares", rank+1)
			}
			if pc.Type() == King && p.st.pieces[pc.Color()][King] != 0 {
				return nil, fenError("more than one %s king", pc.Color())
			}
			if pc.Type() == Pawn && (rank == 0 || rank == 7) {
				return nil, fenError("pawn on rank %d", rank+1)
			}
			p.addPiece(MakeSquare(file, rank), pc)
			file++
		}
		if file != 8 {
			return nil, fenError("rank %d does not have 8 columns", rank+1)
		}
	}
	for _, c := range [2]Color{White, Black} {
		if p.st.pieces[c][King] == 0 {
			return nil, fenError("missing %s king", c)
		}
	}

	// 2. Side to move
	switch fields[1] {
	case "w":
		p.st.sideToMove = White
	case "b":
		p.st.sideToMove = Black
	default:
		return nil, fenError("side to move must be 'w' or 'b', got %q", fields[1])
	}

	// 3. Castling rights
	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			switch fields[2][j] {
			case 'K':
				p.st.castlingRights |= CastlingWhiteK
			case 'Q':
				p.st.castlingRights |= CastlingWhiteQ
			case 'k':
				p.st.castlingRights |= CastlingBlackK
			case 'q':
				p.st.castlingRights |= CastlingBlackQ
			default:
				return nil, fenError("invalid castling rights character %q", fields[2][j])
			}
		}
	}
	p.st.castlingRights &= p.consistentCastling()

	// 4. En passant target square
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, errors.Wrap(ErrInvalidFEN, err.Error())
		}
		wantRank := 5
		if p.st.sideToMove == Black {
			wantRank = 2
		}
		if sq.Rank() != wantRank {
			return nil, fenError("en passant square %v on wrong rank", sq)
		}
		// The pawn that just double-pushed sits past the target, and both
		// squares it crossed are empty.
		pushed, origin := sq-8, sq+8
		if p.st.sideToMove == Black {
			pushed, origin = sq+8, sq-8
		}
		if p.st.board[pushed] != MakePiece(p.st.sideToMove.Other(), Pawn) {
			return nil, fenError("en passant square %v without a pawn that just moved", sq)
		}
		if p.st.board[sq] != NoPiece || p.st.board[origin] != NoPiece {
			return nil, fenError("en passant square %v or its origin is occupied", sq)
		}
		p.st.enPassantSquare = sq
	}

	// 5. Halfmove clock
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fenError("halfmove clock %q is not a number", fields[4])
		}
		p.st.halfmoveClock = n
		p.st.reversible = n
	}

	// 6. Fullmove number
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 0 {
			return nil, fenError("fullmove number %q is not a number", fields[5])
		}
		if n == 0 {
			n = 1
		}
		p.st.fullmoveNumber = n
	}

	if p.IsInCheck(p.st.sideToMove.Other()) {
		return nil, fenError("side not to move is in check")
	}

	p.st.hash = p.ComputeHash()
	p.keys = append(p.keys, p.st.hash)
	return p, nil
}

// consistentCastling drops rights whose king or rook is not on its home square.
func (p *Position) consistentCastling() CastlingRights {
	var cr CastlingRights
	if p.st.board[E1] == WhiteKing {
		if p.st.board[H1] == WhiteRook {
			cr |= CastlingWhiteK
		}
		if p.st.board[A1] == WhiteRook {
			cr |= CastlingWhiteQ
		}
	}
	if p.st.board[E8] == BlackKing {
		if p.st.board[H8] == BlackRook {
			cr |= CastlingBlackK
		}
		if p.st.board[A8] == BlackRook {
			cr |= CastlingBlackQ
		}
	}
	return cr
}

// MustParseFEN is ParseFEN that panics on error, for tests and constants.
func MustParseFEN(t *Tables, fen string) *Position {
	p, err := ParseFEN(t, fen)
	if err != nil {
		panic(err)
	}
	return p
}

// ToFEN produces the FEN string representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// 1. Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.st.board[MakeSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(charFromPiece(pc))
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// 2. Side to move
	if p.st.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	// 3. Castling rights
	cr := p.st.castlingRights
	if cr == CastlingNone {
		sb.WriteByte('-')
	} else {
		for i, ch := range []byte("KQkq") {
			if cr&(1<<uint(i)) != 0 {
				sb.WriteByte(ch)
			}
		}
	}

	// 4. En passant square
	sb.WriteByte(' ')
	sb.WriteString(p.st.enPassantSquare.String())

	// 5-6. Clocks
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.st.halfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.st.fullmoveNumber))
	return sb.String()
}
