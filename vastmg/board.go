package vastmg

import "math/bits"

// Piece constants and types for pieces and colors
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	// Black pieces are encoded as (white piece type | 8) so that
	// - piece & 7 gives the type in [1..6]
	// - piece & 8 != 0 indicates Black
	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// PieceType is the closed set of colorless piece kinds. It indexes every
// per-type table in the package.
type PieceType uint8

const (
	PieceTypeNone PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PieceTypes lists the six real piece types in ascending value order.
var PieceTypes = [6]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

// Type returns the colorless type of the piece.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the side that owns the piece. NoPiece defaults to White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// MakePiece combines a side and a colorless type.
func MakePiece(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	return Piece(pt) | Piece(c)<<3
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Castling rights bit flags
type CastlingRights uint8

const (
	CastlingWhiteK CastlingRights = 1 << iota
	CastlingWhiteQ
	CastlingBlackK
	CastlingBlackQ

	CastlingNone CastlingRights = 0
	CastlingAll                 = CastlingWhiteK | CastlingWhiteQ | CastlingBlackK | CastlingBlackQ
)

// Square represents a board position (0-63), a1 = 0, h8 = 63.
type Square int8

const NoSquare Square = -1

// Named squares used by castling and tests.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

const (
	A8 Square = iota + 56
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

func (sq Square) File() int { return int(sq) & 7 }
func (sq Square) Rank() int { return int(sq) >> 3 }

// String returns the algebraic name of the square ("e4"), or "-" for NoSquare.
func (sq Square) String() string {
	if sq < 0 || sq > 63 {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// MakeSquare builds a square from zero-based file and rank.
func MakeSquare(file, rank int) Square { return Square(rank*8 + file) }

// Position is the mutable board. All fields a move can change live in
// posState so that an undo record is a plain value copy of it.
type Position struct {
	t  *Tables
	st posState

	// undo arena indexed by ply since the position was loaded
	undo []undoRecord
	// Zobrist keys of every position reached, for repetition detection
	keys []uint64
}

type posState struct {
	// Piece bitboards per color, indexed by PieceType (index 0 unused)
	pieces [2][7]uint64

	// Occupancy bitboards for each side
	occupancy [2]uint64

	// Piece placement per square
	board [64]Piece

	kingSquare [2]Square

	sideToMove     Color
	castlingRights CastlingRights

	// En passant target square (set only right after a double push)
	enPassantSquare Square

	// Half-moves since the last capture or pawn advance
	halfmoveClock int

	// Starts at 1, incremented after Black's move
	fullmoveNumber int

	// Plies since the last irreversible move or null move; bounds the
	// repetition scan.
	reversible int

	ply  int
	hash uint64
}

// NewPosition returns an empty board bound to the given tables, White to move.
func NewPosition(t *Tables) *Position {
	p := &Position{
		t:    t,
		undo: make([]undoRecord, 0, 128),
		keys: make([]uint64, 0, 256),
	}
	p.st.enPassantSquare = NoSquare
	p.st.kingSquare = [2]Square{NoSquare, NoSquare}
	p.st.fullmoveNumber = 1
	p.st.hash = p.ComputeHash()
	return p
}

// Clone returns an independent deep copy of the position.
func (p *Position) Clone() *Position {
	c := &Position{
		t:    p.t,
		st:   p.st,
		undo: make([]undoRecord, len(p.undo), cap(p.undo)),
		keys: make([]uint64, len(p.keys), cap(p.keys)),
	}
	copy(c.undo, p.undo)
	copy(c.keys, p.keys)
	return c
}

// Tables returns the attack/hash context this position was built with.
func (p *Position) Tables() *Tables { return p.t }

// Hash returns the current Zobrist hash key.
func (p *Position) Hash() uint64 { return p.st.hash }

// SideToMove reports which side is to play.
func (p *Position) SideToMove() Color { return p.st.sideToMove }

func (p *Position) CastlingRights() CastlingRights { return p.st.castlingRights }

// EnPassantSquare returns the current en-passant target square or NoSquare.
func (p *Position) EnPassantSquare() Square { return p.st.enPassantSquare }

func (p *Position) HalfmoveClock() int  { return p.st.halfmoveClock }
func (p *Position) FullmoveNumber() int { return p.st.fullmoveNumber }

// Ply is the number of moves made since the position was loaded.
func (p *Position) Ply() int { return p.st.ply }

// PieceAt returns the piece on a square.
func (p *Position) PieceAt(sq Square) Piece { return p.st.board[sq] }

// KingSquare returns the cached king square for a side.
func (p *Position) KingSquare(c Color) Square { return p.st.kingSquare[c] }

// Pieces returns the bitboard of one side's pieces of a type.
func (p *Position) Pieces(c Color, pt PieceType) uint64 { return p.st.pieces[c][pt] }

// Occupancy returns the occupancy bitboard for the given color.
func (p *Position) Occupancy(c Color) uint64 { return p.st.occupancy[c] }

// AllOccupancy returns a bitboard of all occupied squares.
func (p *Position) AllOccupancy() uint64 { return p.st.occupancy[White] | p.st.occupancy[Black] }

// HasNonPawnMaterial reports whether side c has any knight, bishop, rook or queen.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	s := &p.st.pieces[c]
	return s[Knight]|s[Bishop]|s[Rook]|s[Queen] != 0
}

// ==========================
// Bitboard helpers
// ==========================

// bb returns a bitboard with the given square bit set.
func bb(sq Square) uint64 { return 1 << uint(sq) }

// popLSB removes and returns the least significant set bit from the mask.
func popLSB(mask *uint64) Square {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return Square(idx)
}

// addPiece places a piece on an empty square and updates bitboards, occupancy and zobrist.
func (p *Position) addPiece(sq Square, pc Piece) {
	if pc == NoPiece {
		return
	}
	c := pc.Color()
	p.st.board[sq] = pc
	p.st.occupancy[c] |= bb(sq)
	p.st.pieces[c][pc.Type()] |= bb(sq)
	if pc.Type() == King {
		p.st.kingSquare[c] = sq
	}
	p.st.hash ^= p.t.zobristPiece[pc][sq]
}

// removePiece removes a piece from a square and updates bitboards, occupancy and zobrist.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.st.board[sq]
	if pc == NoPiece {
		return NoPiece
	}
	c := pc.Color()
	p.st.board[sq] = NoPiece
	p.st.occupancy[c] &^= bb(sq)
	p.st.pieces[c][pc.Type()] &^= bb(sq)
	p.st.hash ^= p.t.zobristPiece[pc][sq]
	return pc
}

// movePiece relocates a piece to an empty square.
func (p *Position) movePiece(from, to Square) {
	pc := p.st.board[from]
	c := pc.Color()
	mask := bb(from) | bb(to)
	p.st.board[from] = NoPiece
	p.st.board[to] = pc
	p.st.occupancy[c] ^= mask
	p.st.pieces[c][pc.Type()] ^= mask
	if pc.Type() == King {
		p.st.kingSquare[c] = to
	}
	p.st.hash ^= p.t.zobristPiece[pc][from] ^ p.t.zobristPiece[pc][to]
}

// SetPiece sets a piece on a square, replacing any existing piece. Used by
// position setup; it does not touch the undo arena.
func (p *Position) SetPiece(sq Square, pc Piece) {
	p.removePiece(sq)
	p.addPiece(sq, pc)
}
