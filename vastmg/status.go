package vastmg

import "math/bits"

// repetitions counts earlier occurrences of the current position, looking
// back no further than the last irreversible or null move.
func (p *Position) repetitions(stopAt int) int {
	n := len(p.keys) - 1
	if n < 0 || p.keys[n] != p.st.hash {
		return 0
	}
	limit := n - p.st.reversible
	if limit < 0 {
		limit = 0
	}
	count := 0
	for i := n - 2; i >= limit; i -= 2 {
		if p.keys[i] == p.st.hash {
			count++
			if count >= stopAt {
				break
			}
		}
	}
	return count
}

// IsRepetition reports whether the current position occurred before. The
// search treats a single repetition as a draw.
func (p *Position) IsRepetition() bool { return p.repetitions(1) >= 1 }

// IsDrawByRepetition reports a threefold repetition.
func (p *Position) IsDrawByRepetition() bool { return p.repetitions(2) >= 2 }

// IsDrawBy50 reports a 50-move rule draw (halfmoveClock counts half-moves).
func (p *Position) IsDrawBy50() bool { return p.st.halfmoveClock >= 100 }

// IsInsufficientMaterial reports positions where neither side can mate:
// bare kings, or a single minor piece against a bare king.
func (p *Position) IsInsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		s := &p.st.pieces[c]
		if s[Pawn]|s[Rook]|s[Queen] != 0 {
			return false
		}
	}
	minors := bits.OnesCount64(p.st.pieces[White][Knight] | p.st.pieces[White][Bishop] |
		p.st.pieces[Black][Knight] | p.st.pieces[Black][Bishop])
	return minors <= 1
}

// InCheckmate reports whether the side to move is checkmated.
func (p *Position) InCheckmate() bool { return p.InCheck() && !p.HasLegalMoves() }

// InStalemate reports whether the side to move is stalemated.
func (p *Position) InStalemate() bool { return !p.InCheck() && !p.HasLegalMoves() }

// Outcome classifies a finished game.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	FiftyMoveDraw
	RepetitionDraw
	InsufficientMaterial
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveDraw:
		return "fifty-move rule"
	case RepetitionDraw:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	}
	return "ongoing"
}

// Outcome reports whether the game is over and why.
func (p *Position) Outcome() Outcome {
	if !p.HasLegalMoves() {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	switch {
	case p.IsDrawBy50():
		return FiftyMoveDraw
	case p.IsDrawByRepetition():
		return RepetitionDraw
	case p.IsInsufficientMaterial():
		return InsufficientMaterial
	}
	return Ongoing
}
