package engine

import (
	"github.com/rs/zerolog"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	// MaxPly bounds the search stack, PV table and killer table.
	MaxPly = 128

	MaxScore  int32 = 32500
	MateScore int32 = 32000
	// Scores beyond MateBound encode a forced mate.
	MateBound int32 = MateScore - MaxPly
	DrawScore int32 = 0
)

// Options configures an Engine. Zero fields are replaced by DefaultOptions.
type Options struct {
	// Transposition table size in megabytes.
	HashMB int
	// The search deadline is Budget / TimeRatio.
	TimeRatio int

	NullMoveR        int
	NullMoveMinDepth int
	LMRMinDepth      int
	LMRMinMove       int
	AspirationWindow int32
	MaxDepth         int

	// Evaluator defaults to a PSTEvaluator with its own pawn hash.
	Evaluator Evaluator
	Logger    *zerolog.Logger
	// OnIteration is called after every completed iteration.
	OnIteration func(SearchInfo)
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	nop := zerolog.Nop()
	return Options{
		HashMB:           16,
		TimeRatio:        25,
		NullMoveR:        2,
		NullMoveMinDepth: 3,
		LMRMinDepth:      3,
		LMRMinMove:       3,
		AspirationWindow: 25,
		MaxDepth:         64,
		Logger:           &nop,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HashMB <= 0 {
		o.HashMB = d.HashMB
	}
	if o.TimeRatio <= 0 {
		o.TimeRatio = d.TimeRatio
	}
	if o.NullMoveR <= 0 {
		o.NullMoveR = d.NullMoveR
	}
	if o.NullMoveMinDepth <= 0 {
		o.NullMoveMinDepth = d.NullMoveMinDepth
	}
	if o.LMRMinDepth <= 0 {
		o.LMRMinDepth = d.LMRMinDepth
	}
	if o.LMRMinMove <= 0 {
		o.LMRMinMove = d.LMRMinMove
	}
	if o.AspirationWindow <= 0 {
		o.AspirationWindow = d.AspirationWindow
	}
	if o.MaxDepth <= 0 || o.MaxDepth > MaxPly/2 {
		o.MaxDepth = Min(d.MaxDepth, MaxPly/2)
	}
	if o.Evaluator == nil {
		o.Evaluator = NewPSTEvaluator()
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}
