package engine

import (
	"github.com/rs/zerolog"
)

// CutStatistics collects counts for each pruning/cutoff mechanism.
type CutStatistics struct {
	TTCutoffs              uint64
	ReverseFutilityCutoffs uint64
	NullMoveCutoffs        uint64
	MateThreats            uint64
	BetaCutoffs            uint64
	FirstMoveCutoffs       uint64
	LMRResearches          uint64
	PVSResearches          uint64
	QStandPatCutoffs       uint64
	QBetaCutoffs           uint64
	DeltaPrunes            uint64
	SEEPrunes              uint64
}

// MarshalZerologObject lets the statistics be logged as one object.
func (s CutStatistics) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("tt", s.TTCutoffs).
		Uint64("rfp", s.ReverseFutilityCutoffs).
		Uint64("null", s.NullMoveCutoffs).
		Uint64("mate_threats", s.MateThreats).
		Uint64("beta", s.BetaCutoffs).
		Uint64("first_move_beta", s.FirstMoveCutoffs).
		Uint64("lmr_research", s.LMRResearches).
		Uint64("pvs_research", s.PVSResearches).
		Uint64("q_standpat", s.QStandPatCutoffs).
		Uint64("q_beta", s.QBetaCutoffs).
		Uint64("delta", s.DeltaPrunes).
		Uint64("see", s.SEEPrunes)
}

// MoveOrderingRate is the share of beta cutoffs produced by the first move
// searched, in percent.
func (s CutStatistics) MoveOrderingRate() float64 {
	if s.BetaCutoffs == 0 {
		return 0
	}
	return float64(s.FirstMoveCutoffs) * 100 / float64(s.BetaCutoffs)
}
