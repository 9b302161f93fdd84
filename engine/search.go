package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vast-chess/vastmg"
)

// DeltaMargin is the safety margin of quiescence delta pruning.
var DeltaMargin int32 = 200

// Reverse futility pruning cuts non-PV nodes up to this depth whose static
// evaluation beats beta by ReverseFutilityMargin per ply.
var (
	ReverseFutilityMargin   int32 = 80
	ReverseFutilityMaxDepth       = 8
)

// SearchInfo describes the last completed iteration of a search.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Nodes    uint64
	Elapsed  time.Duration
	// Score is in centipawns from the side to move's view; beyond MateBound
	// it encodes a mate, see Mate.
	Score int32
	// Mate is the number of moves to mate, negative when getting mated and
	// zero when no mate was found.
	Mate     int
	PV       []vastmg.Move
	BestMove vastmg.Move
	Hashfull int
}

// NPS returns nodes per second.
func (si SearchInfo) NPS() uint64 {
	ms := si.Elapsed.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return si.Nodes * 1000 / uint64(ms)
}

// Engine runs one search at a time. The position under search, the
// transposition table and all move buffers belong to the calling goroutine
// for the duration of Search.
type Engine struct {
	opts   Options
	tt     *TransTable
	eval   Evaluator
	log    zerolog.Logger
	gameID uuid.UUID

	history  historyTable
	killers  KillerStruct
	counters [2][64][64]vastmg.Move
	pv       pvTable
	Stats    CutStatistics

	pos       *vastmg.Position
	th        TimeHandler
	nodes     uint64
	selDepth  int
	stopped   bool
	rootDepth int
	rootMoves []vastmg.Move

	genStack   [MaxPly + 1][]vastmg.Move
	moveStack  [MaxPly + 1][]scoredMove
	quietStack [MaxPly + 1][]vastmg.Move
}

func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts: opts,
		tt:   NewTransTable(opts.HashMB),
		eval: opts.Evaluator,
	}
	for ply := range e.genStack {
		e.genStack[ply] = make([]vastmg.Move, 0, 256)
		e.moveStack[ply] = make([]scoredMove, 0, 256)
		e.quietStack[ply] = make([]vastmg.Move, 0, 64)
	}
	e.NewGame()
	return e
}

// NewGame forgets everything learned in the previous game.
func (e *Engine) NewGame() {
	e.tt.Clear()
	e.history.clear()
	e.killers.ClearKillers()
	e.counters = [2][64][64]vastmg.Move{}
	if pst, ok := e.eval.(*PSTEvaluator); ok {
		pst.pawns.Clear()
	}
	e.gameID = uuid.New()
	e.log = e.opts.Logger.With().Str("game", e.gameID.String()).Logger()
	e.log.Debug().Int("hash_entries", e.tt.Len()).Msg("new game")
}

func (e *Engine) GameID() uuid.UUID { return e.gameID }

func (e *Engine) TT() *TransTable { return e.tt }

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) SetTimeRatio(r int) { e.opts.TimeRatio = Max(r, 1) }

// SetOnIteration replaces the per-iteration callback.
func (e *Engine) SetOnIteration(f func(SearchInfo)) { e.opts.OnIteration = f }

// ResizeHash reallocates the transposition table.
func (e *Engine) ResizeHash(megabytes int) {
	e.opts.HashMB = megabytes
	e.tt.Resize(megabytes)
}

// Think searches pos for at most budget/TimeRatio and returns the best move
// of the last completed depth. When not even depth 1 completes it returns the
// first legal move, and NoMove only when there is no legal move at all.
func (e *Engine) Think(budget time.Duration, pos *vastmg.Position) (vastmg.Move, SearchInfo) {
	info := e.Search(context.Background(), pos, Limits{Budget: budget})
	return info.BestMove, info
}

// Search runs iterative deepening on a copy of pos until limits are hit or
// ctx is cancelled.
func (e *Engine) Search(ctx context.Context, pos *vastmg.Position, limits Limits) SearchInfo {
	e.pos = pos.Clone()
	e.th.initTimemanagement(ctx, limits, e.opts.TimeRatio)
	e.nodes = 0
	e.selDepth = 0
	e.stopped = false
	e.Stats = CutStatistics{}
	e.killers.ClearKillers()
	e.history.age()
	e.rootMoves = e.pos.LegalMoves()

	var info SearchInfo
	if len(e.rootMoves) == 0 {
		if e.pos.InCheck() {
			info.Score = -MateScore
		} else {
			info.Score = DrawScore
		}
		e.log.Debug().Int32("score", info.Score).Msg("no legal moves at root")
		return info
	}

	maxDepth := e.opts.MaxDepth
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	var score int32
	for depth := 1; depth <= maxDepth; depth++ {
		if e.th.TimeStatus() || e.th.NodeLimitReached(e.nodes) {
			break
		}
		if depth > 1 && e.th.SoftTimeExceeded() {
			break
		}

		e.rootDepth = depth
		s, best := e.aspiration(depth, score, info.BestMove)
		if e.stopped || best == vastmg.NoMove {
			break
		}
		score = s

		info = SearchInfo{
			Depth:    depth,
			SelDepth: e.selDepth,
			Nodes:    e.nodes,
			Elapsed:  e.th.Elapsed(),
			Score:    score,
			Mate:     MateIn(score),
			PV:       e.pv.root(),
			BestMove: best,
			Hashfull: e.tt.Hashfull(),
		}
		if len(info.PV) == 0 || info.PV[0] != best {
			info.PV = []vastmg.Move{best}
		}

		e.log.Debug().
			Int("depth", depth).
			Int32("score", score).
			Uint64("nodes", e.nodes).
			Dur("elapsed", info.Elapsed).
			Str("pv", PVString(info.PV)).
			Msg("iteration")
		if e.opts.OnIteration != nil {
			e.opts.OnIteration(info)
		}

		// A forced mate within the searched horizon will not improve.
		if info.Mate != 0 && int(MateScore-Abs(score)) <= depth {
			break
		}
	}

	if info.BestMove == vastmg.NoMove {
		info.BestMove = e.rootMoves[0]
		info.PV = []vastmg.Move{info.BestMove}
		e.log.Warn().Str("move", info.BestMove.String()).Msg("no depth completed, playing first legal move")
	}

	info.Nodes = e.nodes
	info.Elapsed = e.th.Elapsed()
	e.log.Debug().Object("cuts", e.Stats).Float64("first_move_rate", e.Stats.MoveOrderingRate()).Msg("search done")
	return info
}

// aspiration searches the root in a window around the previous score,
// doubling the window on every fail.
func (e *Engine) aspiration(depth int, prev int32, prevBest vastmg.Move) (int32, vastmg.Move) {
	alpha, beta := -MaxScore, MaxScore
	window := e.opts.AspirationWindow
	if depth >= 4 && Abs(prev) < MateBound {
		alpha = Max(prev-window, -MaxScore)
		beta = Min(prev+window, MaxScore)
	}

	for {
		score, best := e.rootsearch(depth, alpha, beta, prevBest)
		if e.stopped {
			return score, best
		}
		switch {
		case score <= alpha && alpha > -MaxScore:
			alpha = Max(score-window, -MaxScore)
		case score >= beta && beta < MaxScore:
			beta = Min(score+window, MaxScore)
			prevBest = best
		default:
			// Only a finished iteration may store the root.
			e.tt.Store(e.pos.Hash(), best, depth, score, boundFor(score, alpha, beta), 0)
			return score, best
		}
		window *= 2
	}
}

func (e *Engine) rootsearch(depth int, alpha, beta int32, ttMove vastmg.Move) (int32, vastmg.Move) {
	pos := e.pos
	e.nodes++
	e.pv.clear(0)

	scored := e.scoreMoves(pos, e.rootMoves, e.moveStack[0], ttMove, 0)
	e.moveStack[0] = scored

	bestScore := -MaxScore
	bestMove := vastmg.NoMove
	for i := range scored {
		orderNextMove(i, scored)
		move := scored[i].move
		pos.MakeMove(move)

		var score int32
		if i == 0 {
			score = -e.alphabeta(-beta, -alpha, depth-1, 1, true)
		} else {
			score = -e.alphabeta(-alpha-1, -alpha, depth-1, 1, true)
			if score > alpha && score < beta {
				e.Stats.PVSResearches++
				score = -e.alphabeta(-beta, -alpha, depth-1, 1, true)
			}
		}
		pos.UndoMove(move)

		if e.stopped {
			return bestScore, bestMove
		}
		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				e.pv.update(0, move)
				if score >= beta {
					break
				}
			}
		}
	}

	return bestScore, bestMove
}

func boundFor(score, origAlpha, beta int32) Bound {
	switch {
	case score >= beta:
		return BoundLower
	case score > origAlpha:
		return BoundExact
	default:
		return BoundUpper
	}
}

// checkTime polls the clock and the node limit every 4096 nodes.
func (e *Engine) checkTime() {
	if e.nodes&4095 == 0 && (e.th.TimeStatus() || e.th.NodeLimitReached(e.nodes)) {
		e.stopped = true
	}
}

func (e *Engine) alphabeta(alpha, beta int32, depth, ply int, nullAllowed bool) int32 {
	pos := e.pos
	e.pv.clear(ply)
	e.nodes++
	e.checkTime()
	if e.stopped {
		return 0
	}
	if ply > e.selDepth {
		e.selDepth = ply
	}

	if pos.IsDrawBy50() || pos.IsRepetition() {
		return DrawScore
	}
	if ply >= MaxPly {
		return e.eval.Evaluate(pos)
	}

	inCheck := pos.InCheck()
	extended := false
	if inCheck && ply < 2*e.rootDepth {
		depth++
		extended = true
	}

	if depth <= 0 {
		return e.quiescence(alpha, beta, ply)
	}

	isPVNode := beta-alpha > 1
	hash := pos.Hash()

	/*
		TRANSPOSITION TABLE LOOKUP
	*/
	ttMove := vastmg.NoMove
	if entry, ok := e.tt.Probe(hash); ok {
		ttMove = entry.Move
		if !isPVNode && int(entry.Depth) >= depth {
			score := entry.ScoreAt(ply)
			if entry.Bound == BoundExact ||
				(entry.Bound == BoundLower && score >= beta) ||
				(entry.Bound == BoundUpper && score <= alpha) {
				e.Stats.TTCutoffs++
				return score
			}
		}
	}

	/*
		REVERSE FUTILITY PRUNING
		Far enough above beta that no quiet continuation is expected to fall back.
	*/
	if !isPVNode && !inCheck && depth <= ReverseFutilityMaxDepth && Abs(beta) < MateBound {
		if staticEval := e.eval.Evaluate(pos); staticEval-ReverseFutilityMargin*int32(depth) >= beta {
			e.Stats.ReverseFutilityCutoffs++
			return staticEval
		}
	}

	/*
		NULL MOVE PRUNING
		Pass the turn; if a reduced search still fails high the node is cut.
		If passing gets us mated, the position holds a mate threat.
	*/
	mateThreat := false
	if nullAllowed && !isPVNode && !inCheck && depth > e.opts.NullMoveMinDepth && pos.HasNonPawnMaterial(pos.SideToMove()) {
		pos.MakeNullMove()
		score := -e.alphabeta(-beta, -beta+1, depth-e.opts.NullMoveR-1, ply+1, false)
		pos.UndoNullMove()
		if e.stopped {
			return 0
		}
		if score >= beta {
			e.Stats.NullMoveCutoffs++
			if score > MateBound {
				score = beta
			}
			return score
		}
		if score <= -MateBound {
			mateThreat = true
			e.Stats.MateThreats++
		}
	}
	if mateThreat && !extended && ply < 2*e.rootDepth {
		depth++
		extended = true
	}

	moves := pos.GenerateMoves(e.genStack[ply][:0])
	e.genStack[ply] = moves
	scored := e.scoreMoves(pos, moves, e.moveStack[ply], ttMove, ply)
	e.moveStack[ply] = scored
	quietsTried := e.quietStack[ply][:0]

	us := pos.SideToMove()
	origAlpha := alpha
	bestScore := -MaxScore
	bestMove := vastmg.NoMove
	legalMoves := 0

	for i := range scored {
		orderNextMove(i, scored)
		move := scored[i].move
		quiet := !pos.IsCapture(move) && move.Promotion() == vastmg.PieceTypeNone

		if !pos.MakeMove(move) {
			continue
		}
		legalMoves++
		givesCheck := pos.InCheck()

		var score int32
		if legalMoves == 1 {
			score = -e.alphabeta(-beta, -alpha, depth-1, ply+1, true)
		} else {
			reduction := 0
			if depth >= e.opts.LMRMinDepth && legalMoves >= e.opts.LMRMinMove && quiet &&
				!e.killers.IsKiller(move, ply) && !inCheck && !givesCheck && !extended {
				reduction = lateMoveReduction(depth, legalMoves)
			}
			score = -e.alphabeta(-alpha-1, -alpha, depth-1-reduction, ply+1, true)
			if score > alpha && reduction > 0 {
				e.Stats.LMRResearches++
				score = -e.alphabeta(-alpha-1, -alpha, depth-1, ply+1, true)
			}
			if score > alpha && score < beta {
				e.Stats.PVSResearches++
				score = -e.alphabeta(-beta, -alpha, depth-1, ply+1, true)
			}
		}
		pos.UndoMove(move)

		if e.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				bestMove = move
				e.pv.update(ply, move)
				if score >= beta {
					e.Stats.BetaCutoffs++
					if legalMoves == 1 {
						e.Stats.FirstMoveCutoffs++
					}
					if quiet {
						e.updateQuietCutoff(us, move, quietsTried, depth, ply)
					}
					break
				}
			}
		}
		if quiet {
			quietsTried = append(quietsTried, move)
		}
	}
	e.quietStack[ply] = quietsTried

	if legalMoves == 0 {
		if inCheck {
			return -MateScore + int32(ply)
		}
		return DrawScore
	}

	e.tt.Store(hash, bestMove, depth, bestScore, boundFor(bestScore, origAlpha, beta), ply)
	return bestScore
}

// updateQuietCutoff rewards a quiet move that failed high and punishes the
// quiet moves searched before it.
func (e *Engine) updateQuietCutoff(us vastmg.Color, move vastmg.Move, tried []vastmg.Move, depth, ply int) {
	e.killers.InsertKiller(move, ply)
	bonus := int32(depth * depth)
	e.history.update(us, move, bonus)
	for _, q := range tried {
		e.history.update(us, q, -bonus)
	}
	if prev := e.pos.LastMove(); prev != vastmg.NoMove {
		e.counters[us][prev.From()][prev.To()] = move
	}
}

func (e *Engine) quiescence(alpha, beta int32, ply int) int32 {
	pos := e.pos
	e.pv.clear(ply)
	e.nodes++
	e.checkTime()
	if e.stopped {
		return 0
	}
	if ply > e.selDepth {
		e.selDepth = ply
	}
	if ply >= MaxPly {
		return e.eval.Evaluate(pos)
	}

	inCheck := pos.InCheck()
	bestScore := -MaxScore
	var standpat int32

	// Stand-pat pruning (not when in check)
	if !inCheck {
		standpat = e.eval.Evaluate(pos)
		if standpat >= beta {
			e.Stats.QStandPatCutoffs++
			return standpat
		}
		if standpat > alpha {
			alpha = standpat
		}
		bestScore = standpat
	}

	// Generate moves: all moves when in check, only captures otherwise
	var scored []scoredMove
	if inCheck {
		moves := pos.GenerateMoves(e.genStack[ply][:0])
		e.genStack[ply] = moves
		scored = e.scoreMoves(pos, moves, e.moveStack[ply], vastmg.NoMove, ply)
	} else {
		moves := pos.GenerateCaptures(e.genStack[ply][:0])
		e.genStack[ply] = moves
		scored = e.scoreCaptures(pos, moves, e.moveStack[ply])
	}
	e.moveStack[ply] = scored

	legalMoves := 0
	for i := range scored {
		orderNextMove(i, scored)
		move := scored[i].move

		/*
			DELTA PRUNING
			If the capture plus a margin still can't raise alpha, skip it.
		*/
		if !inCheck {
			if move.Promotion() == vastmg.PieceTypeNone && see(pos, move) < -QuiescenceSeeMargin {
				e.Stats.SEEPrunes++
				continue
			}

			var gain int32
			if victim := pos.CapturedPiece(move); victim != vastmg.NoPiece {
				gain = int32(pieceValueMG[victim.Type()])
			}
			if promo := move.Promotion(); promo != vastmg.PieceTypeNone {
				gain += int32(pieceValueMG[promo] - pieceValueMG[vastmg.Pawn])
			}
			if standpat+gain+DeltaMargin <= alpha {
				e.Stats.DeltaPrunes++
				continue
			}
		}

		if !pos.MakeMove(move) {
			continue
		}
		legalMoves++
		score := -e.quiescence(-beta, -alpha, ply+1)
		pos.UndoMove(move)

		if e.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				e.pv.update(ply, move)
				if score >= beta {
					e.Stats.QBetaCutoffs++
					break
				}
			}
		}
	}

	if inCheck && legalMoves == 0 {
		return -MateScore + int32(ply)
	}
	return bestScore
}

// MateIn converts a score to moves until mate: positive when the side to
// move mates, negative when it gets mated, zero otherwise.
func MateIn(score int32) int {
	switch {
	case score > MateBound:
		return int(MateScore-score+1) / 2
	case score < -MateBound:
		return -int(MateScore+score) / 2
	default:
		return 0
	}
}
