// Package uci speaks the Universal Chess Interface on behalf of an engine.
// Protocol output goes to the writer given to New; diagnostics go to the
// logger.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"vast-chess/engine"
	"vast-chess/vastmg"
)

const (
	engineName   = "vast-chess"
	engineAuthor = "the vast-chess authors"

	// Budget assumed by a bare "go" without any limit.
	defaultBudget = 300000 * time.Millisecond
)

var ErrBadCommand = errors.New("malformed command")

// Protocol is one UCI session. Commands are handled in order by Run; a
// search runs in its own goroutine until it finishes or "stop" arrives.
type Protocol struct {
	tables *vastmg.Tables
	engine *engine.Engine
	pos    *vastmg.Position
	log    zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	cancel context.CancelFunc
	done   chan struct{}
}

func New(t *vastmg.Tables, e *engine.Engine, out io.Writer, log zerolog.Logger) *Protocol {
	p := &Protocol{
		tables: t,
		engine: e,
		pos:    vastmg.MustParseFEN(t, vastmg.FENStartPos),
		log:    log,
		out:    out,
	}
	e.SetOnIteration(p.printInfo)
	return p
}

// Position returns a copy of the current position.
func (p *Protocol) Position() *vastmg.Position { return p.pos.Clone() }

// Run reads commands until "quit" or the end of in.
func (p *Protocol) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if p.Handle(scanner.Text()) {
			return nil
		}
	}
	p.stopSearch()
	return errors.Wrap(scanner.Err(), "read commands")
}

// Handle executes one command line and reports whether it was "quit".
func (p *Protocol) Handle(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 { // ignore blank lines
		return false
	}
	p.log.Debug().Str("cmd", line).Msg("received")

	switch strings.ToLower(tokens[0]) {
	case "uci":
		p.println("id name " + engineName)
		p.println("id author " + engineAuthor)
		p.printf("option name Hash type spin default %d min 1 max 4096", p.engine.Options().HashMB)
		p.printf("option name TimeRatio type spin default %d min 1 max 1000", p.engine.Options().TimeRatio)
		p.println("uciok")
	case "isready":
		p.println("readyok")
	case "ucinewgame":
		p.stopSearch()
		p.engine.NewGame()
		p.pos = vastmg.MustParseFEN(p.tables, vastmg.FENStartPos)
		p.log.Debug().Str("game", p.engine.GameID().String()).Msg("new game")
	case "position":
		pos, err := ParsePosition(p.tables, tokens[1:])
		if err != nil {
			p.printf("info string %v", err)
			p.log.Warn().Err(err).Str("cmd", line).Msg("position rejected")
			return false
		}
		p.stopSearch()
		p.pos = pos
	case "go":
		limits, err := ParseGo(tokens[1:], p.pos.SideToMove())
		if err != nil {
			p.printf("info string %v", err)
			return false
		}
		p.startSearch(limits)
	case "stop":
		p.stopSearch()
	case "setoption":
		p.stopSearch()
		if err := p.setOption(tokens[1:]); err != nil {
			p.printf("info string %v", err)
		}
	case "d":
		p.println(p.pos.ToFEN())
	case "quit":
		p.stopSearch()
		return true
	default:
		p.printf("info string unknown command %s", tokens[0])
	}
	return false
}

// Wait blocks until the running search, if any, has printed its bestmove.
func (p *Protocol) Wait() {
	if p.done != nil {
		<-p.done
	}
}

func (p *Protocol) startSearch(limits engine.Limits) {
	p.stopSearch()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	pos := p.pos.Clone()

	go func() {
		defer close(done)
		info := p.engine.Search(ctx, pos, limits)
		if limits.Infinite {
			// bestmove must wait for "stop"
			<-ctx.Done()
		}
		p.printf("bestmove %s", info.BestMove)
	}()
}

func (p *Protocol) stopSearch() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

func (p *Protocol) setOption(tokens []string) error {
	// setoption name <id> value <x>
	if len(tokens) != 4 || !strings.EqualFold(tokens[0], "name") || !strings.EqualFold(tokens[2], "value") {
		return errors.Wrapf(ErrBadCommand, "setoption %s", strings.Join(tokens, " "))
	}
	v, err := strconv.Atoi(tokens[3])
	if err != nil || v < 1 {
		return errors.Wrapf(ErrBadCommand, "option %s: bad value %q", tokens[1], tokens[3])
	}
	switch strings.ToLower(tokens[1]) {
	case "hash":
		p.engine.ResizeHash(v)
	case "timeratio":
		p.engine.SetTimeRatio(v)
	default:
		return errors.Wrapf(ErrBadCommand, "unknown option %s", tokens[1])
	}
	p.log.Debug().Str("option", tokens[1]).Int("value", v).Msg("option set")
	return nil
}

// ParsePosition handles the arguments of "position": startpos or fen <6
// fields>, optionally followed by moves.
func ParsePosition(t *vastmg.Tables, tokens []string) (*vastmg.Position, error) {
	if len(tokens) == 0 {
		return nil, errors.Wrap(ErrBadCommand, "position: missing argument")
	}

	var fen string
	rest := tokens[1:]
	switch strings.ToLower(tokens[0]) {
	case "startpos":
		fen = vastmg.FENStartPos
	case "fen":
		n := 0
		for n < len(rest) && !strings.EqualFold(rest[n], "moves") {
			n++
		}
		fen = strings.Join(rest[:n], " ")
		rest = rest[n:]
	default:
		return nil, errors.Wrapf(ErrBadCommand, "position: invalid subcommand %s", tokens[0])
	}

	pos, err := vastmg.ParseFEN(t, fen)
	if err != nil {
		return nil, errors.Wrap(err, "position")
	}
	if len(rest) == 0 {
		return pos, nil
	}
	if !strings.EqualFold(rest[0], "moves") {
		return nil, errors.Wrapf(ErrBadCommand, "position: unexpected %s", rest[0])
	}
	for _, s := range rest[1:] {
		m, err := pos.ParseLegalMove(strings.ToLower(s))
		if err != nil {
			return nil, errors.Wrap(err, "position")
		}
		pos.MakeMove(m)
	}
	return pos, nil
}

// ParseGo turns the arguments of "go" into search limits for side us.
func ParseGo(tokens []string, us vastmg.Color) (engine.Limits, error) {
	var limits engine.Limits
	var wTime, bTime, wInc, bInc int
	clock := false

	for i := 0; i < len(tokens); i++ {
		name := strings.ToLower(tokens[i])
		if name == "infinite" {
			limits.Infinite = true
			continue
		}
		if i+1 >= len(tokens) {
			return limits, errors.Wrapf(ErrBadCommand, "go: option %s needs a value", name)
		}
		v, err := strconv.Atoi(tokens[i+1])
		if err != nil || v < 0 {
			return limits, errors.Wrapf(ErrBadCommand, "go: could not convert %s %q", name, tokens[i+1])
		}
		i++

		switch name {
		case "wtime", "btime", "winc", "binc":
			clock = true
		}
		switch name {
		case "wtime":
			wTime = v
		case "btime":
			bTime = v
		case "winc":
			wInc = v
		case "binc":
			bInc = v
		case "movetime":
			limits.MoveTime = time.Duration(v) * time.Millisecond
		case "depth":
			limits.Depth = v
		case "nodes":
			limits.Nodes = uint64(v)
		case "movestogo":
		default:
			return limits, errors.Wrapf(ErrBadCommand, "go: unknown subcommand %s", name)
		}
	}

	timeLeft, inc := wTime, wInc
	if us == vastmg.Black {
		timeLeft, inc = bTime, bInc
	}
	limits.Budget = time.Duration(timeLeft) * time.Millisecond
	limits.Increment = time.Duration(inc) * time.Millisecond

	// A clock that gives us nothing means move at once; only a "go" with no
	// limits at all gets the default budget.
	if !clock && limits == (engine.Limits{}) {
		limits.Budget = defaultBudget
	}
	return limits, nil
}

func (p *Protocol) printInfo(si engine.SearchInfo) {
	p.printf("info depth %d seldepth %d score %s nodes %d nps %d time %d hashfull %d pv %s",
		si.Depth, si.SelDepth, ScoreString(si.Score), si.Nodes, si.NPS(),
		si.Elapsed.Milliseconds(), si.Hashfull, engine.PVString(si.PV))
}

// ScoreString renders a score as "cp <n>" or "mate <moves>".
func ScoreString(score int32) string {
	if m := engine.MateIn(score); m != 0 {
		return fmt.Sprintf("mate %d", m)
	}
	return fmt.Sprintf("cp %d", score)
}

func (p *Protocol) println(s string) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintln(p.out, s)
}

func (p *Protocol) printf(format string, args ...interface{}) {
	p.println(fmt.Sprintf(format, args...))
}
