package engine

import (
	"context"
	"time"
)

// Limits bounds one search. A zero Limits allows no time at all, so the
// search returns its fallback move straight away.
type Limits struct {
	// Budget is the clock time left for the side to move.
	Budget    time.Duration
	Increment time.Duration
	// MoveTime, when set, is the exact time to spend and overrides Budget.
	MoveTime time.Duration
	Depth    int
	Nodes    uint64
	Infinite bool
}

// Reserve for I/O jitter on the GUI side.
const moveOverhead = 30 * time.Millisecond

// TimeHandler turns Limits into a deadline and answers the polled
// "should we stop" question.
type TimeHandler struct {
	ctx         context.Context
	start       time.Time
	deadline    time.Time
	allotted    time.Duration
	hasDeadline bool
	nodeLimit   uint64
}

func (th *TimeHandler) initTimemanagement(ctx context.Context, limits Limits, timeRatio int) {
	th.ctx = ctx
	th.start = time.Now()
	th.nodeLimit = limits.Nodes
	th.hasDeadline = true

	switch {
	case limits.MoveTime > 0:
		th.allotted = limits.MoveTime
	case limits.Budget > 0 || limits.Increment > 0:
		th.allotted = allotTime(limits.Budget, limits.Increment, timeRatio)
	case limits.Depth > 0 || limits.Nodes > 0 || limits.Infinite:
		th.hasDeadline = false
	default:
		th.allotted = 0
	}
	th.deadline = th.start.Add(th.allotted)
}

// allotTime spends budget/timeRatio plus half the increment, never more than
// the budget minus the move overhead.
func allotTime(budget, increment time.Duration, timeRatio int) time.Duration {
	moveTime := budget/time.Duration(timeRatio) + increment/2
	if budget > 2*moveOverhead && moveTime > budget-moveOverhead {
		moveTime = budget - moveOverhead
	}
	if budget > 0 && moveTime > budget {
		moveTime = budget
	}
	return moveTime
}

/*
  - True if the deadline passed or the context was cancelled
  - False if we still got time
*/
func (th *TimeHandler) TimeStatus() bool {
	if th.ctx != nil && th.ctx.Err() != nil {
		return true
	}
	return th.hasDeadline && !time.Now().Before(th.deadline)
}

// SoftTimeExceeded reports whether half the allotted time is gone; a new
// iteration started now would most likely not finish.
func (th *TimeHandler) SoftTimeExceeded() bool {
	return th.hasDeadline && th.Elapsed() >= th.allotted/2
}

// NodeLimitReached reports whether nodes reached the node limit, if any.
func (th *TimeHandler) NodeLimitReached(nodes uint64) bool {
	return th.nodeLimit > 0 && nodes >= th.nodeLimit
}

func (th *TimeHandler) Elapsed() time.Duration { return time.Since(th.start) }
