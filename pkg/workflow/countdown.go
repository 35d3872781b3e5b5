package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Phase is a step of the pre-start countdown.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountingDown
	PhaseRevealing
	PhaseStarted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountingDown:
		return "counting-down"
	case PhaseRevealing:
		return "revealing"
	case PhaseStarted:
		return "started"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ErrCountdownActive is returned by Begin when the countdown already left Idle.
var ErrCountdownActive = errors.New("countdown already running")

// DefaultCountdown is the number of counts before the problem is revealed.
const DefaultCountdown = 3

// Countdown is the state machine Idle → CountingDown(n) → … →
// CountingDown(1) → Revealing → Started. It holds no timer; each call to
// Tick advances it by one step. It is not safe for concurrent use.
type Countdown struct {
	from      int
	phase     Phase
	remaining int
}

// NewCountdown creates an idle countdown that counts from n. A
// non-positive n skips straight to Revealing.
func NewCountdown(n int) *Countdown {
	return &Countdown{from: max(0, n)}
}

// Phase returns the current phase.
func (c *Countdown) Phase() Phase { return c.phase }

// Remaining returns n while counting down, otherwise 0.
func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) String() string {
	if c.phase == PhaseCountingDown {
		return fmt.Sprintf("%s(%d)", c.phase, c.remaining)
	}
	return c.phase.String()
}

// Begin leaves Idle.
func (c *Countdown) Begin() error {
	if c.phase != PhaseIdle {
		return ErrCountdownActive
	}
	if c.from == 0 {
		c.phase = PhaseRevealing
		return nil
	}
	c.phase, c.remaining = PhaseCountingDown, c.from
	return nil
}

// Tick advances one step and returns the new phase. Idle and Started are
// fixed points.
func (c *Countdown) Tick() Phase {
	switch c.phase {
	case PhaseCountingDown:
		if c.remaining > 1 {
			c.remaining--
		} else {
			c.phase, c.remaining = PhaseRevealing, 0
		}
	case PhaseRevealing:
		c.phase = PhaseStarted
	}
	return c.phase
}

// Reset returns to Idle.
func (c *Countdown) Reset() {
	c.phase, c.remaining = PhaseIdle, 0
}

// Run begins the countdown and ticks it every interval on a single ticker
// from clock until it reaches Revealing. onChange, if set, sees every
// phase including the first. The final Revealing → Started step belongs to
// the caller, once the reveal is done. A cancelled ctx resets the
// countdown to Idle.
func (c *Countdown) Run(ctx context.Context, clock Clock, interval time.Duration, onChange func(Phase, int)) error {
	if err := c.Begin(); err != nil {
		return err
	}
	notify := func() {
		if onChange != nil {
			onChange(c.phase, c.remaining)
		}
	}
	notify()
	if c.phase == PhaseRevealing {
		return nil
	}

	t := clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Reset()
			return ctx.Err()
		case <-t.C():
			c.Tick()
			notify()
			if c.phase == PhaseRevealing {
				return nil
			}
		}
	}
}
