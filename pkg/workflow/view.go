package workflow

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/observability"
)

var (
	// ErrViewClosed is returned for actions on, or responses arriving after,
	// a closed view. The view is not changed.
	ErrViewClosed = stderrors.New("match view closed")

	// ErrBusy is returned when an action is issued while another one is
	// still waiting for the backend.
	ErrBusy = stderrors.New("match view busy")
)

// Backend is the subset of the tournament API a view needs.
// *arena.Client implements it.
type Backend interface {
	FetchMatch(ctx context.Context, num int) (bracket.Match, error)
	StartMatch(ctx context.Context, num int) error
	CompleteMatch(ctx context.Context, num, participant int) (*bracket.Match, error)
	ResetMatch(ctx context.Context, num int) error
	FetchProblem(ctx context.Context, id string, refresh bool) (string, error)
}

// DefaultTickInterval is how often a running match's elapsed time is
// republished.
const DefaultTickInterval = 100 * time.Millisecond

// Snapshot is what a view shows at one instant.
type Snapshot struct {
	ViewID  string
	Match   bracket.Match
	State   bracket.State
	Title   string
	Problem string // full markup, only once the match has started
	Elapsed time.Duration
	Phase   Phase
	Count   int // countdown value while Phase is PhaseCountingDown
	Notice  string
	Closed  bool
}

// Option configures a View.
type Option func(*config)

type config struct {
	clock     Clock
	interval  time.Duration
	countdown int
	logger    *log.Logger
}

func defaults() config {
	return config{
		clock:     SystemClock{},
		interval:  DefaultTickInterval,
		countdown: 0,
		logger:    log.New(io.Discard),
	}
}

// WithClock substitutes the time source.
func WithClock(c Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithTickInterval sets how often elapsed time is republished.
func WithTickInterval(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.interval = d
		}
	}
}

// WithCountdown makes Start count down from n, one count per second,
// before the match is started. The default is no countdown.
func WithCountdown(n int) Option {
	return func(cfg *config) { cfg.countdown = max(0, n) }
}

// WithLogger sets the logger for view events.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// View is the detail view of one match. It never owns match state: every
// action is a backend call, and the view only shows the result.
//
// A view owns at most one elapsed-time ticker. The ticker runs while the
// match is in progress and is released by Close, by completion and by
// reset. After Close, late responses are discarded and actions return
// [ErrViewClosed].
type View struct {
	cfg     config
	backend Backend
	id      string
	num     int

	// closing is cancelled by Close and aborts a running action.
	closing  context.Context
	shutdown context.CancelFunc

	mu        sync.Mutex
	match     bracket.Match
	title     string
	problem   string
	notice    string
	phase     Phase
	count     int
	busy      bool
	closed    bool
	ticker    Ticker
	tickDone  chan struct{}
	updates   chan Snapshot
	closeOnce sync.Once
}

// Open creates a view of m. A match whose participants are not both known
// is rejected with [errors.ErrCodeNotReady] before any backend call.
func Open(ctx context.Context, b Backend, m bracket.Match, opts ...Option) (*View, error) {
	if err := Openable(m); err != nil {
		return nil, err
	}
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}

	fresh, err := b.FetchMatch(ctx, m.Num)
	if err != nil {
		return nil, err
	}
	if err := Openable(fresh); err != nil {
		return nil, err
	}

	closing, shutdown := context.WithCancel(context.Background())
	v := &View{
		cfg:      cfg,
		backend:  b,
		id:       uuid.NewString(),
		num:      fresh.Num,
		closing:  closing,
		shutdown: shutdown,
		match:    fresh,
		updates:  make(chan Snapshot, 1),
	}
	if fresh.Started() {
		v.phase = PhaseStarted
	}
	v.loadProblem(ctx, fresh)

	v.mu.Lock()
	defer v.mu.Unlock()
	if bracket.StateOf(v.match) == bracket.InProgress {
		v.startTickerLocked()
	}
	v.publishLocked()
	cfg.logger.Debug("opened match view", "match", fresh.Num, "state", bracket.StateOf(fresh), "view", v.id)
	return v, nil
}

// Openable returns the error [Open] would reject m with, or nil.
func Openable(m bracket.Match) error {
	if m.IsRoundRobin() {
		return errors.New(errors.ErrCodeInvalidInput, "match %d is the round-robin aggregate; open one of its sub-matches", m.Num)
	}
	if bracket.StateOf(m) == bracket.NotReady {
		return errors.New(errors.ErrCodeNotReady, "match %d is waiting for its participants", m.Num)
	}
	return nil
}

// loadProblem fetches the problem markup. Failure degrades to a notice.
func (v *View) loadProblem(ctx context.Context, m bracket.Match) {
	markup, err := v.backend.FetchProblem(ctx, m.Problem, false)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		v.notice = errors.UserMessage(err)
		return
	}
	v.title = ProblemTitle(markup)
	if m.Started() {
		v.problem = markup
	} else {
		v.problem = ""
	}
}

// ID identifies the view in logs.
func (v *View) ID() string { return v.id }

// Updates delivers snapshots as the view changes. Only the latest snapshot
// is kept for a slow reader. The channel is closed by Close.
func (v *View) Updates() <-chan Snapshot { return v.updates }

// Snapshot returns the current state of the view.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Ticking reports whether the elapsed-time ticker is live.
func (v *View) Ticking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ticker != nil
}

func (v *View) snapshotLocked() Snapshot {
	s := Snapshot{
		ViewID:  v.id,
		Match:   v.match,
		State:   bracket.StateOf(v.match),
		Title:   v.title,
		Problem: v.problem,
		Phase:   v.phase,
		Count:   v.count,
		Notice:  v.notice,
		Closed:  v.closed,
	}
	if start, ok := v.match.StartedAt(); ok && s.State == bracket.InProgress {
		s.Elapsed = max(0, v.cfg.clock.Now().Sub(start))
	}
	return s
}

func (v *View) publishLocked() {
	if v.closed {
		return
	}
	s := v.snapshotLocked()
	select {
	case v.updates <- s:
	default:
		select {
		case <-v.updates:
		default:
		}
		select {
		case v.updates <- s:
		default:
		}
	}
}

func (v *View) startTickerLocked() {
	if v.ticker != nil || v.closed {
		return
	}
	t := v.cfg.clock.NewTicker(v.cfg.interval)
	done := make(chan struct{})
	v.ticker, v.tickDone = t, done
	go v.tick(t, done)
}

func (v *View) tick(t Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-t.C():
			v.mu.Lock()
			if v.tickDone != done {
				v.mu.Unlock()
				return
			}
			v.publishLocked()
			v.mu.Unlock()
		}
	}
}

func (v *View) stopTickerLocked() {
	if v.ticker == nil {
		return
	}
	v.ticker.Stop()
	close(v.tickDone)
	v.ticker, v.tickDone = nil, nil
}

// bind returns a context that is also cancelled when the view closes.
func (v *View) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.closing, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (v *View) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// begin marks the view busy for one backend action.
func (v *View) begin() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}
	if v.busy {
		return ErrBusy
	}
	v.busy = true
	v.notice = ""
	return nil
}

// finish applies the outcome of an action unless the view was closed in
// the meantime. apply runs with the lock held.
func (v *View) finish(err error, apply func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = false
	if v.closed {
		return ErrViewClosed
	}
	if err != nil {
		v.notice = errors.UserMessage(err)
		v.publishLocked()
		return err
	}
	if apply != nil {
		apply()
	}
	v.publishLocked()
	return nil
}

func (v *View) setPhase(p Phase) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.phase, v.count = p, 0
}

func (v *View) state() bracket.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return bracket.StateOf(v.match)
}

// Start starts the match: the optional countdown runs first, then the
// backend records the start time, the full problem is revealed and the
// elapsed ticker starts. Closing the view during the countdown aborts it
// and the backend is never asked to start the match.
func (v *View) Start(ctx context.Context) error {
	if st := v.state(); st != bracket.Ready {
		return errors.New(errors.ErrCodeActionRejected, "match is %s, not ready to start", st)
	}
	if err := v.begin(); err != nil {
		return err
	}
	ctx, release := v.bind(ctx)
	defer release()

	cd := NewCountdown(v.cfg.countdown)
	err := cd.Run(ctx, v.cfg.clock, time.Second, func(p Phase, n int) {
		v.mu.Lock()
		v.phase, v.count = p, n
		v.publishLocked()
		v.mu.Unlock()
	})
	if err == nil && v.isClosed() {
		err = ErrViewClosed
	}
	if err != nil {
		v.setPhase(PhaseIdle)
		return v.finish(err, nil)
	}

	num := v.num
	var m bracket.Match
	var markup string
	began := time.Now()
	err = v.backend.StartMatch(ctx, num)
	observability.Workflow().OnAction(ctx, "start", num, time.Since(began), err)
	if err == nil {
		m, err = v.backend.FetchMatch(ctx, num)
	}
	if err == nil {
		markup, err = v.backend.FetchProblem(ctx, m.Problem, false)
	}
	if err != nil {
		v.setPhase(PhaseIdle)
	}
	return v.finish(err, func() {
		v.match = m
		v.problem = markup
		v.title = ProblemTitle(markup)
		v.phase, v.count = cd.Tick(), 0
		if bracket.StateOf(m) == bracket.InProgress {
			v.startTickerLocked()
		}
		v.cfg.logger.Debug("match started", "match", num, "view", v.id)
	})
}

// Complete records that participant (1 or 2) finished. Once both results
// are in the elapsed ticker stops.
func (v *View) Complete(ctx context.Context, participant int) error {
	if st := v.state(); st != bracket.InProgress {
		return errors.New(errors.ErrCodeActionRejected, "match is %s, not in progress", st)
	}
	if err := v.begin(); err != nil {
		return err
	}
	ctx, release := v.bind(ctx)
	defer release()
	num := v.num
	began := time.Now()
	updated, err := v.backend.CompleteMatch(ctx, num, participant)
	observability.Workflow().OnAction(ctx, "complete", num, time.Since(began), err)
	var m bracket.Match
	if err == nil {
		if updated != nil {
			m = *updated
		} else {
			m, err = v.backend.FetchMatch(ctx, num)
		}
	}
	return v.finish(err, func() {
		v.match = m
		if bracket.StateOf(m) != bracket.InProgress {
			v.stopTickerLocked()
		}
		v.cfg.logger.Debug("result recorded", "match", num, "participant", participant, "view", v.id)
	})
}

// Reset clears the start time and results, returning the match to Ready.
// The problem goes back to title-only.
func (v *View) Reset(ctx context.Context) error {
	if st := v.state(); st != bracket.InProgress && st != bracket.Complete {
		return errors.New(errors.ErrCodeActionRejected, "match is %s, nothing to reset", st)
	}
	if err := v.begin(); err != nil {
		return err
	}
	ctx, release := v.bind(ctx)
	defer release()
	num := v.num
	began := time.Now()
	err := v.backend.ResetMatch(ctx, num)
	observability.Workflow().OnAction(ctx, "reset", num, time.Since(began), err)
	var m bracket.Match
	if err == nil {
		m, err = v.backend.FetchMatch(ctx, num)
	}
	return v.finish(err, func() {
		v.match = m
		v.problem = ""
		v.phase, v.count = PhaseIdle, 0
		v.stopTickerLocked()
		v.cfg.logger.Debug("match reset", "match", num, "view", v.id)
	})
}

// Refresh refetches the match, e.g. after another client changed it.
func (v *View) Refresh(ctx context.Context) error {
	if err := v.begin(); err != nil {
		return err
	}
	ctx, release := v.bind(ctx)
	defer release()
	m, err := v.backend.FetchMatch(ctx, v.num)
	return v.finish(err, func() {
		v.match = m
		if bracket.StateOf(m) == bracket.InProgress {
			v.startTickerLocked()
		} else {
			v.stopTickerLocked()
		}
	})
}

// Close stops the ticker, aborts a pending action and closes Updates. It is safe to call more than
// once and from any goroutine.
func (v *View) Close() error {
	v.closeOnce.Do(func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.stopTickerLocked()
		v.closed = true
		v.shutdown()
		close(v.updates)
		v.cfg.logger.Debug("closed match view", "match", v.num, "view", v.id)
	})
	return nil
}
