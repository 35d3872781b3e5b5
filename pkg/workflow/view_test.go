package workflow

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/bracket/brackettest"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena/arenatest"
)

func arenaBackend(t *testing.T, clock *fakeClock, matches []bracket.Match) (*arenatest.Backend, *arena.Client) {
	t.Helper()
	backend := arenatest.New(matches)
	backend.Now = clock.Now
	backend.SetProblem("problem-1.md", "<h1>Two Sum</h1><p>Find two numbers.</p>")
	backend.SetProblem("problem-2.md", "<h1>Valid Parentheses</h1><p>Balance them.</p>")
	srv := backend.Start(t)
	client := arena.NewClient(srv.URL, cache.NewNullCache(), time.Hour)
	client.SetBackoff(cache.Backoff{Attempts: 1})
	return backend, client
}

// nextUpdate reads snapshots until one satisfies cond.
func nextUpdate(t *testing.T, v *View, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case s, ok := <-v.Updates():
			if !ok {
				t.Fatalf("updates closed while waiting for %s", what)
			}
			if cond(s) {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func TestViewLifecycle(t *testing.T) {
	clock := newFakeClock()
	_, client := arenaBackend(t, clock, brackettest.Single(4))
	ctx := context.Background()
	matches, err := client.FetchBracket(ctx)
	if err != nil {
		t.Fatal(err)
	}

	v, err := Open(ctx, client, matches[0], WithClock(clock))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Close()

	s := v.Snapshot()
	if s.State != bracket.Ready {
		t.Errorf("state = %s, want Ready", s.State)
	}
	if s.Title != "Two Sum" || s.Problem != "" {
		t.Errorf("before start: title %q, problem %q; want title only", s.Title, s.Problem)
	}
	if v.Ticking() {
		t.Error("ticker running before start")
	}

	if err := v.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s = v.Snapshot()
	if s.State != bracket.InProgress || s.Phase != PhaseStarted {
		t.Errorf("after start: %s / %s", s.State, s.Phase)
	}
	if s.Problem == "" {
		t.Error("problem body not revealed after start")
	}
	if !v.Ticking() || clock.Active() != 1 {
		t.Fatalf("ticking=%v active=%d, want one live ticker", v.Ticking(), clock.Active())
	}

	clock.Advance(5 * time.Second)
	nextUpdate(t, v, "elapsed 5s", func(s Snapshot) bool { return s.Elapsed == 5*time.Second })

	if err := v.Complete(ctx, 1); err != nil {
		t.Fatalf("Complete(1): %v", err)
	}
	if !v.Ticking() {
		t.Error("ticker stopped after a single result")
	}
	clock.Advance(2 * time.Second)
	if err := v.Complete(ctx, 2); err != nil {
		t.Fatalf("Complete(2): %v", err)
	}
	s = v.Snapshot()
	if s.State != bracket.Complete {
		t.Errorf("state = %s, want Complete", s.State)
	}
	if s.Match.Result1 != "0:00:05" || s.Match.Result2 != "0:00:07" {
		t.Errorf("results = %q, %q", s.Match.Result1, s.Match.Result2)
	}
	if v.Ticking() || clock.Active() != 0 {
		t.Error("ticker still live after completion")
	}

	if err := v.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s = v.Snapshot()
	if s.State != bracket.Ready || s.Problem != "" || s.Phase != PhaseIdle {
		t.Errorf("after reset: %s, problem %q, phase %s", s.State, s.Problem, s.Phase)
	}
}

func TestViewOpenNotReady(t *testing.T) {
	stub := &stubBackend{}
	m := bracket.Match{Num: 3, Participant1: bracket.Placeholder("Winner of M1"), Problem: "p.md"}

	_, err := Open(context.Background(), stub, m)
	if !errors.Is(err, errors.ErrCodeNotReady) {
		t.Fatalf("Open() = %v, want NOT_READY", err)
	}
	if n := stub.callCount(); n != 0 {
		t.Errorf("%d backend calls made for a not-ready match", n)
	}

	rr := bracket.Match{Num: 9, Type: bracket.TypeRoundRobin, SubMatches: []int{6, 7, 8}}
	if _, err := Open(context.Background(), stub, rr); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(round-robin) = %v, want INVALID_INPUT", err)
	}
}

func TestViewActionGates(t *testing.T) {
	stub := newStub(readyMatch())
	v, err := Open(context.Background(), stub, readyMatch())
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if err := v.Complete(context.Background(), 1); !errors.Is(err, errors.ErrCodeActionRejected) {
		t.Errorf("Complete on ready match = %v, want ACTION_REJECTED", err)
	}
	if err := v.Reset(context.Background()); !errors.Is(err, errors.ErrCodeActionRejected) {
		t.Errorf("Reset on ready match = %v, want ACTION_REJECTED", err)
	}
}

func TestViewBackendRejection(t *testing.T) {
	stub := newStub(readyMatch())
	stub.startErr = errors.New(errors.ErrCodeActionRejected, "already completed")

	v, err := Open(context.Background(), stub, readyMatch())
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	err = v.Start(context.Background())
	if !errors.Is(err, errors.ErrCodeActionRejected) {
		t.Fatalf("Start() = %v", err)
	}
	s := v.Snapshot()
	if s.Notice != "already completed" {
		t.Errorf("notice = %q", s.Notice)
	}
	if s.State != bracket.Ready || s.Phase != PhaseIdle || v.Ticking() {
		t.Errorf("rejected start changed the view: %s / %s", s.State, s.Phase)
	}
}

func TestViewCloseDropsLateResponse(t *testing.T) {
	clock := newFakeClock()
	m := startedMatch(clock)
	stub := newStub(m)
	stub.block = make(chan struct{})

	v, err := Open(context.Background(), stub, m, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	if clock.Active() != 1 {
		t.Fatalf("active tickers = %d, want 1", clock.Active())
	}

	done := make(chan error, 1)
	go func() { done <- v.Complete(context.Background(), 1) }()
	waitFor(t, "complete call", func() bool { return stub.called("complete") })

	v.Close()
	if clock.Active() != 0 {
		t.Error("Close left the ticker running")
	}
	close(stub.block)

	if err := <-done; !stderrors.Is(err, ErrViewClosed) {
		t.Errorf("late Complete() = %v, want ErrViewClosed", err)
	}
	if s := v.Snapshot(); s.Match.Result1 != "" || !s.Closed {
		t.Errorf("late response mutated the view: %+v", s.Match)
	}
	if _, ok := <-v.Updates(); ok {
		// drain the buffered snapshot; the next receive must see the close
		if _, ok := <-v.Updates(); ok {
			t.Error("Updates not closed")
		}
	}
	if err := v.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestViewBusy(t *testing.T) {
	clock := newFakeClock()
	m := startedMatch(clock)
	stub := newStub(m)
	stub.block = make(chan struct{})

	v, err := Open(context.Background(), stub, m, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	done := make(chan error, 1)
	go func() { done <- v.Complete(context.Background(), 1) }()
	waitFor(t, "complete call", func() bool { return stub.called("complete") })

	if err := v.Complete(context.Background(), 2); !stderrors.Is(err, ErrBusy) {
		t.Errorf("concurrent Complete() = %v, want ErrBusy", err)
	}
	close(stub.block)
	if err := <-done; err != nil {
		t.Errorf("first Complete() = %v", err)
	}
}

func TestViewStartWithCountdown(t *testing.T) {
	clock := newFakeClock()
	stub := newStub(readyMatch())
	stub.now = clock.Now

	v, err := Open(context.Background(), stub, readyMatch(), WithClock(clock), WithCountdown(2))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	done := make(chan error, 1)
	go func() { done <- v.Start(context.Background()) }()

	nextUpdate(t, v, "countdown 2", func(s Snapshot) bool { return s.Phase == PhaseCountingDown && s.Count == 2 })
	if stub.called("start") {
		t.Fatal("backend start called before the countdown finished")
	}
	waitFor(t, "countdown ticker", func() bool { return clock.Active() == 1 })
	clock.Advance(time.Second)
	nextUpdate(t, v, "countdown 1", func(s Snapshot) bool { return s.Count == 1 })
	clock.Advance(time.Second)

	if err := <-done; err != nil {
		t.Fatalf("Start() = %v", err)
	}
	s := v.Snapshot()
	if s.Phase != PhaseStarted || s.State != bracket.InProgress {
		t.Errorf("after countdown: %s / %s", s.Phase, s.State)
	}
	if clock.Active() != 1 {
		t.Errorf("active tickers = %d, want only the elapsed ticker", clock.Active())
	}
}

func TestViewCloseDuringCountdown(t *testing.T) {
	clock := newFakeClock()
	stub := newStub(readyMatch())
	stub.now = clock.Now

	v, err := Open(context.Background(), stub, readyMatch(), WithClock(clock), WithCountdown(2))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- v.Start(context.Background()) }()

	waitFor(t, "countdown ticker", func() bool { return clock.Active() == 1 })
	v.Close()
	clock.Advance(time.Second)
	clock.Advance(time.Second)

	select {
	case err := <-done:
		if !stderrors.Is(err, ErrViewClosed) {
			t.Errorf("Start() = %v, want ErrViewClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after Close")
	}
	if stub.called("start") {
		t.Error("backend start called for a view closed during the countdown")
	}
	waitFor(t, "countdown ticker released", func() bool { return clock.Active() == 0 })
	if s := v.Snapshot(); s.Phase != PhaseIdle || s.State != bracket.Ready {
		t.Errorf("after close: %s / %s", s.Phase, s.State)
	}
}

func TestSessionReplacesView(t *testing.T) {
	clock := newFakeClock()
	m1 := startedMatch(clock)
	m2 := startedMatch(clock)
	m2.Num = 2
	stub := newStub(m1, m2)

	s := NewSession(stub, WithClock(clock))
	defer s.Close()

	v1, err := s.Open(context.Background(), m1)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := s.Open(context.Background(), m2)
	if err != nil {
		t.Fatal(err)
	}
	if !v1.Snapshot().Closed {
		t.Error("previous view not closed")
	}
	if clock.Active() != 1 {
		t.Errorf("active tickers = %d, want 1", clock.Active())
	}
	if s.Current() != v2 {
		t.Error("Current() is not the latest view")
	}

	notReady := bracket.Match{Num: 5}
	if _, err := s.Open(context.Background(), notReady); !errors.Is(err, errors.ErrCodeNotReady) {
		t.Errorf("Open(not ready) = %v", err)
	}
	if s.Current() != nil || clock.Active() != 0 {
		t.Error("failed open should leave the session empty")
	}
}

func readyMatch() bracket.Match {
	return bracket.Match{
		Num:          1,
		Participant1: bracket.Resolved("Ana", "RED"),
		Participant2: bracket.Resolved("Ben", "BLUE"),
		Problem:      "two-sum.md",
	}
}

func startedMatch(clock *fakeClock) bracket.Match {
	m := readyMatch()
	m.StartTime = clock.Now().Format(time.RFC3339Nano)
	return m
}

// stubBackend serves fixed matches and records calls. When block is set,
// CompleteMatch waits for it to close.
type stubBackend struct {
	mu       sync.Mutex
	matches  map[int]bracket.Match
	calls    []string
	startErr error
	block    chan struct{}
	now      func() time.Time
}

func newStub(ms ...bracket.Match) *stubBackend {
	s := &stubBackend{matches: map[int]bracket.Match{}, now: time.Now}
	for _, m := range ms {
		s.matches[m.Num] = m
	}
	return s
}

func (s *stubBackend) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubBackend) called(call string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (s *stubBackend) FetchMatch(_ context.Context, num int) (bracket.Match, error) {
	s.record("fetch")
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[num]
	if !ok {
		return bracket.Match{}, errors.New(errors.ErrCodeMatchNotFound, "match %d", num)
	}
	return m, nil
}

func (s *stubBackend) StartMatch(_ context.Context, num int) error {
	s.record("start")
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.matches[num]
	m.StartTime = s.now().UTC().Format(time.RFC3339Nano)
	s.matches[num] = m
	return nil
}

func (s *stubBackend) CompleteMatch(_ context.Context, num, participant int) (*bracket.Match, error) {
	s.record("complete")
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.matches[num]
	if participant == 1 {
		m.Result1 = "0:00:10"
	} else {
		m.Result2 = "0:00:12"
	}
	s.matches[num] = m
	return &m, nil
}

func (s *stubBackend) ResetMatch(_ context.Context, num int) error {
	s.record("reset")
	return nil
}

func (s *stubBackend) FetchProblem(_ context.Context, id string, _ bool) (string, error) {
	s.record("problem")
	return "<h1>" + id + "</h1><p>body</p>", nil
}
