package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCountdownSequence(t *testing.T) {
	tests := []struct {
		name string
		from int
		want []string
	}{
		{"three", 3, []string{"counting-down(3)", "counting-down(2)", "counting-down(1)", "revealing", "started", "started"}},
		{"one", 1, []string{"counting-down(1)", "revealing", "started"}},
		{"zero", 0, []string{"revealing", "started"}},
		{"negative", -2, []string{"revealing", "started"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCountdown(tt.from)
			if c.Phase() != PhaseIdle {
				t.Fatalf("new countdown is %s", c)
			}
			if err := c.Begin(); err != nil {
				t.Fatal(err)
			}
			var got []string
			for range tt.want {
				got = append(got, c.String())
				c.Tick()
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("step %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCountdownIdleIsFixed(t *testing.T) {
	c := NewCountdown(3)
	if got := c.Tick(); got != PhaseIdle {
		t.Errorf("Tick() on idle = %s", got)
	}
}

func TestCountdownBeginTwice(t *testing.T) {
	c := NewCountdown(3)
	if err := c.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := c.Begin(); !errors.Is(err, ErrCountdownActive) {
		t.Errorf("second Begin() = %v, want ErrCountdownActive", err)
	}
	c.Reset()
	if c.Phase() != PhaseIdle || c.Remaining() != 0 {
		t.Errorf("after Reset: %s", c)
	}
	if err := c.Begin(); err != nil {
		t.Errorf("Begin() after Reset = %v", err)
	}
}

func TestCountdownRun(t *testing.T) {
	clock := newFakeClock()
	c := NewCountdown(2)

	var mu sync.Mutex
	var seen []Phase
	var counts []int
	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background(), clock, time.Second, func(p Phase, n int) {
			mu.Lock()
			seen = append(seen, p)
			counts = append(counts, n)
			mu.Unlock()
		})
	}()

	steps := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(seen)
	}
	waitFor(t, "ticker", func() bool { return clock.Active() == 1 })
	for want := 2; want <= 3; want++ {
		clock.Advance(time.Second)
		waitFor(t, "tick", func() bool { return steps() >= want })
	}

	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if clock.Active() != 0 {
		t.Error("Run() left its ticker running")
	}
	wantPhases := []Phase{PhaseCountingDown, PhaseCountingDown, PhaseRevealing}
	wantCounts := []int{2, 1, 0}
	for i := range wantPhases {
		if seen[i] != wantPhases[i] || counts[i] != wantCounts[i] {
			t.Errorf("step %d = %s(%d), want %s(%d)", i, seen[i], counts[i], wantPhases[i], wantCounts[i])
		}
	}
	if c.Phase() != PhaseRevealing {
		t.Errorf("Run() stopped at %s", c.Phase())
	}
}

func TestCountdownRunCancelled(t *testing.T) {
	clock := newFakeClock()
	c := NewCountdown(3)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, clock, time.Second, nil) }()
	waitFor(t, "ticker", func() bool { return clock.Active() == 1 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("cancelled countdown is %s, want idle", c)
	}
	if clock.Active() != 0 {
		t.Error("cancelled Run() left its ticker running")
	}
}

func TestCountdownRunZero(t *testing.T) {
	clock := newFakeClock()
	c := NewCountdown(0)
	if err := c.Run(context.Background(), clock, time.Second, nil); err != nil {
		t.Fatal(err)
	}
	if c.Phase() != PhaseRevealing {
		t.Errorf("phase = %s", c.Phase())
	}
	if clock.Active() != 0 {
		t.Error("zero countdown should not create a ticker")
	}
}
