package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsBoundedTicks(t *testing.T) {
	t.Parallel()

	ticks := make(chan time.Time, 16)
	s := NewIntervalScheduler(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(at time.Time) { ticks <- at }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// One immediate run plus at least two ticks.
	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never arrived", i)
		}
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// Drain anything in flight, then confirm the loop is gone.
	for {
		select {
		case <-ticks:
			continue
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}

func TestIntervalSchedulerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Hour)
	ctx := context.Background()

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
