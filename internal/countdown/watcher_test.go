package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestWatcher_TicksTowardTarget(t *testing.T) {
	start := time.Date(2026, 2, 24, 9, 59, 57, 0, time.UTC)
	target := start.Add(3 * time.Second)
	clock := clockwork.NewFakeClockAt(start)

	w := NewWatcher(clock, &target, "UTC", false, nil)
	w.Start(context.Background())
	defer w.Stop()

	clock.BlockUntil(1)
	if snap := w.Snapshot(); snap.TimeLeft.Seconds != 3 || snap.Ready {
		t.Fatalf("initial snapshot: %+v", snap)
	}

	clock.Advance(time.Second)
	clock.BlockUntil(1)
	if snap := w.Snapshot(); snap.TimeLeft.Seconds != 2 {
		t.Fatalf("after 1s: %+v", snap)
	}

	clock.Advance(time.Second)
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	clock.BlockUntil(1)
	snap := w.Snapshot()
	if !snap.Ready || snap.Countdown != ReadyMarker || snap.TimeLeft.TotalMs != 0 {
		t.Fatalf("at target: %+v", snap)
	}
}

func TestWatcher_AutoTriggerFiresExactlyOnce(t *testing.T) {
	start := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	target := start.Add(2 * time.Second)
	clock := clockwork.NewFakeClockAt(start)

	fired := make(chan time.Time, 8)
	w := NewWatcher(clock, &target, "UTC", true, func(tt time.Time) {
		fired <- tt
	})
	w.Start(context.Background())
	defer w.Stop()

	clock.BlockUntil(1)
	for i := 0; i < 6; i++ {
		clock.Advance(time.Second)
		clock.BlockUntil(1)
	}

	select {
	case got := <-fired:
		if !got.Equal(target) {
			t.Errorf("callback target = %v, want %v", got, target)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ready callback never fired")
	}

	// Keep sampling well past readiness: no second invocation.
	for i := 0; i < 4; i++ {
		clock.Advance(time.Second)
		clock.BlockUntil(1)
	}
	select {
	case <-fired:
		t.Fatal("ready callback fired more than once")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_CallbackPanicDoesNotStopLoop(t *testing.T) {
	start := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	target := start.Add(time.Second)
	clock := clockwork.NewFakeClockAt(start)

	w := NewWatcher(clock, &target, "UTC", true, func(time.Time) {
		panic("trigger endpoint unreachable")
	})
	w.Start(context.Background())
	defer w.Stop()

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	clock.BlockUntil(1)

	if snap := w.Snapshot(); !snap.Ready {
		t.Errorf("loop stopped after callback panic: %+v", snap)
	}
}

func TestWatcher_InertWithoutTarget(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC))
	w := NewWatcher(clock, nil, "UTC", true, func(time.Time) {
		t.Error("callback fired without a target")
	})
	w.Start(context.Background())
	w.Stop()

	if snap := w.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("expected inert snapshot, got %+v", snap)
	}
}

func TestWatcher_RetargetNilStopsSampling(t *testing.T) {
	start := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	target := start.Add(time.Minute)
	clock := clockwork.NewFakeClockAt(start)

	w := NewWatcher(clock, &target, "UTC", false, nil)
	w.Start(context.Background())
	clock.BlockUntil(1)

	w.Retarget(nil, "")
	// Stop waits for the loop to exit; the cleared target must have already
	// released the timer, so this returns promptly.
	w.Stop()

	if snap := w.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("expected inert snapshot after clearing target, got %+v", snap)
	}
}
