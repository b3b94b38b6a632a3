package countdown

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Watcher drives a Machine with wall-clock ticks: one sample immediately on
// start, then samples aligned to whole-second boundaries so the displayed
// countdown does not drift. When auto-trigger is enabled the onReady callback
// is invoked at most once per target; callback failures are logged and never
// stop the loop.
type Watcher struct {
	clock       clockwork.Clock
	autoTrigger bool
	onReady     func(target time.Time)

	mu      sync.Mutex
	machine *Machine
	latest  Snapshot

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher returns a Watcher over target/tz. onReady may be nil; it is only
// invoked when autoTrigger is true.
func NewWatcher(clock clockwork.Clock, target *time.Time, tz string, autoTrigger bool, onReady func(time.Time)) *Watcher {
	return &Watcher{
		clock:       clock,
		autoTrigger: autoTrigger,
		onReady:     onReady,
		machine:     NewMachine(target, tz),
		kick:        make(chan struct{}, 1),
	}
}

// Start launches the sampling loop. The loop exits when ctx is cancelled,
// Stop is called, or the target is cleared.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop cancels the sampling loop and waits for it to release its timer.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Retarget replaces the countdown target, samples the new state immediately,
// and wakes the loop so its timer is realigned. A nil target stops sampling
// entirely.
func (w *Watcher) Retarget(target *time.Time, tz string) {
	w.mu.Lock()
	w.machine.SetTarget(target, tz)
	w.mu.Unlock()
	w.sample(w.clock.Now())
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns the most recent sample.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	w.sample(w.clock.Now())
	for {
		if !w.active() {
			return
		}
		now := w.clock.Now()
		next := now.Truncate(time.Second).Add(time.Second)
		timer := w.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			stopAndDrainTimer(timer)
			return
		case <-w.kick:
			stopAndDrainTimer(timer)
			w.sample(w.clock.Now())
		case <-timer.Chan():
			w.sample(w.clock.Now())
		}
	}
}

func (w *Watcher) active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Target() != nil
}

func (w *Watcher) sample(now time.Time) {
	w.mu.Lock()
	snap := w.machine.Tick(now)
	w.latest = snap
	var target time.Time
	if t := w.machine.Target(); t != nil {
		target = *t
	}
	w.mu.Unlock()

	if snap.FireReady && w.autoTrigger && w.onReady != nil {
		go w.invokeReady(target)
	}
}

// invokeReady runs the callback on its own goroutine so a slow or failing
// trigger cannot stall the countdown. Panics are recovered and logged.
func (w *Watcher) invokeReady(target time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("countdown ready callback failed",
				"target", target,
				"panic", rec)
		}
	}()
	w.onReady(target)
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired,
// per the time.Timer.Stop documentation, so no tick leaks into the next select.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
