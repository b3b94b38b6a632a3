// Package countdown computes the time remaining until a scheduled publication
// instant and drives the live countdown shown to viewers. The pure state
// machine lives in Machine; Watcher ticks it against a clock.
package countdown

import (
	"fmt"
	"time"

	"github.com/kreyolab/formations/internal/timezone"
)

// ReadyMarker replaces the countdown string once the target instant has passed.
const ReadyMarker = "ready"

const (
	msPerDay    = 86_400_000
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1_000
)

// TimeLeft is the remaining duration decomposed for display, clamped to zero.
type TimeLeft struct {
	Days    int   `json:"days"`
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
	Seconds int   `json:"seconds"`
	TotalMs int64 `json:"total_ms"`
}

// Compute returns the clamped remaining duration from now to target,
// decomposed as days, then hours-of-day, minutes-of-hour, seconds-of-minute.
// A nil target yields the zero value.
func Compute(target *time.Time, now time.Time) TimeLeft {
	if target == nil {
		return TimeLeft{}
	}
	diff := target.Sub(now).Milliseconds()
	if diff < 0 {
		diff = 0
	}
	return TimeLeft{
		Days:    int(diff / msPerDay),
		Hours:   int(diff % msPerDay / msPerHour),
		Minutes: int(diff % msPerHour / msPerMinute),
		Seconds: int(diff % msPerMinute / msPerSecond),
		TotalMs: diff,
	}
}

// IsReady reports whether the target instant has been reached.
func IsReady(target *time.Time, now time.Time) bool {
	return target != nil && !now.Before(*target)
}

// Snapshot is the renderable view of one tick.
type Snapshot struct {
	TimeLeft TimeLeft
	Ready    bool
	// FireReady is true on exactly one tick per distinct target: the first
	// tick at which the target was reached.
	FireReady bool
	// Countdown holds zero-padded dd:hh:mm:ss blocks, or ReadyMarker once ready.
	Countdown    string
	LocalDisplay string
	UTCDisplay   string
}

// Machine tracks a countdown target and guarantees the at-most-once ready
// notification contract. Not safe for concurrent use; Watcher serializes access.
type Machine struct {
	target           *time.Time
	tz               string
	readyNotifiedFor *time.Time
}

// NewMachine returns a Machine counting toward target as displayed in tz.
// A nil target means no active countdown.
func NewMachine(target *time.Time, tz string) *Machine {
	m := &Machine{}
	m.SetTarget(target, tz)
	return m
}

// SetTarget replaces the countdown target. Setting a new target (or clearing
// it) resets ready-notification eligibility; re-setting the same instant does
// not, so a re-rendered view cannot re-fire the notification.
func (m *Machine) SetTarget(target *time.Time, tz string) {
	if target == nil {
		m.target = nil
		m.tz = tz
		m.readyNotifiedFor = nil
		return
	}
	if m.target == nil || !m.target.Equal(*target) {
		m.readyNotifiedFor = nil
	}
	t := target.UTC()
	m.target = &t
	m.tz = tz
}

// Target returns the current target instant, or nil when inactive.
func (m *Machine) Target() *time.Time {
	return m.target
}

// Tick advances the machine to now and returns the view for rendering.
// Without a target the snapshot is inert: zero time left, empty strings.
func (m *Machine) Tick(now time.Time) Snapshot {
	if m.target == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		TimeLeft: Compute(m.target, now),
		Ready:    IsReady(m.target, now),
	}
	if snap.Ready {
		snap.Countdown = ReadyMarker
		if m.readyNotifiedFor == nil || !m.readyNotifiedFor.Equal(*m.target) {
			snap.FireReady = true
			t := *m.target
			m.readyNotifiedFor = &t
		}
	} else {
		snap.Countdown = FormatBlocks(snap.TimeLeft)
	}
	utc := m.target.Format(time.RFC3339)
	snap.LocalDisplay = timezone.FormatForDisplay(utc, m.tz, false)
	snap.UTCDisplay = timezone.FormatForDisplay(utc, "UTC", false)
	return snap
}

// FormatBlocks renders tl as zero-padded two-digit blocks, days first.
func FormatBlocks(tl TimeLeft) string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", tl.Days, tl.Hours, tl.Minutes, tl.Seconds)
}
