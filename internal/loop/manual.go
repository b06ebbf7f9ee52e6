package loop

import (
	"sort"
	"time"
)

// ManualScheduler is a Scheduler driven by explicit Advance calls, for
// deterministic timer tests without a running loop.
type ManualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AddTimer implements Scheduler.
func (m *ManualScheduler) AddTimer(fn func()) TimerSource {
	t := &manualTimer{sched: m, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Now returns the scheduler's current clock.
func (m *ManualScheduler) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward, firing due timers in deadline order.
// Callbacks may re-arm their timer; a deadline set inside a callback is
// honored within the same Advance when it falls inside the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.deadline
		next.armed = false
		next.fn()
	}
	m.now = target
}

func (m *ManualScheduler) nextDue(limit time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if t.armed && !t.removed && t.deadline <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	return due[0]
}

type manualTimer struct {
	sched    *ManualScheduler
	fn       func()
	deadline time.Duration
	armed    bool
	removed  bool
}

func (t *manualTimer) Update(delay time.Duration) error {
	if delay <= 0 || t.removed {
		t.armed = false
		return nil
	}
	t.deadline = t.sched.now + delay
	t.armed = true
	return nil
}

func (t *manualTimer) Remove() {
	t.armed = false
	t.removed = true
}
