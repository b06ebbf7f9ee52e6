// Package loop provides the single-threaded event loop the engine runs on
// and the cancellable timer sources it arms for key repeat. All engine
// state transitions happen on the loop goroutine; timers fire as deferred
// callbacks posted back onto it.
package loop

import (
	"sync"
	"time"
)

// TimerSource is an armed-or-idle timer owned by the loop. Update with a
// positive delay (re)arms it, Update(0) disarms it; both are always legal,
// including after Remove. Disarming is idempotent.
type TimerSource interface {
	Update(delay time.Duration) error
	Remove()
}

// Scheduler creates timer sources. The engine takes it as an interface so
// tests can drive time by hand.
type Scheduler interface {
	AddTimer(fn func()) TimerSource
}

// Loop is a minimal single-threaded event loop: posted tasks and expired
// timers run in order on one goroutine.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// New creates a loop. Run must be called for tasks to execute.
func New() *Loop {
	return &Loop{
		tasks: make(chan func(), 256),
		quit:  make(chan struct{}),
	}
}

// Run executes tasks until Stop is called. It blocks; callers usually run
// it on a dedicated goroutine.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.quit:
			// Drain whatever was already queued.
			for {
				select {
				case fn := <-l.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post queues fn to run on the loop goroutine. Posts after Stop are
// dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// Stop terminates Run after draining queued tasks.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
}

// AddTimer implements Scheduler. The callback runs on the loop goroutine.
func (l *Loop) AddTimer(fn func()) TimerSource {
	return &timer{loop: l, fn: fn}
}

// timer posts its callback onto the loop when the armed delay expires.
// A generation counter invalidates in-flight expiries on disarm, closing
// the window where a pending fire could observe state freed by teardown.
type timer struct {
	loop *Loop
	fn   func()

	mu      sync.Mutex
	pending *time.Timer
	gen     uint64
	removed bool
}

func (t *timer) Update(delay time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	if delay <= 0 || t.removed {
		return nil
	}

	gen := t.gen
	t.pending = time.AfterFunc(delay, func() {
		t.loop.Post(func() {
			t.mu.Lock()
			live := t.gen == gen && !t.removed
			t.mu.Unlock()
			if live {
				t.fn()
			}
		})
	})
	return nil
}

func (t *timer) Remove() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.removed = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}
