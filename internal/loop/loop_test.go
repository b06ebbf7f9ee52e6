package loop

import (
	"sync"
	"testing"
	"time"
)

func TestLoopRunsPostedTasks(t *testing.T) {
	l := New()
	done := make(chan struct{})
	go l.Run()

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			if i == 3 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not run")
	}
	l.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestLoopTimerFires(t *testing.T) {
	l := New()
	go l.Run()
	defer l.Stop()

	fired := make(chan struct{})
	src := l.AddTimer(func() { close(fired) })
	if err := src.Update(5 * time.Millisecond); err != nil {
		t.Fatalf("Update error = %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoopTimerDisarm(t *testing.T) {
	l := New()
	go l.Run()
	defer l.Stop()

	fired := make(chan struct{}, 1)
	src := l.AddTimer(func() { fired <- struct{}{} })
	_ = src.Update(10 * time.Millisecond)
	_ = src.Update(0) // disarm
	_ = src.Update(0) // idempotent

	select {
	case <-fired:
		t.Fatal("disarmed timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoopTimerRemoveIsFinal(t *testing.T) {
	l := New()
	go l.Run()
	defer l.Stop()

	fired := make(chan struct{}, 1)
	src := l.AddTimer(func() { fired <- struct{}{} })
	src.Remove()
	_ = src.Update(time.Millisecond) // legal but inert after Remove

	select {
	case <-fired:
		t.Fatal("removed timer fired")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestManualSchedulerFiresInDeadlineOrder(t *testing.T) {
	m := NewManualScheduler()
	var order []string

	a := m.AddTimer(func() { order = append(order, "a") })
	b := m.AddTimer(func() { order = append(order, "b") })
	_ = a.Update(20 * time.Millisecond)
	_ = b.Update(10 * time.Millisecond)

	m.Advance(30 * time.Millisecond)
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("order = %v, want [b a]", order)
	}
}

func TestManualSchedulerRearmWithinAdvance(t *testing.T) {
	m := NewManualScheduler()
	var fires int
	var src TimerSource
	src = m.AddTimer(func() {
		fires++
		if fires < 3 {
			_ = src.Update(10 * time.Millisecond)
		}
	})
	_ = src.Update(10 * time.Millisecond)

	m.Advance(35 * time.Millisecond)
	if fires != 3 {
		t.Errorf("fires = %d, want 3", fires)
	}
	if m.Now() != 35*time.Millisecond {
		t.Errorf("Now = %v, want 35ms", m.Now())
	}
}

func TestManualSchedulerDisarmPreventsExpiry(t *testing.T) {
	m := NewManualScheduler()
	var fires int
	src := m.AddTimer(func() { fires++ })
	_ = src.Update(10 * time.Millisecond)

	m.Advance(5 * time.Millisecond)
	_ = src.Update(0)
	m.Advance(20 * time.Millisecond)

	if fires != 0 {
		t.Errorf("fires = %d, want 0 after disarm", fires)
	}
}
