package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manual clock for tests. Advance fires due timers in order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	fake    *Fake
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

// NewFake creates a fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NowUnix returns the fake current unix seconds.
func (f *Fake) NowUnix() int64 {
	return f.Now().Unix()
}

// AfterFunc registers a callback due after d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	timer := &fakeTimer{fake: f, when: f.now.Add(d), f: fn}
	f.timers = append(f.timers, timer)
	return timer
}

// Advance moves the clock forward, firing due timers in time order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	deadline := f.now

	due := make([]*fakeTimer, 0)
	for _, timer := range f.timers {
		if !timer.stopped && !timer.fired && !timer.when.After(deadline) {
			timer.fired = true
			due = append(due, timer)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].when.Before(due[j].when) })
	f.mu.Unlock()

	for _, timer := range due {
		timer.f()
	}
}

// Stop cancels the timer if it has not fired.
func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
