package playercore

import (
	"sync"
	"time"

	"github.com/mikey-austin/nekotv/internal/adapters/clock"
)

const (
	autoplayFirstWait  = 2 * time.Second
	autoplaySecondWait = 1 * time.Second
)

// Notifier is told when autoplay appears blocked by the playback surface.
// The resume callback retries playback once the user has intervened.
type Notifier interface {
	AutoplayBlocked(resume func())
}

// AutoplayWatch retries playback that a surface silently refused to start.
// After a load it waits, retries once, waits again, and finally escalates to
// the notifier so a human can unblock playback.
type AutoplayWatch struct {
	scheduler clock.Scheduler
	notifier  Notifier

	mu    sync.Mutex
	timer clock.Timer
	gen   int
}

// NewAutoplayWatch builds a watch using the given scheduler. notifier may be
// nil, in which case escalation is dropped.
func NewAutoplayWatch(scheduler clock.Scheduler, notifier Notifier) *AutoplayWatch {
	return &AutoplayWatch{scheduler: scheduler, notifier: notifier}
}

// Start begins watching a fresh load. started reports whether playback got
// going on its own; play retries it. Any previous watch is superseded.
func (w *AutoplayWatch) Start(started func() bool, play func()) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = w.scheduler.AfterFunc(autoplayFirstWait, func() {
		w.firstCheck(gen, started, play)
	})
	w.mu.Unlock()
}

// Cancel stops the current watch, if any.
func (w *AutoplayWatch) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *AutoplayWatch) firstCheck(gen int, started func() bool, play func()) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	if started() {
		return
	}
	play()

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = w.scheduler.AfterFunc(autoplaySecondWait, func() {
		w.secondCheck(gen, started, play)
	})
	w.mu.Unlock()
}

func (w *AutoplayWatch) secondCheck(gen int, started func() bool, play func()) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	if started() {
		return
	}
	if w.notifier != nil {
		w.notifier.AutoplayBlocked(play)
	}
}
