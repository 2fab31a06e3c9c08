package playercore

import (
	"sync"
	"time"
)

// WallClock synthesizes a playback position for surfaces that cannot report
// one, such as iframes and live streams. Setting a position anchors it to the
// wall clock; reading it extrapolates from the anchor.
type WallClock struct {
	mu   sync.Mutex
	now  func() time.Time
	base time.Time
	set  bool
}

// NewWallClock creates a clock reading time through now, which defaults to
// time.Now when nil.
func NewWallClock(now func() time.Time) *WallClock {
	if now == nil {
		now = time.Now
	}
	return &WallClock{now: now}
}

// SetTimeMS anchors the clock so that TimeMS reads ms right now.
func (w *WallClock) SetTimeMS(ms int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.base = w.now().Add(-time.Duration(ms) * time.Millisecond)
	w.set = true
}

// TimeMS returns milliseconds elapsed since the anchor, or 0 when unset.
func (w *WallClock) TimeMS() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.set {
		return 0
	}
	return w.now().Sub(w.base).Milliseconds()
}

// Reset clears the anchor.
func (w *WallClock) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.base = time.Time{}
	w.set = false
}
