// Package backendiframe embeds arbitrary sources in a plain frame. The frame
// offers no playback control, so time is synthesized from the wall clock and
// transport commands are accepted and ignored.
package backendiframe

import (
	"sync"

	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Surface is the embedding frame.
type Surface interface {
	// Attach points the frame at src and calls loaded once the embed is
	// up.
	Attach(src, title string, loaded func())

	// SetSource swaps the embedded source without tearing the frame down.
	SetSource(src string)

	Detach()
}

// Backend adapts a Surface to the playback controller.
type Backend struct {
	surface Surface
	clock   *playercore.WallClock

	mu       sync.Mutex
	attached bool
	loaded   bool
}

// New builds an iframe backend. wallClock must not be nil.
func New(surface Surface, wallClock *playercore.WallClock) *Backend {
	return &Backend{surface: surface, clock: wallClock}
}

func (b *Backend) Kind() neko.VideoType {
	return neko.VideoTypeIframe
}

// CanHandle always reports false: the iframe backend is the fallback of last
// resort, picked by type rather than claimed by URL.
func (b *Backend) CanHandle(url string) bool {
	return false
}

func (b *Backend) Load(item neko.VideoItem) {
	b.clock.SetTimeMS(0)

	// Iframe items carry the embed source in the ID field, the URL being
	// the page the item was shared from.
	src := item.ID
	if src == "" {
		src = item.URL
	}

	b.mu.Lock()
	wasAttached := b.attached
	b.attached = true
	b.loaded = false
	b.mu.Unlock()

	if wasAttached {
		b.surface.SetSource(src)
		b.mu.Lock()
		b.loaded = true
		b.mu.Unlock()
		return
	}
	b.surface.Attach(src, item.Title, func() {
		b.mu.Lock()
		b.loaded = true
		b.mu.Unlock()
	})
}

func (b *Backend) Unload() {
	b.mu.Lock()
	wasAttached := b.attached
	b.attached = false
	b.loaded = false
	b.mu.Unlock()

	b.clock.Reset()
	if wasAttached {
		b.surface.Detach()
	}
}

func (b *Backend) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached && b.loaded
}

// Play is accepted and ignored; the frame plays on its own terms.
func (b *Backend) Play() {}

// Pause is accepted and ignored.
func (b *Backend) Pause() {}

func (b *Backend) TimeMS() int64 {
	return b.clock.TimeMS()
}

func (b *Backend) SetTimeMS(ms int64) {
	b.clock.SetTimeMS(ms)
}

func (b *Backend) Rate() float64 {
	return 1
}

// SetRate is a no-op; the frame has no rate control.
func (b *Backend) SetRate(rate float64) {}

// SetMuted is a no-op; embedded frames control their own audio.
func (b *Backend) SetMuted(muted bool) {}
