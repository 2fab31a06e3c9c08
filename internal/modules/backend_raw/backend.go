// Package backendraw plays direct media URLs through a local playback
// surface such as GStreamer, VLC or Kodi. The same backend can be registered
// for other source families when the surface can fetch them itself.
package backendraw

import (
	"log/slog"
	"sync"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Media is a local playback surface. Implementations talk to one concrete
// player process.
type Media interface {
	// Play starts the URL from the given position, replacing whatever was
	// playing.
	Play(url string, positionMS int64) error
	Pause() error
	Resume() error
	Stop() error
	Seek(positionMS int64) error

	// SetRate sets the playback speed. Surfaces without rate control
	// return an error.
	SetRate(rate float64) error

	SetMute(mute bool) error

	// Position reports the current position and duration in
	// milliseconds. ok is false when the surface cannot say.
	Position() (positionMS, durationMS int64, ok bool)
}

// Backend adapts a Media surface to the playback controller.
type Backend struct {
	kind   neko.VideoType
	media  Media
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	rate   float64
}

// New builds a backend over media, registered for the given source kind.
// Registering a raw surface under another kind lets a capable player fetch,
// say, YouTube URLs directly.
func New(kind neko.VideoType, media Media, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{kind: kind, media: media, logger: logger, rate: 1}
}

func (b *Backend) Kind() neko.VideoType {
	return b.kind
}

func (b *Backend) CanHandle(url string) bool {
	return neko.DetectType(url) == b.kind
}

func (b *Backend) Load(item neko.VideoItem) {
	if err := b.media.Play(item.URL, 0); err != nil {
		b.logger.Error("play failed", "url", item.URL, "error", err)
		b.setLoaded(false)
		return
	}
	b.mu.Lock()
	b.loaded = true
	b.rate = 1
	b.mu.Unlock()
}

func (b *Backend) Unload() {
	if err := b.media.Stop(); err != nil {
		b.logger.Warn("stop failed", "error", err)
	}
	b.setLoaded(false)
}

func (b *Backend) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

func (b *Backend) Play() {
	if err := b.media.Resume(); err != nil {
		b.logger.Warn("resume failed", "error", err)
	}
}

func (b *Backend) Pause() {
	if err := b.media.Pause(); err != nil {
		b.logger.Warn("pause failed", "error", err)
	}
}

func (b *Backend) TimeMS() int64 {
	pos, _, ok := b.media.Position()
	if !ok {
		return 0
	}
	return pos
}

func (b *Backend) SetTimeMS(ms int64) {
	if err := b.media.Seek(ms); err != nil {
		b.logger.Warn("seek failed", "position_ms", ms, "error", err)
	}
}

func (b *Backend) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rate
}

func (b *Backend) SetRate(rate float64) {
	if err := b.media.SetRate(rate); err != nil {
		b.logger.Warn("rate change failed", "rate", rate, "error", err)
		return
	}
	b.mu.Lock()
	b.rate = rate
	b.mu.Unlock()
}

func (b *Backend) SetMuted(muted bool) {
	if err := b.media.SetMute(muted); err != nil {
		b.logger.Warn("mute failed", "error", err)
	}
}

// DurationMS reports the surface's idea of the media duration, when known.
func (b *Backend) DurationMS() (int64, bool) {
	_, dur, ok := b.media.Position()
	if !ok || dur <= 0 {
		return 0, false
	}
	return dur, true
}

func (b *Backend) setLoaded(loaded bool) {
	b.mu.Lock()
	b.loaded = loaded
	b.mu.Unlock()
}
