// Package backendyoutube plays YouTube items through an embedded player
// script. The script and the per-video player both come up asynchronously, so
// loads are serialized through a gate that keeps only the latest request.
package backendyoutube

import (
	"log/slog"
	"sync"

	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Host is the surface that can inject the player script and create players.
type Host interface {
	// LoadScript injects the player script and calls ready once it is
	// usable. Implementations call ready at most once.
	LoadScript(ready func())

	// CreatePlayer builds a player for the given video and hands it to
	// ready when the player is operational.
	CreatePlayer(videoID string, ready func(Player))
}

// Player is one attached YouTube player.
type Player interface {
	Play()
	Pause()
	TimeMS() int64
	SeekMS(ms int64)
	Rate() float64
	SetRate(rate float64)
	SetMuted(muted bool)

	// Started reports whether playback ever got going. Used to detect
	// blocked autoplay.
	Started() bool

	// Load switches the attached player to another video.
	Load(videoID string)

	Destroy()
}

// Backend adapts a Host to the playback controller.
type Backend struct {
	host     Host
	gate     *playercore.ScriptGate
	autoplay *playercore.AutoplayWatch
	logger   *slog.Logger

	mu     sync.Mutex
	player Player
	gen    int
	muted  bool
}

// New builds a YouTube backend. autoplay may be nil when no watch is wanted.
func New(host Host, autoplay *playercore.AutoplayWatch, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		host:     host,
		gate:     playercore.NewScriptGate(),
		autoplay: autoplay,
		logger:   logger,
	}
}

func (b *Backend) Kind() neko.VideoType {
	return neko.VideoTypeYouTube
}

func (b *Backend) CanHandle(url string) bool {
	return neko.YouTubeVideoID(url) != ""
}

// Load plays the item. Depending on script progress this injects the script,
// queues behind it, creates a player, or reuses the attached one.
func (b *Backend) Load(item neko.VideoItem) {
	switch b.gate.Submit(item) {
	case playercore.ActionInject:
		b.host.LoadScript(b.onScriptReady)
	case playercore.ActionAttach:
		b.attachPending()
	case playercore.ActionLoad:
		b.mu.Lock()
		player := b.player
		b.mu.Unlock()
		if player != nil {
			player.Load(videoID(item))
			b.watchAutoplay(player)
		}
	}
}

func (b *Backend) onScriptReady() {
	b.logger.Debug("player script ready")
	b.attachPending()
}

func (b *Backend) attachPending() {
	item, ok := b.gate.ScriptReady()
	if !ok {
		return
	}

	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	b.host.CreatePlayer(videoID(item), func(player Player) {
		b.mu.Lock()
		// A later Unload or Load supersedes this creation.
		if gen != b.gen {
			b.mu.Unlock()
			player.Destroy()
			return
		}
		b.player = player
		muted := b.muted
		b.mu.Unlock()

		b.gate.Attached()
		player.SetMuted(muted)
		b.watchAutoplay(player)
	})
}

func (b *Backend) watchAutoplay(player Player) {
	if b.autoplay == nil {
		return
	}
	b.autoplay.Start(player.Started, player.Play)
}

// Unload destroys the player but keeps the script warm for the next load.
func (b *Backend) Unload() {
	if b.autoplay != nil {
		b.autoplay.Cancel()
	}

	b.mu.Lock()
	b.gen++
	player := b.player
	b.player = nil
	b.mu.Unlock()

	b.gate.Unload()
	if player != nil {
		player.Destroy()
	}
}

func (b *Backend) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player != nil
}

func (b *Backend) Play() {
	if p := b.attached(); p != nil {
		p.Play()
	}
}

func (b *Backend) Pause() {
	if p := b.attached(); p != nil {
		p.Pause()
	}
}

func (b *Backend) TimeMS() int64 {
	if p := b.attached(); p != nil {
		return p.TimeMS()
	}
	return 0
}

func (b *Backend) SetTimeMS(ms int64) {
	if p := b.attached(); p != nil {
		p.SeekMS(ms)
	}
}

func (b *Backend) Rate() float64 {
	if p := b.attached(); p != nil {
		return p.Rate()
	}
	return 1
}

func (b *Backend) SetRate(rate float64) {
	if p := b.attached(); p != nil {
		p.SetRate(rate)
	}
}

func (b *Backend) SetMuted(muted bool) {
	b.mu.Lock()
	b.muted = muted
	p := b.player
	b.mu.Unlock()
	if p != nil {
		p.SetMuted(muted)
	}
}

func (b *Backend) attached() Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player
}

func videoID(item neko.VideoItem) string {
	if id := neko.YouTubeVideoID(item.URL); id != "" {
		return id
	}
	return item.ID
}
