// Package backendtwitch plays Twitch channels through an embedded player
// script. Twitch streams are live: the reported position is synthesized from
// the wall clock and the playback rate is pinned to normal speed.
package backendtwitch

import (
	"log/slog"
	"sync"

	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Host injects the Twitch player script and creates channel players.
type Host interface {
	LoadScript(ready func())
	CreatePlayer(channel string, ready func(Player))
}

// Player is one attached Twitch player.
type Player interface {
	Play()
	Pause()
	Paused() bool
	SetMuted(muted bool)

	// Load switches the attached player to another channel.
	Load(channel string)

	Destroy()
}

// Backend adapts a Host to the playback controller.
type Backend struct {
	host     Host
	gate     *playercore.ScriptGate
	clock    *playercore.WallClock
	autoplay *playercore.AutoplayWatch
	logger   *slog.Logger

	mu     sync.Mutex
	player Player
	gen    int
	muted  bool
}

// New builds a Twitch backend. wallClock must not be nil. autoplay may be nil
// when no watch is wanted.
func New(host Host, wallClock *playercore.WallClock, autoplay *playercore.AutoplayWatch, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		host:     host,
		gate:     playercore.NewScriptGate(),
		clock:    wallClock,
		autoplay: autoplay,
		logger:   logger,
	}
}

func (b *Backend) Kind() neko.VideoType {
	return neko.VideoTypeTwitch
}

func (b *Backend) CanHandle(url string) bool {
	return neko.TwitchChannel(url) != ""
}

func (b *Backend) Load(item neko.VideoItem) {
	b.clock.SetTimeMS(0)
	switch b.gate.Submit(item) {
	case playercore.ActionInject:
		b.host.LoadScript(b.attachPending)
	case playercore.ActionAttach:
		b.attachPending()
	case playercore.ActionLoad:
		b.mu.Lock()
		player := b.player
		b.mu.Unlock()
		if player != nil {
			player.Load(channel(item))
			b.watchAutoplay(player)
		}
	}
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

	b.host.CreatePlayer(channel(item), func(player Player) {
		b.mu.Lock()
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

// watchAutoplay arms the autoplay watch for a freshly loaded channel. The
// player has no started signal of its own, so not-paused stands in for it.
func (b *Backend) watchAutoplay(player Player) {
	if b.autoplay == nil {
		return
	}
	b.autoplay.Start(func() bool { return !player.Paused() }, player.Play)
}

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
	b.clock.Reset()
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

// TimeMS reads the synthesized position. The stream itself cannot seek, so
// the wall clock stands in for all position reporting.
func (b *Backend) TimeMS() int64 {
	return b.clock.TimeMS()
}

// SetTimeMS re-anchors the synthesized position. The live stream is left
// alone.
func (b *Backend) SetTimeMS(ms int64) {
	b.clock.SetTimeMS(ms)
}

// Rate is pinned to 1; live playback has no rate control.
func (b *Backend) Rate() float64 {
	return 1
}

// SetRate is a no-op on live streams.
func (b *Backend) SetRate(rate float64) {}

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

func channel(item neko.VideoItem) string {
	if ch := neko.TwitchChannel(item.URL); ch != "" {
		return ch
	}
	return item.ID
}
