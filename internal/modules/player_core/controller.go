package playercore

import (
	"log/slog"
	"sync"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Controller owns the playlist and routes playback through the backend that
// matches the current item. At most one backend is attached at a time; every
// switch unloads the previous backend before the next one loads.
type Controller struct {
	mu       sync.Mutex
	playlist *Playlist
	backends map[neko.VideoType]Backend
	active   Backend
	paused   bool
	logger   *slog.Logger
}

// NewController builds a controller over the given backends. The map is keyed
// by the video type each backend primarily handles.
func NewController(backends map[neko.VideoType]Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		playlist: NewPlaylist(),
		backends: backends,
		logger:   logger,
	}
}

// Playlist exposes the underlying playlist for read-mostly callers such as
// state publishers.
func (c *Controller) Playlist() *Playlist {
	return c.playlist
}

// Current returns the item at the playlist position, if any.
func (c *Controller) Current() (neko.VideoItem, bool) {
	return c.playlist.Current()
}

// IsEmpty reports whether the playlist holds no items.
func (c *Controller) IsEmpty() bool {
	return c.playlist.Length() == 0
}

// Count returns the playlist length.
func (c *Controller) Count() int {
	return c.playlist.Length()
}

// Pos returns the playlist position.
func (c *Controller) Pos() int {
	return c.playlist.Pos()
}

// ActiveKind returns the type of the attached backend, or false when none.
func (c *Controller) ActiveKind() (neko.VideoType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0, false
	}
	return c.active.Kind(), true
}

// SetItems replaces the playlist. Playback reloads only when the current
// item's URL actually changed; a snapshot that lands on the same URL leaves
// the running player alone. An empty snapshot stops playback.
func (c *Controller) SetItems(items []neko.VideoItem, pos int) {
	prev, hadPrev := c.playlist.Current()
	c.playlist.SetItems(items)
	c.playlist.SetPos(pos)
	c.reloadIfChanged(prev, hadPrev)
}

// AddItem inserts an item. When the list was empty this is the first item, so
// it starts playing.
func (c *Controller) AddItem(item neko.VideoItem, atEnd bool) {
	prev, hadPrev := c.playlist.Current()
	c.playlist.AddItem(item, atEnd)
	c.reloadIfChanged(prev, hadPrev)
}

// RemoveItem removes the item with the given URL. Removing the playing item
// switches to whatever lands at the position; emptying the list stops
// playback.
func (c *Controller) RemoveItem(url string) {
	i := c.playlist.FindIndex(func(it neko.VideoItem) bool { return it.URL == url })
	if i < 0 {
		return
	}
	prev, hadPrev := c.playlist.Current()
	c.playlist.RemoveItem(i)
	c.reloadIfChanged(prev, hadPrev)
}

// SkipItem advances past the item with the given URL, provided it is the one
// currently playing. A stale skip for some other URL is ignored.
func (c *Controller) SkipItem(url string) {
	cur, ok := c.playlist.Current()
	if !ok || cur.URL != url {
		return
	}
	prev, hadPrev := cur, true
	c.playlist.Skip()
	c.reloadIfChanged(prev, hadPrev)
}

// PlayItem jumps the position to i and loads whatever is there. The load is
// unconditional; jumping to the item already playing restarts it.
func (c *Controller) PlayItem(i int) {
	c.playlist.SetPos(i)
	cur, ok := c.playlist.Current()
	if !ok {
		c.Stop()
		return
	}
	c.loadItem(cur)
}

// SetNextItem moves the item at pos to just after the current one. The
// current item never changes, so playback is untouched.
func (c *Controller) SetNextItem(pos int) {
	c.playlist.SetNextItem(pos)
}

// ClearItems empties the playlist and stops playback.
func (c *Controller) ClearItems() {
	c.playlist.Clear()
	c.Stop()
}

// Stop unloads the active backend and detaches it.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.Unload()
		c.active = nil
	}
}

// Reload forces the current item back through backend selection and load.
func (c *Controller) Reload() {
	cur, ok := c.playlist.Current()
	if !ok {
		c.Stop()
		return
	}
	c.loadItem(cur)
}

// Play starts playback, if a backend is attached and ready.
func (c *Controller) Play() {
	if b := c.ready(); b != nil {
		b.Play()
		c.setPaused(false)
	}
}

// Pause pauses playback, if a backend is attached and ready.
func (c *Controller) Pause() {
	if b := c.ready(); b != nil {
		b.Pause()
		c.setPaused(true)
	}
}

// Paused reports whether playback was last told to pause. It also reports
// true when nothing is attached.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused || c.active == nil
}

func (c *Controller) setPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// TimeMS returns the playback position, or 0 when nothing is ready.
func (c *Controller) TimeMS() int64 {
	if b := c.ready(); b != nil {
		return b.TimeMS()
	}
	return 0
}

// SetTimeMS seeks, if a backend is attached and ready.
func (c *Controller) SetTimeMS(ms int64) {
	if b := c.ready(); b != nil {
		b.SetTimeMS(ms)
	}
}

// Rate returns the playback rate, or 1 when nothing is ready.
func (c *Controller) Rate() float64 {
	if b := c.ready(); b != nil {
		return b.Rate()
	}
	return 1
}

// SetRate sets the playback rate, if a backend is attached and ready.
func (c *Controller) SetRate(rate float64) {
	if b := c.ready(); b != nil {
		b.SetRate(rate)
	}
}

// SetMuted forwards the mute flag to the attached backend.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	b := c.active
	c.mu.Unlock()
	if b != nil {
		b.SetMuted(muted)
	}
}

func (c *Controller) ready() Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || !c.active.IsReady() {
		return nil
	}
	return c.active
}

// reloadIfChanged compares the current item's identity against what was
// playing before a playlist edit and reloads only on a real change. A
// same-URL current item still loads when no backend is attached, so a
// snapshot landing on the item that was playing before a stop resumes it.
func (c *Controller) reloadIfChanged(prev neko.VideoItem, hadPrev bool) {
	cur, ok := c.playlist.Current()
	if !ok {
		if hadPrev {
			c.Stop()
		}
		return
	}
	if hadPrev && cur.URL == prev.URL && c.attached() {
		return
	}
	c.loadItem(cur)
}

func (c *Controller) attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Controller) loadItem(item neko.VideoItem) {
	backend := c.selectBackend(item)
	if backend == nil {
		c.logger.Warn("no backend for item", "url", item.URL, "type", item.Type.String())
		c.Stop()
		return
	}

	c.mu.Lock()
	if c.active != nil && c.active != backend {
		c.active.Unload()
	}
	c.active = backend
	c.paused = false
	c.mu.Unlock()

	c.logger.Debug("loading item", "url", item.URL, "backend", backend.Kind().String())
	backend.Load(item)
}

// selectBackend picks the backend registered for the item's type, falling
// back to any backend that claims the URL when the type is unregistered.
func (c *Controller) selectBackend(item neko.VideoItem) Backend {
	if b, ok := c.backends[item.Type]; ok {
		return b
	}
	for _, b := range c.backends {
		if b.CanHandle(item.URL) {
			return b
		}
	}
	if b, ok := c.backends[neko.VideoTypeIframe]; ok {
		return b
	}
	return nil
}
