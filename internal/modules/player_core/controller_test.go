package playercore

import (
	"strings"
	"testing"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// fakeBackend records calls so tests can assert routing and readiness.
type fakeBackend struct {
	kind    neko.VideoType
	handles string
	ready   bool
	loaded  []string
	unloads int
	plays   int
	pauses  int
	timeMS  int64
	seeks   []int64
	rate    float64
	rates   []float64
	muted   bool
}

func newFakeBackend(kind neko.VideoType) *fakeBackend {
	return &fakeBackend{kind: kind, rate: 1}
}

func (f *fakeBackend) Kind() neko.VideoType { return f.kind }
func (f *fakeBackend) CanHandle(url string) bool {
	return f.handles != "" && strings.Contains(url, f.handles)
}
func (f *fakeBackend) Load(item neko.VideoItem) {
	f.loaded = append(f.loaded, item.URL)
	f.ready = true
}
func (f *fakeBackend) Unload() {
	f.unloads++
	f.ready = false
}
func (f *fakeBackend) IsReady() bool      { return f.ready }
func (f *fakeBackend) Play()              { f.plays++ }
func (f *fakeBackend) Pause()             { f.pauses++ }
func (f *fakeBackend) TimeMS() int64      { return f.timeMS }
func (f *fakeBackend) SetTimeMS(ms int64) { f.seeks = append(f.seeks, ms); f.timeMS = ms }
func (f *fakeBackend) Rate() float64      { return f.rate }
func (f *fakeBackend) SetRate(rate float64) {
	f.rates = append(f.rates, rate)
	f.rate = rate
}
func (f *fakeBackend) SetMuted(muted bool) { f.muted = muted }

func newTestController() (*Controller, *fakeBackend, *fakeBackend) {
	yt := newFakeBackend(neko.VideoTypeYouTube)
	raw := newFakeBackend(neko.VideoTypeRaw)
	c := NewController(map[neko.VideoType]Backend{
		neko.VideoTypeYouTube: yt,
		neko.VideoTypeRaw:     raw,
	}, nil)
	return c, yt, raw
}

func ytItem(url string) neko.VideoItem {
	return neko.VideoItem{URL: url, Type: neko.VideoTypeYouTube}
}

func rawItem(url string) neko.VideoItem {
	return neko.VideoItem{URL: url, Type: neko.VideoTypeRaw}
}

func TestAddFirstItemLoads(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)

	if len(yt.loaded) != 1 || yt.loaded[0] != "yt://a" {
		t.Fatalf("loaded = %v", yt.loaded)
	}
}

func TestAddSecondItemDoesNotReload(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)

	if len(yt.loaded) != 1 {
		t.Fatalf("loaded = %v, expected only the first item", yt.loaded)
	}
}

func TestBackendSwitchUnloadsPrevious(t *testing.T) {
	c, yt, raw := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(rawItem("http://host/x.mp4"), true)
	c.PlayItem(1)

	if yt.unloads != 1 {
		t.Fatalf("youtube unloads = %d, want 1", yt.unloads)
	}
	if len(raw.loaded) != 1 || raw.loaded[0] != "http://host/x.mp4" {
		t.Fatalf("raw loaded = %v", raw.loaded)
	}
	kind, ok := c.ActiveKind()
	if !ok || kind != neko.VideoTypeRaw {
		t.Fatalf("active = %v, %v", kind, ok)
	}
}

func TestSameBackendSwitchDoesNotUnload(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)
	c.PlayItem(1)

	if yt.unloads != 0 {
		t.Fatalf("unloads = %d, want 0", yt.unloads)
	}
	if len(yt.loaded) != 2 {
		t.Fatalf("loaded = %v", yt.loaded)
	}
}

func TestRemoveCurrentLoadsReplacement(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)
	c.RemoveItem("yt://a")

	if len(yt.loaded) != 2 || yt.loaded[1] != "yt://b" {
		t.Fatalf("loaded = %v", yt.loaded)
	}
}

func TestRemoveOtherItemDoesNotReload(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)
	c.RemoveItem("yt://b")

	if len(yt.loaded) != 1 {
		t.Fatalf("loaded = %v", yt.loaded)
	}
}

func TestRemoveLastItemStops(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.RemoveItem("yt://a")

	if yt.unloads != 1 {
		t.Fatalf("unloads = %d, want 1", yt.unloads)
	}
	if _, ok := c.ActiveKind(); ok {
		t.Fatalf("backend still attached after emptying playlist")
	}
}

func TestSkipIgnoresStaleURL(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)
	c.SkipItem("yt://b")

	if c.Pos() != 0 || len(yt.loaded) != 1 {
		t.Fatalf("stale skip mutated state: pos=%d loaded=%v", c.Pos(), yt.loaded)
	}
}

func TestSkipCurrentAdvances(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)
	c.SkipItem("yt://a")

	if len(yt.loaded) != 2 || yt.loaded[1] != "yt://b" {
		t.Fatalf("loaded = %v", yt.loaded)
	}
}

func TestSetItemsSameURLKeepsPlayback(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.SetItems([]neko.VideoItem{ytItem("yt://z"), ytItem("yt://a")}, 1)

	if len(yt.loaded) != 1 {
		t.Fatalf("snapshot with same current URL reloaded: %v", yt.loaded)
	}
}

func TestSetItemsSameURLAfterStopResumes(t *testing.T) {
	c, yt, _ := newTestController()
	c.SetItems([]neko.VideoItem{ytItem("yt://a")}, 0)
	c.Stop()
	c.SetItems([]neko.VideoItem{ytItem("yt://a")}, 0)

	if len(yt.loaded) != 2 {
		t.Fatalf("loaded = %v, want 2 loads", yt.loaded)
	}
}

func TestPlayItemReloadsCurrentItem(t *testing.T) {
	c, yt, _ := newTestController()
	c.SetItems([]neko.VideoItem{ytItem("yt://a")}, 0)
	c.PlayItem(0)

	if len(yt.loaded) != 2 {
		t.Fatalf("loaded = %v, want 2 loads", yt.loaded)
	}
}

func TestSetItemsEmptyStops(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.SetItems(nil, 0)

	if yt.unloads != 1 {
		t.Fatalf("unloads = %d, want 1", yt.unloads)
	}
}

func TestSetNextItemDoesNotReload(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.AddItem(ytItem("yt://b"), true)
	c.AddItem(ytItem("yt://c"), true)
	c.SetNextItem(2)

	if len(yt.loaded) != 1 {
		t.Fatalf("loaded = %v", yt.loaded)
	}
	next, _ := c.Playlist().Item(1)
	if next.URL != "yt://c" {
		t.Fatalf("next = %v, want yt://c", next.URL)
	}
}

func TestCommandsDroppedWhenNotReady(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	yt.ready = false

	c.Play()
	c.Pause()
	c.SetTimeMS(5000)
	c.SetRate(2)

	if yt.plays != 0 || yt.pauses != 0 || len(yt.seeks) != 0 || len(yt.rates) != 0 {
		t.Fatalf("commands reached a backend that was not ready")
	}
	if c.TimeMS() != 0 {
		t.Fatalf("time = %d, want 0 default", c.TimeMS())
	}
	if c.Rate() != 1 {
		t.Fatalf("rate = %v, want 1 default", c.Rate())
	}
}

func TestCommandsForwardedWhenReady(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)

	c.Play()
	c.SetTimeMS(5000)
	c.SetRate(1.5)
	c.Pause()
	c.SetMuted(true)

	if yt.plays != 1 || yt.pauses != 1 {
		t.Fatalf("plays=%d pauses=%d", yt.plays, yt.pauses)
	}
	if c.TimeMS() != 5000 {
		t.Fatalf("time = %d", c.TimeMS())
	}
	if c.Rate() != 1.5 {
		t.Fatalf("rate = %v", c.Rate())
	}
	if !yt.muted {
		t.Fatalf("mute not forwarded")
	}
}

func TestFallbackByURLWhenTypeUnregistered(t *testing.T) {
	c, _, raw := newTestController()
	raw.handles = ".mp4"
	c.AddItem(neko.VideoItem{URL: "http://host/clip.mp4", Type: neko.VideoTypeTwitch}, true)

	if len(raw.loaded) != 1 {
		t.Fatalf("raw loaded = %v", raw.loaded)
	}
}

func TestNoBackendStops(t *testing.T) {
	c, _, _ := newTestController()
	c.AddItem(neko.VideoItem{URL: "tw://chan", Type: neko.VideoTypeTwitch}, true)

	if _, ok := c.ActiveKind(); ok {
		t.Fatalf("unexpected active backend")
	}
}

func TestClearItemsStops(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.ClearItems()

	if !c.IsEmpty() {
		t.Fatalf("playlist not empty")
	}
	if yt.unloads != 1 {
		t.Fatalf("unloads = %d, want 1", yt.unloads)
	}
}

func TestReloadReloadsCurrent(t *testing.T) {
	c, yt, _ := newTestController()
	c.AddItem(ytItem("yt://a"), true)
	c.Reload()

	if len(yt.loaded) != 2 {
		t.Fatalf("loaded = %v", yt.loaded)
	}
}
