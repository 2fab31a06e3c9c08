package backendiframe

import (
	"testing"
	"time"

	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

type fakeSurface struct {
	attaches []string
	sets     []string
	detaches int
	loaded   func()
}

func (s *fakeSurface) Attach(src, title string, loaded func()) {
	s.attaches = append(s.attaches, src)
	s.loaded = loaded
}

func (s *fakeSurface) SetSource(src string) {
	s.sets = append(s.sets, src)
}

func (s *fakeSurface) Detach() {
	s.detaches++
}

func frameItem(src string) neko.VideoItem {
	return neko.VideoItem{ID: src, URL: "https://page.example/" + src, Type: neko.VideoTypeIframe}
}

func TestLoadAttachesEmbedSource(t *testing.T) {
	s := &fakeSurface{}
	b := New(s, playercore.NewWallClock(nil))

	b.Load(frameItem("embed-src"))

	if len(s.attaches) != 1 || s.attaches[0] != "embed-src" {
		t.Fatalf("attaches = %v", s.attaches)
	}
	if b.IsReady() {
		t.Fatalf("ready before the embed loaded")
	}
	s.loaded()
	if !b.IsReady() {
		t.Fatalf("not ready after load")
	}
}

func TestLoadFallsBackToURL(t *testing.T) {
	s := &fakeSurface{}
	b := New(s, playercore.NewWallClock(nil))

	b.Load(neko.VideoItem{URL: "https://thing.example/embed"})

	if len(s.attaches) != 1 || s.attaches[0] != "https://thing.example/embed" {
		t.Fatalf("attaches = %v", s.attaches)
	}
}

func TestSecondLoadSwapsSource(t *testing.T) {
	s := &fakeSurface{}
	b := New(s, playercore.NewWallClock(nil))
	b.Load(frameItem("one"))
	s.loaded()

	b.Load(frameItem("two"))

	if len(s.attaches) != 1 {
		t.Fatalf("reattached instead of swapping: %v", s.attaches)
	}
	if len(s.sets) != 1 || s.sets[0] != "two" {
		t.Fatalf("sets = %v", s.sets)
	}
	if !b.IsReady() {
		t.Fatalf("not ready after source swap")
	}
}

func TestUnloadDetaches(t *testing.T) {
	s := &fakeSurface{}
	b := New(s, playercore.NewWallClock(nil))
	b.Load(frameItem("one"))
	s.loaded()

	b.Unload()

	if s.detaches != 1 {
		t.Fatalf("detaches = %d", s.detaches)
	}
	if b.IsReady() {
		t.Fatalf("ready after unload")
	}
	b.Unload()
	if s.detaches != 1 {
		t.Fatalf("detach repeated on idle backend")
	}
}

func TestSynthesizedTime(t *testing.T) {
	now := time.Unix(500, 0)
	s := &fakeSurface{}
	b := New(s, playercore.NewWallClock(func() time.Time { return now }))

	b.Load(frameItem("one"))
	b.SetTimeMS(10000)
	now = now.Add(3 * time.Second)

	if got := b.TimeMS(); got != 13000 {
		t.Fatalf("time = %d, want 13000", got)
	}
}

func TestTransportCommandsIgnored(t *testing.T) {
	s := &fakeSurface{}
	b := New(s, playercore.NewWallClock(nil))
	b.Load(frameItem("one"))
	s.loaded()

	b.Play()
	b.Pause()
	b.SetRate(2)
	b.SetMuted(true)

	if b.Rate() != 1 {
		t.Fatalf("rate = %v, want pinned 1", b.Rate())
	}
}

func TestNeverClaimsURLs(t *testing.T) {
	b := New(&fakeSurface{}, playercore.NewWallClock(nil))
	if b.CanHandle("https://anything.example/x") {
		t.Fatalf("iframe backend claimed a url")
	}
}
