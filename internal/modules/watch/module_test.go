package watch

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mikey-austin/nekotv/internal/adapters/prefs"
	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/pkg/neko"
	"go.uber.org/zap"
)

type fakeMQTTClient struct {
	mu        sync.Mutex
	subs      map[string]paho.MessageHandler
	unsubs    []string
	published map[string][][]byte
}

func (f *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = make(map[string][][]byte)
	}
	f.published[topic] = append(f.published[topic], payload)
	return nil
}

func (f *fakeMQTTClient) Subscribe(topic string, qos byte, handler paho.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[string]paho.MessageHandler)
	}
	f.subs[topic] = handler
	return nil
}

func (f *fakeMQTTClient) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, topic)
	f.unsubs = append(f.unsubs, topic)
	return nil
}

func (f *fakeMQTTClient) subscribed(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.subs[topic]
	return ok
}

func (f *fakeMQTTClient) lastPublished(topic string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.published[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

type stubBackend struct {
	kind   neko.VideoType
	loads  []string
	unload int
	plays  int
	pauses int
	muted  bool
	ready  bool
}

func (b *stubBackend) Kind() neko.VideoType      { return b.kind }
func (b *stubBackend) CanHandle(url string) bool { return false }
func (b *stubBackend) Load(item neko.VideoItem) {
	b.loads = append(b.loads, item.URL)
	b.ready = true
}
func (b *stubBackend) Unload() {
	b.unload++
	b.ready = false
}
func (b *stubBackend) IsReady() bool          { return b.ready }
func (b *stubBackend) Play()                  { b.plays++ }
func (b *stubBackend) Pause()                 { b.pauses++ }
func (b *stubBackend) TimeMS() int64          { return 0 }
func (b *stubBackend) SetTimeMS(ms int64)     {}
func (b *stubBackend) Rate() float64          { return 1 }
func (b *stubBackend) SetRate(rate float64)   {}
func (b *stubBackend) SetMuted(muted bool)    { b.muted = muted }

func newTestModule(t *testing.T) (*Module, *fakeMQTTClient, *stubBackend, *prefs.Store) {
	t.Helper()

	client := &fakeMQTTClient{}
	backend := &stubBackend{kind: neko.VideoTypeRaw}
	controller := playercore.NewController(map[neko.VideoType]playercore.Backend{
		neko.VideoTypeRaw: backend,
	}, nil)

	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}

	module, err := NewModule(zap.NewNop(), client, controller, store, Config{
		NodeID:       "node-1",
		Thread:       "g-12345",
		PublishState: true,
	})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	module.enabled = true
	return module, client, backend, store
}

func mustEncode(t *testing.T, msg neko.Message) []byte {
	t.Helper()
	payload, err := neko.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return payload
}

func TestFeedEventLoadsBackend(t *testing.T) {
	module, client, backend, _ := newTestModule(t)

	module.HandleEvent(mustEncode(t, neko.Message{
		AddVideo: &neko.AddVideoEvent{
			Item:  neko.VideoItem{URL: "https://example.com/a.mp4", Type: neko.VideoTypeRaw},
			AtEnd: true,
		},
	}))

	if len(backend.loads) != 1 || backend.loads[0] != "https://example.com/a.mp4" {
		t.Fatalf("loads = %v", backend.loads)
	}

	payload := client.lastPublished(module.stateTopic)
	if payload == nil {
		t.Fatalf("expected state publish")
	}
	var state neko.PlayerState
	if err := json.Unmarshal(payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Thread != "g-12345" || state.NodeID != "node-1" {
		t.Fatalf("state = %+v", state)
	}
	if state.Current == nil || state.Current.URL != "https://example.com/a.mp4" {
		t.Fatalf("state current = %+v", state.Current)
	}
	if state.Backend != "raw" {
		t.Fatalf("state backend = %q", state.Backend)
	}
}

func TestFeedEventIgnoredWhileDisabled(t *testing.T) {
	module, _, backend, _ := newTestModule(t)
	module.enabled = false

	module.HandleEvent(mustEncode(t, neko.Message{
		AddVideo: &neko.AddVideoEvent{
			Item: neko.VideoItem{URL: "https://example.com/a.mp4", Type: neko.VideoTypeRaw},
		},
	}))

	if len(backend.loads) != 0 {
		t.Fatalf("loads = %v", backend.loads)
	}
}

func TestInvalidEventDropped(t *testing.T) {
	module, _, backend, _ := newTestModule(t)

	module.HandleEvent([]byte("not json"))
	module.HandleEvent([]byte("{}"))

	if len(backend.loads) != 0 {
		t.Fatalf("loads = %v", backend.loads)
	}
}

func TestControlTakesEventPath(t *testing.T) {
	module, _, backend, _ := newTestModule(t)

	ctl := neko.Control{
		ID:   "c-1",
		Type: "playlist.add",
		TS:   time.Now().Unix(),
		Item: &neko.VideoItem{URL: "https://example.com/b.mp4", Type: neko.VideoTypeRaw},
	}
	payload, _ := json.Marshal(ctl)
	module.handleControl(payload)

	if len(backend.loads) != 1 || backend.loads[0] != "https://example.com/b.mp4" {
		t.Fatalf("loads = %v", backend.loads)
	}

	ctl = neko.Control{ID: "c-2", Type: "playback.pause", TS: time.Now().Unix()}
	payload, _ = json.Marshal(ctl)
	module.handleControl(payload)

	if backend.pauses != 1 {
		t.Fatalf("pauses = %d", backend.pauses)
	}
}

func TestMuteControlPersists(t *testing.T) {
	module, _, backend, store := newTestModule(t)

	module.HandleEvent(mustEncode(t, neko.Message{
		AddVideo: &neko.AddVideoEvent{
			Item: neko.VideoItem{URL: "https://example.com/a.mp4", Type: neko.VideoTypeRaw},
		},
	}))

	ctl := neko.Control{ID: "c-1", Type: "watch.setMuted", TS: time.Now().Unix(), On: true}
	payload, _ := json.Marshal(ctl)
	module.handleControl(payload)

	if !backend.muted {
		t.Fatalf("expected backend muted")
	}
	if !store.Get(prefMuted, false) {
		t.Fatalf("expected muted flag persisted")
	}
}

func TestToggleOffStopsPlayback(t *testing.T) {
	module, client, backend, store := newTestModule(t)
	client.Subscribe(module.evtTopic, 1, func(_ paho.Client, _ paho.Message) {})

	module.HandleEvent(mustEncode(t, neko.Message{
		AddVideo: &neko.AddVideoEvent{
			Item: neko.VideoItem{URL: "https://example.com/a.mp4", Type: neko.VideoTypeRaw},
		},
	}))

	ctl := neko.Control{ID: "c-1", Type: "watch.toggle", TS: time.Now().Unix(), On: false}
	payload, _ := json.Marshal(ctl)
	module.handleControl(payload)

	if backend.unload != 1 {
		t.Fatalf("unload = %d", backend.unload)
	}
	if client.subscribed(module.evtTopic) {
		t.Fatalf("expected feed unsubscribed")
	}
	if store.Get(prefEnabled, true) {
		t.Fatalf("expected enabled flag persisted off")
	}
}

func TestRunAppliesPrefsAndSubscribes(t *testing.T) {
	module, client, _, store := newTestModule(t)
	if err := store.Set(prefMuted, true); err != nil {
		t.Fatalf("set pref: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- module.Run(ctx) }()

	deadline := time.After(500 * time.Millisecond)
	for !client.subscribed(module.evtTopic) || !client.subscribed(module.ctlTopic) {
		select {
		case <-deadline:
			t.Fatalf("expected subscriptions")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	module.mu.Lock()
	muted := module.muted
	module.mu.Unlock()
	if !muted {
		t.Fatalf("expected muted pref applied")
	}
}
