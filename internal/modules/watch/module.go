package watch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mikey-austin/nekotv/internal/adapters/prefs"
	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/pkg/neko"
	"go.uber.org/zap"
)

type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler paho.MessageHandler) error
	Unsubscribe(topic string) error
}

const (
	prefEnabled = "enabled"
	prefMuted   = "muted"
)

// Config configures the watch module.
type Config struct {
	NodeID       string
	Thread       string
	TopicBase    string
	PublishState bool
}

// Module follows one thread's playback feed and keeps the local player in
// step with it. All feed events and control commands funnel through a single
// mutex, so the reconciler never races itself.
type Module struct {
	log        *zap.Logger
	client     mqttClient
	controller *playercore.Controller
	reconciler *playercore.Reconciler
	prefs      *prefs.Store
	config     Config
	evtTopic   string
	ctlTopic   string
	stateTopic string

	mu      sync.Mutex
	enabled bool
	muted   bool
}

// NewModule creates a watch module bound to one thread.
func NewModule(log *zap.Logger, client mqttClient, controller *playercore.Controller, store *prefs.Store, cfg Config) (*Module, error) {
	if strings.TrimSpace(cfg.NodeID) == "" {
		return nil, errors.New("node_id required")
	}
	if strings.TrimSpace(cfg.Thread) == "" {
		return nil, errors.New("thread required")
	}
	if strings.TrimSpace(cfg.TopicBase) == "" {
		cfg.TopicBase = neko.BaseTopic
	}

	return &Module{
		log:        log,
		client:     client,
		controller: controller,
		reconciler: playercore.NewReconciler(controller, nil),
		prefs:      store,
		config:     cfg,
		evtTopic:   neko.TopicEvents(cfg.TopicBase, cfg.Thread),
		ctlTopic:   neko.TopicControl(cfg.TopicBase, cfg.Thread),
		stateTopic: neko.TopicState(cfg.TopicBase, cfg.Thread, cfg.NodeID),
	}, nil
}

// Run starts the module and blocks until the context is cancelled.
func (m *Module) Run(ctx context.Context) error {
	m.mu.Lock()
	m.enabled = m.prefs.Get(prefEnabled, true)
	m.muted = m.prefs.Get(prefMuted, false)
	m.controller.SetMuted(m.muted)
	enabled := m.enabled
	m.mu.Unlock()

	ctlHandler := func(_ paho.Client, msg paho.Message) {
		m.handleControl(msg.Payload())
	}
	if err := m.client.Subscribe(m.ctlTopic, 1, ctlHandler); err != nil {
		return err
	}
	defer m.client.Unsubscribe(m.ctlTopic)

	if enabled {
		if err := m.subscribeEvents(); err != nil {
			return err
		}
	}
	defer m.client.Unsubscribe(m.evtTopic)

	go m.runStateUpdates(ctx)

	<-ctx.Done()
	return nil
}

// HandleEvent feeds one raw event payload into the reconciler. It is the
// entry point for the MQTT subscription.
func (m *Module) HandleEvent(payload []byte) {
	msg, err := neko.DecodeMessage(payload)
	if err != nil {
		m.log.Warn("invalid feed event", zap.Error(err))
		return
	}
	m.HandleMessage(msg)
}

// HandleMessage applies one decoded feed event. Websocket feeds deliver
// here directly.
func (m *Module) HandleMessage(msg neko.Message) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	m.reconciler.Apply(&msg)
	m.mu.Unlock()

	m.publishState()
}

func (m *Module) subscribeEvents() error {
	handler := func(_ paho.Client, msg paho.Message) {
		m.HandleEvent(msg.Payload())
	}
	return m.client.Subscribe(m.evtTopic, 1, handler)
}

func (m *Module) handleControl(payload []byte) {
	var ctl neko.Control
	if err := json.Unmarshal(payload, &ctl); err != nil {
		m.log.Warn("invalid control", zap.Error(err))
		return
	}
	if err := neko.ValidateControl(ctl); err != nil {
		m.log.Warn("invalid control", zap.Error(err))
		return
	}

	switch ctl.Type {
	case "watch.setMuted":
		m.setMuted(ctl.On)
		return
	case "watch.toggle":
		m.setEnabled(ctl.On)
		return
	}

	msg, ok := controlToEvent(ctl)
	if !ok {
		m.log.Warn("unknown control type", zap.String("type", ctl.Type))
		return
	}

	m.mu.Lock()
	m.reconciler.Apply(&msg)
	m.mu.Unlock()

	m.publishState()
}

// controlToEvent rewrites a control command as the feed event it mirrors, so
// local commands and server events take the same path through the reconciler.
func controlToEvent(ctl neko.Control) (neko.Message, bool) {
	switch ctl.Type {
	case "playlist.add":
		if ctl.Item == nil {
			return neko.Message{}, false
		}
		return neko.Message{AddVideo: &neko.AddVideoEvent{Item: *ctl.Item, AtEnd: ctl.AtEnd}}, true
	case "playlist.remove":
		return neko.Message{RemoveVideo: &neko.RemoveVideoEvent{URL: ctl.URL}}, true
	case "playlist.skip":
		return neko.Message{SkipVideo: &neko.SkipVideoEvent{URL: ctl.URL}}, true
	case "playlist.playItem":
		return neko.Message{PlayItem: &neko.PlayItemEvent{Pos: ctl.Pos}}, true
	case "playlist.next":
		return neko.Message{SetNextItem: &neko.SetNextItemEvent{Pos: ctl.Pos}}, true
	case "playlist.clear":
		return neko.Message{ClearPlaylist: &neko.ClearPlaylistEvent{}}, true
	case "playlist.lock":
		return neko.Message{TogglePlaylistLock: &neko.TogglePlaylistLockEvent{Open: ctl.On}}, true
	case "playback.play":
		return neko.Message{Play: &neko.PlayEvent{TimeMS: ctl.TimeMS}}, true
	case "playback.pause":
		return neko.Message{Pause: &neko.PauseEvent{TimeMS: ctl.TimeMS}}, true
	case "playback.seek":
		return neko.Message{SetTime: &neko.SetTimeEvent{TimeMS: ctl.TimeMS}}, true
	case "playback.rate":
		return neko.Message{SetRate: &neko.SetRateEvent{Rate: ctl.Rate}}, true
	}
	return neko.Message{}, false
}

func (m *Module) setMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()

	m.controller.SetMuted(muted)
	if err := m.prefs.Set(prefMuted, muted); err != nil {
		m.log.Warn("persisting muted flag", zap.Error(err))
	}
	m.publishState()
}

func (m *Module) setEnabled(enabled bool) {
	m.mu.Lock()
	if m.enabled == enabled {
		m.mu.Unlock()
		return
	}
	m.enabled = enabled
	m.mu.Unlock()

	if err := m.prefs.Set(prefEnabled, enabled); err != nil {
		m.log.Warn("persisting enabled flag", zap.Error(err))
	}

	if enabled {
		if err := m.subscribeEvents(); err != nil {
			m.log.Warn("subscribing to feed", zap.Error(err))
		}
		m.publishState()
		return
	}

	if err := m.client.Unsubscribe(m.evtTopic); err != nil {
		m.log.Warn("unsubscribing from feed", zap.Error(err))
	}
	m.mu.Lock()
	m.controller.Stop()
	m.mu.Unlock()
	m.publishState()
}

func (m *Module) runStateUpdates(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.controller.Paused() {
				m.publishState()
			}
		}
	}
}

func (m *Module) publishState() {
	if !m.config.PublishState {
		return
	}

	m.mu.Lock()
	state := m.snapshot()
	m.mu.Unlock()

	payload, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := m.client.Publish(m.stateTopic, 1, true, payload); err != nil {
		m.log.Warn("publishing state", zap.Error(err))
	}
}

func (m *Module) snapshot() neko.PlayerState {
	state := neko.PlayerState{
		Thread:  m.config.Thread,
		NodeID:  m.config.NodeID,
		Items:   m.controller.Playlist().Items(),
		ItemPos: m.controller.Pos(),
		TimeMS:  m.controller.TimeMS(),
		Rate:    m.controller.Rate(),
		Paused:  m.controller.Paused(),
		TS:      time.Now().Unix(),
	}
	if cur, ok := m.controller.Current(); ok {
		state.Current = &cur
	}
	if kind, ok := m.controller.ActiveKind(); ok {
		state.Backend = kind.String()
	}
	return state
}
