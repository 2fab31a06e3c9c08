package core

import (
	"context"
	"fmt"

	"github.com/mikey-austin/nekotv/internal/ports"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Service orchestrates neko CLI use cases.
type Service struct {
	Broker   ports.Broker
	Resolver ports.MediaResolver
	Clock    ports.Clock
	IDGen    ports.IDGen
	Config   Config
}

// Thread resolves the thread selector, falling back to the configured
// default.
func (s Service) Thread(selector string) (string, error) {
	if selector != "" {
		return selector, nil
	}
	if s.Config.Defaults.Thread != "" {
		return s.Config.Defaults.Thread, nil
	}
	return "", UsageError("no thread given and no default configured")
}

// Node resolves the node selector, falling back to the configured default.
// An empty result means "any node".
func (s Service) Node(selector string) string {
	if selector != "" {
		return selector
	}
	return s.Config.Defaults.Node
}

// ListNodes returns the player states retained by every watch node in the
// thread.
func (s Service) ListNodes(ctx context.Context, thread string) (NodesResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return NodesResult{}, err
	}
	nodes, err := s.Broker.ListPlayerStates(ctx, thread)
	if err != nil {
		return NodesResult{}, WrapError(ExitRuntime, "list nodes", err)
	}
	return NodesResult{Thread: thread, Nodes: nodes}, nil
}

// Status returns one node's player state.
func (s Service) Status(ctx context.Context, thread string, node string) (StatusResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return StatusResult{}, err
	}
	state, err := s.nodeState(ctx, thread, node)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{Thread: thread, State: state}, nil
}

// WatchStatus streams a node's player state as it republishes.
func (s Service) WatchStatus(ctx context.Context, thread string, node string) (<-chan neko.PlayerState, <-chan error, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return nil, nil, err
	}
	node = s.Node(node)
	states, errs := s.Broker.WatchPlayerState(ctx, thread, node)
	return states, errs, nil
}

// Playlist returns the thread playlist as one node sees it.
func (s Service) Playlist(ctx context.Context, thread string, node string) (PlaylistResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return PlaylistResult{}, err
	}
	state, err := s.nodeState(ctx, thread, node)
	if err != nil {
		return PlaylistResult{}, err
	}
	return PlaylistResult{Thread: thread, ItemPos: state.ItemPos, Items: state.Items}, nil
}

// Add resolves a URL into an item and queues it.
func (s Service) Add(ctx context.Context, thread string, rawURL string, atEnd bool, temp bool) (AddResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return AddResult{}, err
	}
	if rawURL == "" {
		return AddResult{}, UsageError("url required")
	}

	item, err := s.Resolver.Resolve(ctx, rawURL)
	if err != nil {
		return AddResult{}, WrapError(ExitRuntime, "resolve url", err)
	}
	item.Temp = temp

	if err := s.publish(ctx, thread, neko.Control{
		Type:  "playlist.add",
		Item:  &item,
		AtEnd: atEnd,
	}); err != nil {
		return AddResult{}, err
	}
	return AddResult{Thread: thread, Item: item, AtEnd: atEnd}, nil
}

// AddResolved queues an item that is already resolved, such as a feed entry.
func (s Service) AddResolved(ctx context.Context, thread string, item neko.VideoItem, atEnd bool) (AddResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return AddResult{}, err
	}
	if item.URL == "" {
		return AddResult{}, UsageError("item url required")
	}

	if err := s.publish(ctx, thread, neko.Control{
		Type:  "playlist.add",
		Item:  &item,
		AtEnd: atEnd,
	}); err != nil {
		return AddResult{}, err
	}
	return AddResult{Thread: thread, Item: item, AtEnd: atEnd}, nil
}

// Remove removes the item with the given URL.
func (s Service) Remove(ctx context.Context, thread string, url string) (ControlResult, error) {
	if url == "" {
		return ControlResult{}, UsageError("url required")
	}
	return s.simple(ctx, thread, neko.Control{Type: "playlist.remove", URL: url})
}

// Skip advances past a URL, defaulting to whatever the node reports as
// currently playing.
func (s Service) Skip(ctx context.Context, thread string, node string, url string) (ControlResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return ControlResult{}, err
	}
	if url == "" {
		state, err := s.nodeState(ctx, thread, node)
		if err != nil {
			return ControlResult{}, err
		}
		if state.Current == nil {
			return ControlResult{}, &CLIError{Code: ExitNotFound, Msg: "nothing playing"}
		}
		url = state.Current.URL
	}
	if err := s.publish(ctx, thread, neko.Control{Type: "playlist.skip", URL: url}); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{Thread: thread, Type: "playlist.skip"}, nil
}

// Play resumes playback. A negative timeMS means "from the node's current
// position".
func (s Service) Play(ctx context.Context, thread string, node string, timeMS int64) (ControlResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return ControlResult{}, err
	}
	if timeMS < 0 {
		state, err := s.nodeState(ctx, thread, node)
		if err != nil {
			return ControlResult{}, err
		}
		timeMS = state.TimeMS
	}
	if err := s.publish(ctx, thread, neko.Control{Type: "playback.play", TimeMS: timeMS}); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{Thread: thread, Type: "playback.play"}, nil
}

// Pause freezes playback. A negative timeMS means "at the node's current
// position".
func (s Service) Pause(ctx context.Context, thread string, node string, timeMS int64) (ControlResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return ControlResult{}, err
	}
	if timeMS < 0 {
		state, err := s.nodeState(ctx, thread, node)
		if err != nil {
			return ControlResult{}, err
		}
		timeMS = state.TimeMS
	}
	if err := s.publish(ctx, thread, neko.Control{Type: "playback.pause", TimeMS: timeMS}); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{Thread: thread, Type: "playback.pause"}, nil
}

// Seek rewinds or fast-forwards to an absolute position.
func (s Service) Seek(ctx context.Context, thread string, timeMS int64) (ControlResult, error) {
	if timeMS < 0 {
		return ControlResult{}, UsageError("position must not be negative")
	}
	return s.simple(ctx, thread, neko.Control{Type: "playback.seek", TimeMS: timeMS})
}

// SetRate changes the playback rate.
func (s Service) SetRate(ctx context.Context, thread string, rate float64) (ControlResult, error) {
	if rate <= 0 {
		return ControlResult{}, UsageError("rate must be positive")
	}
	return s.simple(ctx, thread, neko.Control{Type: "playback.rate", Rate: rate})
}

// PlayItem jumps to a playlist position.
func (s Service) PlayItem(ctx context.Context, thread string, pos int) (ControlResult, error) {
	if pos < 0 {
		return ControlResult{}, UsageError("position must not be negative")
	}
	return s.simple(ctx, thread, neko.Control{Type: "playlist.playItem", Pos: pos})
}

// SetNext moves a playlist position to play next.
func (s Service) SetNext(ctx context.Context, thread string, pos int) (ControlResult, error) {
	if pos < 0 {
		return ControlResult{}, UsageError("position must not be negative")
	}
	return s.simple(ctx, thread, neko.Control{Type: "playlist.next", Pos: pos})
}

// Clear empties the thread playlist.
func (s Service) Clear(ctx context.Context, thread string) (ControlResult, error) {
	return s.simple(ctx, thread, neko.Control{Type: "playlist.clear"})
}

// Lock opens or locks the playlist for edits.
func (s Service) Lock(ctx context.Context, thread string, open bool) (ControlResult, error) {
	return s.simple(ctx, thread, neko.Control{Type: "playlist.lock", On: open})
}

// Mute toggles a watch node's audio.
func (s Service) Mute(ctx context.Context, thread string, muted bool) (ControlResult, error) {
	return s.simple(ctx, thread, neko.Control{Type: "watch.setMuted", On: muted})
}

func (s Service) simple(ctx context.Context, thread string, ctl neko.Control) (ControlResult, error) {
	thread, err := s.Thread(thread)
	if err != nil {
		return ControlResult{}, err
	}
	if err := s.publish(ctx, thread, ctl); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{Thread: thread, Type: ctl.Type}, nil
}

func (s Service) publish(ctx context.Context, thread string, ctl neko.Control) error {
	ctl.ID = s.IDGen.NewID()
	ctl.TS = s.Clock.NowUnix()
	ctl.From = s.Config.Identity
	if err := neko.ValidateControl(ctl); err != nil {
		return WrapError(ExitRuntime, "build control", err)
	}
	if err := s.Broker.PublishControl(ctx, thread, ctl); err != nil {
		return WrapError(ExitRuntime, fmt.Sprintf("publish %s", ctl.Type), err)
	}
	return nil
}

func (s Service) nodeState(ctx context.Context, thread string, node string) (neko.PlayerState, error) {
	node = s.Node(node)
	if node != "" {
		state, err := s.Broker.GetPlayerState(ctx, thread, node)
		if err != nil {
			return neko.PlayerState{}, WrapError(ExitRuntime, "get player state", err)
		}
		return state, nil
	}

	nodes, err := s.Broker.ListPlayerStates(ctx, thread)
	if err != nil {
		return neko.PlayerState{}, WrapError(ExitRuntime, "list nodes", err)
	}
	if len(nodes) == 0 {
		return neko.PlayerState{}, &CLIError{Code: ExitNotFound, Msg: "no watch nodes in thread"}
	}
	// Prefer the most recently published state.
	best := nodes[0]
	for _, state := range nodes[1:] {
		if state.TS > best.TS {
			best = state
		}
	}
	return best, nil
}
