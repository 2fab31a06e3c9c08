package neko

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BaseTopic is the default MQTT topic prefix for the protocol.
const BaseTopic = "neko/v1"

// VideoType selects which playback backend handles an item.
type VideoType int32

const (
	VideoTypeIframe VideoType = iota
	VideoTypeYouTube
	VideoTypeTwitch
	VideoTypeRaw
)

// String returns the wire name of the type.
func (t VideoType) String() string {
	switch t {
	case VideoTypeIframe:
		return "iframe"
	case VideoTypeYouTube:
		return "youtube"
	case VideoTypeTwitch:
		return "twitch"
	case VideoTypeRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// ParseVideoType parses a wire name into a VideoType.
func ParseVideoType(name string) (VideoType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "iframe":
		return VideoTypeIframe, nil
	case "youtube":
		return VideoTypeYouTube, nil
	case "twitch":
		return VideoTypeTwitch, nil
	case "raw":
		return VideoTypeRaw, nil
	default:
		return VideoTypeIframe, fmt.Errorf("unknown video type %q", name)
	}
}

// VideoItem is one playlist entry. All times are milliseconds; live streams
// carry Live=true instead of an open-ended duration.
type VideoItem struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Author     string    `json:"author,omitempty"`
	DurationMS int64     `json:"durationMs,omitempty"`
	Live       bool      `json:"live,omitempty"`
	Temp       bool      `json:"temp,omitempty"`
	Type       VideoType `json:"type"`
}

// ConnectedEvent is the snapshot sent when a client joins a feed.
type ConnectedEvent struct {
	Items        []VideoItem   `json:"items"`
	ItemPos      int           `json:"itemPos"`
	PlaylistOpen bool          `json:"playlistOpen"`
	GetTime      *GetTimeEvent `json:"getTime,omitempty"`
}

// AddVideoEvent appends or inserts one item.
type AddVideoEvent struct {
	Item  VideoItem `json:"item"`
	AtEnd bool      `json:"atEnd"`
}

// RemoveVideoEvent removes the item with the given URL.
type RemoveVideoEvent struct {
	URL string `json:"url"`
}

// SkipVideoEvent skips past the item with the given URL.
type SkipVideoEvent struct {
	URL string `json:"url"`
}

// PauseEvent freezes playback at an authoritative time.
type PauseEvent struct {
	TimeMS int64 `json:"timeMs"`
}

// PlayEvent resumes playback from a server time.
type PlayEvent struct {
	TimeMS int64 `json:"timeMs"`
}

// GetTimeEvent is the periodic timeline heartbeat. A zero Rate means 1.
type GetTimeEvent struct {
	TimeMS int64   `json:"timeMs"`
	Paused bool    `json:"paused,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
}

// SetTimeEvent is an explicit resync seek.
type SetTimeEvent struct {
	TimeMS int64 `json:"timeMs"`
}

// SetRateEvent changes the playback rate.
type SetRateEvent struct {
	Rate float64 `json:"rate"`
}

// RewindEvent is an unconditional absolute seek.
type RewindEvent struct {
	TimeMS int64 `json:"timeMs"`
}

// PlayItemEvent activates the item at a playlist position.
type PlayItemEvent struct {
	Pos int `json:"pos"`
}

// SetNextItemEvent moves the item at Pos to just after the current one.
type SetNextItemEvent struct {
	Pos int `json:"pos"`
}

// UpdatePlaylistEvent replaces the playlist wholesale.
type UpdatePlaylistEvent struct {
	Items []VideoItem `json:"items"`
}

// TogglePlaylistLockEvent opens or locks the playlist for edits.
type TogglePlaylistLockEvent struct {
	Open bool `json:"open"`
}

// ClearPlaylistEvent empties the playlist.
type ClearPlaylistEvent struct{}

// Message is the feed event envelope. Exactly one variant is set.
type Message struct {
	Connected          *ConnectedEvent          `json:"connectedEvent,omitempty"`
	AddVideo           *AddVideoEvent           `json:"addVideoEvent,omitempty"`
	RemoveVideo        *RemoveVideoEvent        `json:"removeVideoEvent,omitempty"`
	SkipVideo          *SkipVideoEvent          `json:"skipVideoEvent,omitempty"`
	Pause              *PauseEvent              `json:"pauseEvent,omitempty"`
	Play               *PlayEvent               `json:"playEvent,omitempty"`
	GetTime            *GetTimeEvent            `json:"getTimeEvent,omitempty"`
	SetTime            *SetTimeEvent            `json:"setTimeEvent,omitempty"`
	SetRate            *SetRateEvent            `json:"setRateEvent,omitempty"`
	Rewind             *RewindEvent             `json:"rewindEvent,omitempty"`
	PlayItem           *PlayItemEvent           `json:"playItemEvent,omitempty"`
	SetNextItem        *SetNextItemEvent        `json:"setNextItemEvent,omitempty"`
	UpdatePlaylist     *UpdatePlaylistEvent     `json:"updatePlaylistEvent,omitempty"`
	TogglePlaylistLock *TogglePlaylistLockEvent `json:"togglePlaylistLockEvent,omitempty"`
	ClearPlaylist      *ClearPlaylistEvent      `json:"clearPlaylistEvent,omitempty"`
}

// ErrEmptyMessage indicates a decoded envelope with no variant set.
var ErrEmptyMessage = errors.New("message has no event variant")

// ErrAmbiguousMessage indicates a decoded envelope with multiple variants set.
var ErrAmbiguousMessage = errors.New("message has multiple event variants")

func (m Message) variantCount() int {
	count := 0
	for _, set := range []bool{
		m.Connected != nil, m.AddVideo != nil, m.RemoveVideo != nil,
		m.SkipVideo != nil, m.Pause != nil, m.Play != nil, m.GetTime != nil,
		m.SetTime != nil, m.SetRate != nil, m.Rewind != nil, m.PlayItem != nil,
		m.SetNextItem != nil, m.UpdatePlaylist != nil,
		m.TogglePlaylistLock != nil, m.ClearPlaylist != nil,
	} {
		if set {
			count++
		}
	}
	return count
}

// Validate checks that exactly one event variant is present.
func (m Message) Validate() error {
	switch m.variantCount() {
	case 0:
		return ErrEmptyMessage
	case 1:
		return nil
	default:
		return ErrAmbiguousMessage
	}
}

// DecodeMessage parses and validates a feed message payload.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// EncodeMessage serializes a validated feed message.
func EncodeMessage(msg Message) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// PlayerState is the retained state snapshot a watch node publishes.
type PlayerState struct {
	Thread  string      `json:"thread"`
	NodeID  string      `json:"nodeId"`
	Items   []VideoItem `json:"items,omitempty"`
	ItemPos int         `json:"itemPos"`
	Current *VideoItem  `json:"current,omitempty"`
	TimeMS  int64       `json:"timeMs"`
	Rate    float64     `json:"rate"`
	Paused  bool        `json:"paused"`
	Backend string      `json:"backend,omitempty"`
	TS      int64       `json:"ts"`
}

// Control is a client-originated command published on a thread's control
// topic. The feed server consumes playlist and playback commands; watch
// nodes consume the watch.* commands addressed to them.
type Control struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	TS     int64      `json:"ts"`
	From   string     `json:"from"`
	Item   *VideoItem `json:"item,omitempty"`
	URL    string     `json:"url,omitempty"`
	Pos    int        `json:"pos,omitempty"`
	TimeMS int64      `json:"timeMs,omitempty"`
	Rate   float64    `json:"rate,omitempty"`
	AtEnd  bool       `json:"atEnd,omitempty"`
	On     bool       `json:"on,omitempty"`
}

// ValidateControl checks required control fields.
func ValidateControl(ctl Control) error {
	if strings.TrimSpace(ctl.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(ctl.Type) == "" {
		return errors.New("type is required")
	}
	if ctl.TS <= 0 {
		return errors.New("ts must be a positive unix timestamp")
	}
	return nil
}

// TopicEvents builds the feed event topic for a thread.
func TopicEvents(topicBase, thread string) string {
	return fmt.Sprintf("%s/thread/%s/evt", topicBase, thread)
}

// TopicControl builds the control topic for a thread.
func TopicControl(topicBase, thread string) string {
	return fmt.Sprintf("%s/thread/%s/ctl", topicBase, thread)
}

// TopicState builds the retained player-state topic for a watch node.
func TopicState(topicBase, thread, nodeID string) string {
	return fmt.Sprintf("%s/thread/%s/state/%s", topicBase, thread, nodeID)
}
