package neko

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeMessageRoundTrip(t *testing.T) {
	msg := Message{Play: &PlayEvent{TimeMS: 42000}}
	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Play == nil || decoded.Play.TimeMS != 42000 {
		t.Fatalf("expected play event with time 42000, got %+v", decoded)
	}
}

func TestDecodeMessageRejectsEmpty(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{}`)); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestDecodeMessageRejectsAmbiguous(t *testing.T) {
	payload := []byte(`{"playEvent":{"timeMs":1},"pauseEvent":{"timeMs":2}}`)
	if _, err := DecodeMessage(payload); !errors.Is(err, ErrAmbiguousMessage) {
		t.Fatalf("expected ErrAmbiguousMessage, got %v", err)
	}
}

func TestDecodeConnectedSnapshot(t *testing.T) {
	payload := []byte(`{
		"connectedEvent": {
			"items": [{"id":"a","url":"https://youtu.be/abc123","type":1,"durationMs":120000}],
			"itemPos": 0,
			"getTime": {"timeMs": 9000, "paused": true}
		}
	}`)
	msg, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msg.Connected.Items) != 1 {
		t.Fatalf("expected one item")
	}
	if msg.Connected.Items[0].Type != VideoTypeYouTube {
		t.Fatalf("expected youtube type")
	}
	if msg.Connected.GetTime == nil || !msg.Connected.GetTime.Paused {
		t.Fatalf("expected paused snapshot time")
	}
}

func TestValidateControl(t *testing.T) {
	valid := Control{ID: "1", Type: "playlist.add", TS: 100}
	if err := ValidateControl(valid); err != nil {
		t.Fatalf("valid control rejected: %v", err)
	}
	for _, ctl := range []Control{
		{Type: "playlist.add", TS: 100},
		{ID: "1", TS: 100},
		{ID: "1", Type: "playlist.add"},
	} {
		if err := ValidateControl(ctl); err == nil {
			t.Fatalf("expected error for %+v", ctl)
		}
	}
}

func TestParseVideoType(t *testing.T) {
	for _, name := range []string{"iframe", "youtube", "twitch", "raw"} {
		parsed, err := ParseVideoType(name)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if parsed.String() != name {
			t.Fatalf("round trip mismatch: %s != %s", parsed, name)
		}
	}
	if _, err := ParseVideoType("betamax"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestTopics(t *testing.T) {
	if got := TopicEvents(BaseTopic, "77"); got != "neko/v1/thread/77/evt" {
		t.Fatalf("unexpected events topic %s", got)
	}
	if got := TopicControl(BaseTopic, "77"); got != "neko/v1/thread/77/ctl" {
		t.Fatalf("unexpected control topic %s", got)
	}
	if got := TopicState(BaseTopic, "77", "node-1"); got != "neko/v1/thread/77/state/node-1" {
		t.Fatalf("unexpected state topic %s", got)
	}
}

func TestPlayerStateJSON(t *testing.T) {
	state := PlayerState{Thread: "9", NodeID: "n", TimeMS: 1234, Rate: 1, Paused: true}
	payload, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded PlayerState
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.TimeMS != 1234 || !decoded.Paused {
		t.Fatalf("unexpected state %+v", decoded)
	}
}
