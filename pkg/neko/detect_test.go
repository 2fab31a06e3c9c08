package neko

import "testing"

func TestYouTubeVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                "dQw4w9WgXcQ",
		"https://youtube.com/shorts/abc_-123":         "abc_-123",
		"https://www.youtube.com/embed/xyz789":        "xyz789",
		"https://example.com/watch?v=nope":            "",
		"https://www.twitch.tv/somechannel":           "",
	}
	for url, want := range cases {
		if got := YouTubeVideoID(url); got != want {
			t.Fatalf("YouTubeVideoID(%s) = %q, want %q", url, got, want)
		}
	}
}

func TestTwitchChannel(t *testing.T) {
	if got := TwitchChannel("https://www.twitch.tv/somechannel"); got != "somechannel" {
		t.Fatalf("unexpected channel %q", got)
	}
	if got := TwitchChannel("twitch.tv/other"); got != "other" {
		t.Fatalf("unexpected channel %q", got)
	}
	if got := TwitchChannel("https://example.com/video.mp4"); got != "" {
		t.Fatalf("expected no channel, got %q", got)
	}
}

func TestDetectType(t *testing.T) {
	cases := map[string]VideoType{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": VideoTypeYouTube,
		"https://www.twitch.tv/somechannel":           VideoTypeTwitch,
		"https://example.com/clip.webm":               VideoTypeRaw,
		"https://example.com/stream.m3u8":             VideoTypeRaw,
		"https://example.com/player?id=5":             VideoTypeIframe,
	}
	for url, want := range cases {
		if got := DetectType(url); got != want {
			t.Fatalf("DetectType(%s) = %s, want %s", url, got, want)
		}
	}
}
