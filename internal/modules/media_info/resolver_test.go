package mediainfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

type fakeFetcher struct {
	video *youtube.Video
	err   error
	seen  string
}

func (f *fakeFetcher) GetVideoContext(ctx context.Context, id string) (*youtube.Video, error) {
	f.seen = id
	if f.err != nil {
		return nil, f.err
	}
	return f.video, nil
}

func TestResolveYouTube(t *testing.T) {
	fetcher := &fakeFetcher{video: &youtube.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "A Song",
		Author:   "Somebody",
		Duration: 213 * time.Second,
	}}
	r := &Resolver{yt: fetcher}

	item, err := r.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if fetcher.seen != "dQw4w9WgXcQ" {
		t.Fatalf("fetched id = %s", fetcher.seen)
	}
	if item.Type != neko.VideoTypeYouTube || item.Title != "A Song" || item.Author != "Somebody" {
		t.Fatalf("item = %+v", item)
	}
	if item.DurationMS != 213000 {
		t.Fatalf("duration = %d", item.DurationMS)
	}
	if item.Live {
		t.Fatalf("recorded video flagged live")
	}
}

func TestResolveYouTubeLive(t *testing.T) {
	fetcher := &fakeFetcher{video: &youtube.Video{ID: "livestream1", Title: "Live"}}
	r := &Resolver{yt: fetcher}

	item, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v=livestream1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !item.Live || item.DurationMS != 0 {
		t.Fatalf("item = %+v", item)
	}
}

func TestResolveYouTubeError(t *testing.T) {
	r := &Resolver{yt: &fakeFetcher{err: errors.New("gone")}}
	if _, err := r.Resolve(context.Background(), "https://youtu.be/abc"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolveTwitch(t *testing.T) {
	r := &Resolver{yt: &fakeFetcher{}}
	item, err := r.Resolve(context.Background(), "https://www.twitch.tv/somechannel")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.Type != neko.VideoTypeTwitch || item.ID != "somechannel" || !item.Live {
		t.Fatalf("item = %+v", item)
	}
}

func TestResolveRaw(t *testing.T) {
	r := &Resolver{yt: &fakeFetcher{}}
	item, err := r.Resolve(context.Background(), "https://cdn.example/media/clip.mp4?sig=x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.Type != neko.VideoTypeRaw || item.Title != "clip.mp4" {
		t.Fatalf("item = %+v", item)
	}
}

func TestResolveIframeFallback(t *testing.T) {
	r := &Resolver{yt: &fakeFetcher{}}
	item, err := r.Resolve(context.Background(), "https://vimeo.com/12345")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.Type != neko.VideoTypeIframe || item.ID != "https://vimeo.com/12345" {
		t.Fatalf("item = %+v", item)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := &Resolver{yt: &fakeFetcher{}}
	if _, err := r.Resolve(context.Background(), "  "); err == nil {
		t.Fatalf("expected error")
	}
}
