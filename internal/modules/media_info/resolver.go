// Package mediainfo turns URLs into playlist items with metadata filled in.
// YouTube metadata comes from the YouTube API client; everything else is
// classified by URL shape.
package mediainfo

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// videoFetcher is the slice of the YouTube client the resolver needs.
type videoFetcher interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
}

// Resolver resolves URLs into VideoItems.
type Resolver struct {
	yt  videoFetcher
	log *zap.Logger
}

// NewResolver creates a resolver backed by the public YouTube API.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{yt: &youtube.Client{}, log: logger}
}

// Resolve classifies the URL and fills in whatever metadata its source
// exposes.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (neko.VideoItem, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return neko.VideoItem{}, fmt.Errorf("empty url")
	}

	switch neko.DetectType(rawURL) {
	case neko.VideoTypeYouTube:
		return r.resolveYouTube(ctx, rawURL)
	case neko.VideoTypeTwitch:
		channel := neko.TwitchChannel(rawURL)
		return neko.VideoItem{
			ID:    channel,
			URL:   rawURL,
			Title: channel,
			Type:  neko.VideoTypeTwitch,
			Live:  true,
		}, nil
	case neko.VideoTypeRaw:
		return neko.VideoItem{
			URL:   rawURL,
			Title: rawMediaTitle(rawURL),
			Type:  neko.VideoTypeRaw,
		}, nil
	default:
		return neko.VideoItem{
			ID:    rawURL,
			URL:   rawURL,
			Title: rawURL,
			Type:  neko.VideoTypeIframe,
		}, nil
	}
}

func (r *Resolver) resolveYouTube(ctx context.Context, rawURL string) (neko.VideoItem, error) {
	id := neko.YouTubeVideoID(rawURL)
	video, err := r.yt.GetVideoContext(ctx, id)
	if err != nil {
		return neko.VideoItem{}, fmt.Errorf("youtube lookup for %s: %w", id, err)
	}

	item := neko.VideoItem{
		ID:     video.ID,
		URL:    rawURL,
		Title:  video.Title,
		Author: video.Author,
		Type:   neko.VideoTypeYouTube,
	}
	if video.Duration > 0 {
		item.DurationMS = video.Duration.Milliseconds()
	} else {
		item.Live = true
	}
	return item, nil
}

func rawMediaTitle(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "." || base == "/" {
		return rawURL
	}
	return base
}
