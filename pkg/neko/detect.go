package neko

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	reYouTubeWatch  = regexp.MustCompile(`youtube\.com.*v=([A-Za-z0-9_-]+)`)
	reYouTubeShort  = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]+)`)
	reYouTubeShorts = regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]+)`)
	reYouTubeEmbed  = regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]+)`)

	reTwitchChannel = regexp.MustCompile(`(?:https?://)?(?:www\.)?twitch\.tv/(\w+)/?`)
)

var rawMediaExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".ogv":  true,
	".mp3":  true,
	".ogg":  true,
	".m4a":  true,
	".m3u8": true,
}

// YouTubeVideoID extracts the video ID from a YouTube URL, or "".
func YouTubeVideoID(rawURL string) string {
	for _, re := range []*regexp.Regexp{reYouTubeWatch, reYouTubeShort, reYouTubeShorts, reYouTubeEmbed} {
		if match := re.FindStringSubmatch(rawURL); match != nil {
			return match[1]
		}
	}
	return ""
}

// TwitchChannel extracts the channel name from a Twitch URL, or "".
func TwitchChannel(rawURL string) string {
	match := reTwitchChannel.FindStringSubmatch(rawURL)
	if match == nil {
		return ""
	}
	return match[1]
}

// IsRawMediaURL reports whether the URL points at a directly playable file.
func IsRawMediaURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return rawMediaExtensions[ext]
}

// DetectType classifies a URL into the backend that should play it.
// Anything unrecognized falls back to a plain iframe embed.
func DetectType(rawURL string) VideoType {
	switch {
	case YouTubeVideoID(rawURL) != "":
		return VideoTypeYouTube
	case TwitchChannel(rawURL) != "":
		return VideoTypeTwitch
	case IsRawMediaURL(rawURL):
		return VideoTypeRaw
	default:
		return VideoTypeIframe
	}
}
