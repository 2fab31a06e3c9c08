package playercore

import "github.com/mikey-austin/nekotv/pkg/neko"

// Backend is a playback surface for one family of video sources. At most one
// backend is attached to media at a time; the controller unloads the previous
// backend before loading into the next.
//
// Commands sent while IsReady reports false are dropped by the caller, and
// TimeMS/Rate fall back to 0 and 1 respectively.
type Backend interface {
	// Kind identifies the source family this backend plays.
	Kind() neko.VideoType

	// CanHandle reports whether this backend can play the given URL even
	// when the item's declared type does not match Kind.
	CanHandle(url string) bool

	// Load starts (asynchronously, if the surface needs scripts or
	// handshakes) playing the item from position zero.
	Load(item neko.VideoItem)

	// Unload detaches from the current media. The backend may keep warm
	// state so a later Load is cheaper.
	Unload()

	// IsReady reports whether the surface accepts playback commands.
	IsReady() bool

	Play()
	Pause()

	// TimeMS returns the current playback position in milliseconds.
	TimeMS() int64

	// SetTimeMS seeks to the given position in milliseconds.
	SetTimeMS(ms int64)

	// Rate returns the playback rate, 1 being normal speed.
	Rate() float64
	SetRate(rate float64)

	SetMuted(muted bool)
}
