package ports

import (
	"context"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Broker publishes control commands and reads retained player state.
type Broker interface {
	PublishControl(ctx context.Context, thread string, ctl neko.Control) error
	GetPlayerState(ctx context.Context, thread string, nodeID string) (neko.PlayerState, error)
	ListPlayerStates(ctx context.Context, thread string) ([]neko.PlayerState, error)
	WatchPlayerState(ctx context.Context, thread string, nodeID string) (<-chan neko.PlayerState, <-chan error)
}

// Clock returns the current unix time in seconds.
type Clock interface {
	NowUnix() int64
}

// IDGen returns unique correlation IDs.
type IDGen interface {
	NewID() string
}

// MediaResolver turns a URL into a playlist item with metadata filled in.
type MediaResolver interface {
	Resolve(ctx context.Context, url string) (neko.VideoItem, error)
}
