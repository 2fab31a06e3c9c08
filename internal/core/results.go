package core

import "github.com/mikey-austin/nekotv/pkg/neko"

// NodesResult lists the watch nodes seen in a thread.
type NodesResult struct {
	Thread string
	Nodes  []neko.PlayerState
}

// StatusResult holds one watch node's player state.
type StatusResult struct {
	Thread string
	State  neko.PlayerState
}

// PlaylistResult holds a node's view of the thread playlist.
type PlaylistResult struct {
	Thread  string
	ItemPos int
	Items   []neko.VideoItem
}

// AddResult reports the item that was queued.
type AddResult struct {
	Thread string
	Item   neko.VideoItem
	AtEnd  bool
}

// ControlResult reports an acknowledged fire-and-forget command.
type ControlResult struct {
	Thread string
	Type   string
}
