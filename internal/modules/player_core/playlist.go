package playercore

import (
	"sync"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Playlist holds the ordered queue of video items and the current position.
// Position is meaningless while the list is empty; every accessor treats the
// empty list as a distinct case instead of trusting pos == 0.
type Playlist struct {
	mu    sync.Mutex
	items []neko.VideoItem
	pos   int
	open  bool
}

// NewPlaylist creates an empty, unlocked playlist.
func NewPlaylist() *Playlist {
	return &Playlist{open: true}
}

// Length returns the number of items.
func (p *Playlist) Length() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Pos returns the current position.
func (p *Playlist) Pos() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Current returns the item at the current position, if any.
func (p *Playlist) Current() (neko.VideoItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 || p.pos < 0 || p.pos >= len(p.items) {
		return neko.VideoItem{}, false
	}
	return p.items[p.pos], true
}

// Item returns the item at index i, if in range.
func (p *Playlist) Item(i int) (neko.VideoItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.items) {
		return neko.VideoItem{}, false
	}
	return p.items[i], true
}

// Items returns a copy of the item sequence.
func (p *Playlist) Items() []neko.VideoItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]neko.VideoItem, len(p.items))
	copy(items, p.items)
	return items
}

// SetItems replaces the list wholesale and resets the position to 0.
func (p *Playlist) SetItems(items []neko.VideoItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = append(p.items[:0:0], items...)
	p.pos = 0
}

// SetPos moves the position to i. Out-of-range values reset to 0: the safe
// default is the first item, never an error.
func (p *Playlist) SetPos(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i > len(p.items)-1 {
		i = 0
	}
	p.pos = i
}

// AddItem appends the item, or inserts it just after the current position.
// The position itself never moves.
func (p *Playlist) AddItem(item neko.VideoItem, atEnd bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if atEnd || len(p.items) == 0 {
		p.items = append(p.items, item)
		return
	}
	at := p.pos + 1
	p.items = append(p.items[:at], append([]neko.VideoItem{item}, p.items[at:]...)...)
}

// RemoveItem removes the element at index. An index left of the position
// drags the position down by one so the current item keeps its identity;
// a position that falls off the end resets to 0.
func (p *Playlist) RemoveItem(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.items) {
		return
	}
	if index < p.pos {
		p.pos--
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	if p.pos >= len(p.items) {
		p.pos = 0
	}
}

// SetNextItem removes the item at nextPos and reinserts it immediately after
// the current item, preserving the current item's identity.
func (p *Playlist) SetNextItem(nextPos int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if nextPos < 0 || nextPos >= len(p.items) || nextPos == p.pos {
		return
	}
	next := p.items[nextPos]
	p.items = append(p.items[:nextPos], p.items[nextPos+1:]...)
	if nextPos < p.pos {
		p.pos--
	}
	at := p.pos + 1
	p.items = append(p.items[:at], append([]neko.VideoItem{next}, p.items[at:]...)...)
}

// Skip advances past the current item: a temporary item is removed in place,
// anything else is stepped over. Either way the position wraps to 0 when it
// runs off the end.
func (p *Playlist) Skip() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 {
		return
	}
	if p.items[p.pos].Temp {
		p.items = append(p.items[:p.pos], p.items[p.pos+1:]...)
	} else {
		p.pos++
	}
	if p.pos >= len(p.items) {
		p.pos = 0
	}
}

// Clear empties the list and resets the position.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = nil
	p.pos = 0
}

// FindIndex returns the first index matching f, or -1.
func (p *Playlist) FindIndex(f func(item neko.VideoItem) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, item := range p.items {
		if f(item) {
			return i
		}
	}
	return -1
}

// Exists reports whether any item matches f.
func (p *Playlist) Exists(f func(item neko.VideoItem) bool) bool {
	return p.FindIndex(f) != -1
}

// SetOpen records whether the playlist accepts edits from regular users.
func (p *Playlist) SetOpen(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = open
}

// IsOpen reports the playlist lock state.
func (p *Playlist) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
