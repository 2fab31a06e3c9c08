package playercore

import (
	"sync"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// ScriptState tracks how far a script-backed surface has come towards
// accepting loads.
type ScriptState int

const (
	// ScriptUninitialized means no script injection has been attempted.
	ScriptUninitialized ScriptState = iota
	// ScriptLoading means injection started but the script has not
	// signalled readiness.
	ScriptLoading
	// ScriptLoaded means the script is ready but no player is attached.
	ScriptLoaded
	// PlayerAttached means a player exists and loads go straight through.
	PlayerAttached
)

// ScriptAction tells the backend what to do after submitting an item.
type ScriptAction int

const (
	// ActionNone: the item was queued; nothing to do until a callback.
	ActionNone ScriptAction = iota
	// ActionInject: start script injection, then call ScriptReady.
	ActionInject
	// ActionAttach: the script is ready; create a player for the item.
	ActionAttach
	// ActionLoad: a player is attached; load the item directly.
	ActionLoad
)

// ScriptGate serializes loads against an asynchronously initializing player
// script. While the script or player is coming up it keeps only the most
// recent pending item; earlier requests are superseded, never queued.
type ScriptGate struct {
	mu      sync.Mutex
	state   ScriptState
	pending *neko.VideoItem
}

// NewScriptGate returns a gate in the uninitialized state.
func NewScriptGate() *ScriptGate {
	return &ScriptGate{}
}

// State returns the current script state.
func (g *ScriptGate) State() ScriptState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Submit records a load request and returns the action the backend should
// take. Any previously pending item is replaced.
func (g *ScriptGate) Submit(item neko.VideoItem) ScriptAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case ScriptUninitialized:
		g.pending = &item
		g.state = ScriptLoading
		return ActionInject
	case ScriptLoading:
		g.pending = &item
		return ActionNone
	case ScriptLoaded:
		g.pending = &item
		return ActionAttach
	default: // PlayerAttached
		g.pending = nil
		return ActionLoad
	}
}

// ScriptReady moves the gate to the loaded state and returns the pending
// item, if one survived the wait.
func (g *ScriptGate) ScriptReady() (neko.VideoItem, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == ScriptLoading {
		g.state = ScriptLoaded
	}
	if g.pending == nil {
		return neko.VideoItem{}, false
	}
	item := *g.pending
	return item, true
}

// Attached marks a player as created and clears the pending item. The caller
// loads the item returned by ScriptReady into the new player itself.
func (g *ScriptGate) Attached() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = PlayerAttached
	g.pending = nil
}

// Unload detaches the player but keeps the script warm: a gate that reached
// PlayerAttached drops back to ScriptLoaded, so the next load only needs a
// new player, not a new script. Earlier states just drop the pending item.
func (g *ScriptGate) Unload() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == PlayerAttached {
		g.state = ScriptLoaded
	}
	g.pending = nil
}
