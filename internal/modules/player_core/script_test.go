package playercore

import "testing"

func TestScriptGateColdStart(t *testing.T) {
	g := NewScriptGate()

	if action := g.Submit(item("a")); action != ActionInject {
		t.Fatalf("action = %v, want inject", action)
	}
	if g.State() != ScriptLoading {
		t.Fatalf("state = %v, want loading", g.State())
	}

	pending, ok := g.ScriptReady()
	if !ok || pending.URL != "a" {
		t.Fatalf("pending = %v, %v", pending.URL, ok)
	}
	if g.State() != ScriptLoaded {
		t.Fatalf("state = %v, want loaded", g.State())
	}

	g.Attached()
	if g.State() != PlayerAttached {
		t.Fatalf("state = %v, want attached", g.State())
	}
}

func TestScriptGateKeepsOnlyLatestPending(t *testing.T) {
	g := NewScriptGate()
	g.Submit(item("a"))
	if action := g.Submit(item("b")); action != ActionNone {
		t.Fatalf("action = %v, want none while loading", action)
	}
	g.Submit(item("c"))

	pending, ok := g.ScriptReady()
	if !ok || pending.URL != "c" {
		t.Fatalf("pending = %v, want c", pending.URL)
	}
}

func TestScriptGateLoadedGoesStraightToAttach(t *testing.T) {
	g := NewScriptGate()
	g.Submit(item("a"))
	g.ScriptReady()
	g.Attached()
	g.Unload()

	if g.State() != ScriptLoaded {
		t.Fatalf("state = %v, want loaded after unload", g.State())
	}
	if action := g.Submit(item("b")); action != ActionAttach {
		t.Fatalf("action = %v, want attach with warm script", action)
	}
}

func TestScriptGateAttachedLoadsDirectly(t *testing.T) {
	g := NewScriptGate()
	g.Submit(item("a"))
	g.ScriptReady()
	g.Attached()

	if action := g.Submit(item("b")); action != ActionLoad {
		t.Fatalf("action = %v, want load", action)
	}
}

func TestScriptGateUnloadWhileLoadingDropsPending(t *testing.T) {
	g := NewScriptGate()
	g.Submit(item("a"))
	g.Unload()

	if _, ok := g.ScriptReady(); ok {
		t.Fatalf("pending item survived unload")
	}
}

func TestScriptGateAttachedClearsPending(t *testing.T) {
	g := NewScriptGate()
	g.Submit(item("a"))
	g.ScriptReady()
	g.Submit(item("b"))
	g.Attached()

	if _, ok := g.ScriptReady(); ok {
		t.Fatalf("pending item survived attach")
	}
}
