package playercore

import (
	"log/slog"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// SyncThresholdMS is how far local playback may drift from the feed before
// the reconciler seeks. Values inside the window are left alone so minor
// jitter never causes visible jumps.
const SyncThresholdMS int64 = 1600

// resumeNudgeMS is added to the target on resume-class seeks to cover the
// time the surface spends buffering after the seek lands.
const resumeNudgeMS int64 = 500

// Reconciler applies feed events to local playback through the controller.
// It is not safe for concurrent use; the feed consumer serializes calls.
type Reconciler struct {
	controller *Controller
	logger     *slog.Logger
}

// NewReconciler wires a reconciler to a controller.
func NewReconciler(controller *Controller, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{controller: controller, logger: logger}
}

// Apply dispatches one feed message. Unknown or empty messages are dropped.
func (r *Reconciler) Apply(msg *neko.Message) {
	switch {
	case msg.Connected != nil:
		r.applyConnected(msg.Connected)
	case msg.AddVideo != nil:
		r.controller.AddItem(msg.AddVideo.Item, msg.AddVideo.AtEnd)
	case msg.RemoveVideo != nil:
		r.controller.RemoveItem(msg.RemoveVideo.URL)
	case msg.SkipVideo != nil:
		r.controller.SkipItem(msg.SkipVideo.URL)
	case msg.Pause != nil:
		r.applyPause(msg.Pause)
	case msg.Play != nil:
		r.applyPlay(msg.Play)
	case msg.GetTime != nil:
		r.applyGetTime(msg.GetTime)
	case msg.SetTime != nil:
		r.applySetTime(msg.SetTime)
	case msg.SetRate != nil:
		r.controller.SetRate(msg.SetRate.Rate)
	case msg.Rewind != nil:
		r.applyRewind(msg.Rewind)
	case msg.PlayItem != nil:
		r.controller.PlayItem(msg.PlayItem.Pos)
	case msg.SetNextItem != nil:
		r.controller.SetNextItem(msg.SetNextItem.Pos)
	case msg.UpdatePlaylist != nil:
		r.controller.SetItems(msg.UpdatePlaylist.Items, 0)
	case msg.TogglePlaylistLock != nil:
		r.controller.Playlist().SetOpen(msg.TogglePlaylistLock.Open)
	case msg.ClearPlaylist != nil:
		r.controller.ClearItems()
	default:
		r.logger.Debug("ignoring empty feed message")
	}
}

// applyConnected installs the full snapshot and then syncs playback state.
func (r *Reconciler) applyConnected(ev *neko.ConnectedEvent) {
	r.controller.SetItems(ev.Items, ev.ItemPos)
	r.controller.Playlist().SetOpen(ev.PlaylistOpen)
	if ev.GetTime != nil {
		r.applyGetTime(ev.GetTime)
	}
}

// applyPlay seeks first if drifted, then resumes. The nudge compensates for
// buffering after the resume.
func (r *Reconciler) applyPlay(ev *neko.PlayEvent) {
	local := r.controller.TimeMS()
	if abs64(ev.TimeMS-local) >= SyncThresholdMS {
		r.controller.SetTimeMS(ev.TimeMS + resumeNudgeMS)
	}
	r.controller.Play()
}

// applyPause seeks to the exact pause position, no threshold and no nudge,
// so every node freezes on the same frame.
func (r *Reconciler) applyPause(ev *neko.PauseEvent) {
	r.controller.SetTimeMS(ev.TimeMS)
	r.controller.Pause()
}

// applySetTime is a plain drift correction: seek only outside the threshold,
// no nudge.
func (r *Reconciler) applySetTime(ev *neko.SetTimeEvent) {
	local := r.controller.TimeMS()
	if abs64(ev.TimeMS-local) >= SyncThresholdMS {
		r.controller.SetTimeMS(ev.TimeMS)
	}
}

// applyGetTime is the periodic heartbeat: align rate, let the item run out
// naturally when it is about to end, match paused state, then correct drift.
func (r *Reconciler) applyGetTime(ev *neko.GetTimeEvent) {
	rate := ev.Rate
	if rate == 0 {
		rate = 1
	}
	if r.controller.Rate() != rate {
		r.controller.SetRate(rate)
	}

	local := r.controller.TimeMS()

	// Within a threshold of the end, the local player is about to fire
	// its own end-of-media transition; seeking now would replay the tail.
	if cur, ok := r.controller.Current(); ok {
		if cur.DurationMS > 0 && !cur.Live && cur.DurationMS <= local+SyncThresholdMS {
			return
		}
	}

	if ev.Paused {
		r.controller.Pause()
	} else {
		r.controller.Play()
	}

	if abs64(ev.TimeMS-local) >= SyncThresholdMS {
		target := ev.TimeMS
		if !ev.Paused {
			target += resumeNudgeMS
		}
		r.controller.SetTimeMS(target)
	}
}

// applyRewind always lands the seek; the server only sends it on an explicit
// user action, so the threshold does not apply.
func (r *Reconciler) applyRewind(ev *neko.RewindEvent) {
	r.controller.SetTimeMS(ev.TimeMS + resumeNudgeMS)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
