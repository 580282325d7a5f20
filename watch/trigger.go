// Package watch repeatedly refreshes the discover→read→compose pipeline,
// tracks activity transitions to decide when the sound collaborator
// should fire, and applies live keyboard reconfiguration.
package watch

import (
	"time"

	"codexline/core"
	"codexline/sound"
)

// Trigger decides, per session, whether an observed activity transition
// warrants a sound request. The first observation only records state so
// an already-old activity never fires on startup; it still advances the
// some-mode counter.
type Trigger struct {
	mode          sound.Mode
	seen          bool
	lastActivity  core.Activity
	lastTimestamp time.Time
	counter       int
}

// NewTrigger creates a Trigger for the given mode.
func NewTrigger(mode sound.Mode) *Trigger {
	return &Trigger{mode: mode}
}

// SetMode switches the trigger mode in place. The transition state and
// counter carry over.
func (t *Trigger) SetMode(mode sound.Mode) {
	t.mode = mode
}

// Observe feeds one refresh observation and reports whether a sound
// should be requested. A transition is a current timestamp strictly
// after the last-seen one; equal or older timestamps are ignored.
// Out-of-order timestamps from a skewed log defeat this detection; that
// is an accepted limitation.
func (t *Trigger) Observe(activity core.Activity, ts time.Time) bool {
	if activity == "" || ts.IsZero() {
		return false
	}
	if !t.seen {
		t.seen = true
		t.lastActivity = activity
		t.lastTimestamp = ts
		t.decide(activity)
		return false
	}
	if !ts.After(t.lastTimestamp) {
		return false
	}
	t.lastActivity = activity
	t.lastTimestamp = ts
	return t.decide(activity)
}

func (t *Trigger) decide(activity core.Activity) bool {
	switch t.mode {
	case sound.ModeAssistant:
		return activity == core.ActivityAssistant

	case sound.ModeAll:
		return activity != core.ActivityUser

	case sound.ModeSome:
		switch activity {
		case core.ActivityAssistant:
			return true
		case core.ActivityUser:
			return false
		default:
			t.counter++
			return t.counter%2 == 0 || t.counter%3 == 0
		}

	default: // off
		return false
	}
}
