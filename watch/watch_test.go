package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codexline/core"
	"codexline/render/statusline"
	"codexline/sound"
)

// fakeSource serves a fixed ref list so refresh can run without logs on
// disk.
type fakeSource struct {
	refs []core.SessionRef
}

func (f *fakeSource) Sessions(limit int) ([]core.SessionRef, error) {
	return f.refs, nil
}

func (f *fakeSource) ReadSession(ref core.SessionRef) *core.Session {
	return &core.Session{Ref: ref, Activity: core.ActivityTool, LastTimestamp: ref.ModifiedAt}
}

func TestStartKeyboardWithoutTerminal(t *testing.T) {
	d := &Driver{}
	keys, restore := d.startKeyboard(context.Background())
	assert.Nil(t, keys)
	require.NotNil(t, restore)

	// Restore must be safe on every return path, called any number of
	// times.
	restore()
	restore()

	f, err := os.Create(filepath.Join(t.TempDir(), "not-a-tty"))
	require.NoError(t, err)
	defer f.Close()

	d = &Driver{In: f}
	keys, restore = d.startKeyboard(context.Background())
	assert.Nil(t, keys)
	restore()
	restore()
}

func TestForwardEventsCoalescesBursts(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	wake := make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		forwardEvents(events, errs, wake, 20*time.Millisecond)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		events <- fsnotify.Event{Name: "rollout.jsonl", Op: fsnotify.Write}
	}

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("burst never produced a wakeup")
	}

	// The whole burst settles into exactly one wakeup.
	select {
	case <-wake:
		t.Fatal("burst produced more than one wakeup")
	case <-time.After(100 * time.Millisecond):
	}

	// A fresh event after the quiet period wakes again.
	events <- fsnotify.Event{Name: "rollout.jsonl", Op: fsnotify.Write}
	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("follow-up event never produced a wakeup")
	}

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop on channel close")
	}
}

func TestForwardEventsIgnoresErrors(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error, 1)
	wake := make(chan struct{}, 1)

	go forwardEvents(events, errs, wake, 10*time.Millisecond)
	defer close(events)

	errs <- os.ErrPermission

	select {
	case <-wake:
		t.Fatal("watcher error produced a wakeup")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefreshPrunesDepartedTriggers(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	a := core.SessionRef{Path: filepath.Join(dir, "a.jsonl"), ModifiedAt: now}
	b := core.SessionRef{Path: filepath.Join(dir, "b.jsonl"), ModifiedAt: now}

	src := &fakeSource{refs: []core.SessionRef{a, b}}
	d := &Driver{
		Reader:   src,
		Renderer: &statusline.Renderer{Width: -1},
		Out:      io.Discard,
		Settings: Settings{Mode: sound.ModeOff, Volume: 50},
		triggers: make(map[string]*Trigger),
		watched:  make(map[string]bool),
	}

	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	d.refresh(fsw)
	assert.Len(t, d.triggers, 2)

	// b falls out of the discovery window; its trigger state goes with it.
	src.refs = []core.SessionRef{a}
	d.refresh(fsw)

	assert.Len(t, d.triggers, 1)
	assert.Contains(t, d.triggers, a.Path)
	assert.NotContains(t, d.triggers, b.Path)
}
