package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/fsnotify/fsnotify"

	"codexline/core"
	"codexline/reader"
	"codexline/render/statusline"
	"codexline/sound"
)

var (
	colorDim = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}

	styleHeader = lipgloss.NewStyle().Bold(true)
	styleHelp   = lipgloss.NewStyle().Foreground(colorDim)
)

// wakeDebounce is how long a burst of file events must settle before it
// wakes the refresh loop. An actively appended rollout produces a write
// per record; without coalescing each one would trigger a full re-read.
const wakeDebounce = 100 * time.Millisecond

// Driver runs the repeating refresh: discover sessions, fold each log,
// render status lines, and fire advisory sound requests on activity
// transitions.
type Driver struct {
	Reader   reader.Source
	Renderer *statusline.Renderer
	Notifier sound.Notifier
	Out      io.Writer

	// In is the keyboard source for live toggles; nil disables them.
	In *os.File

	Interval time.Duration
	Limit    int
	Settings Settings

	// soundConfigured records whether the watch was started with sound
	// on; the sound glyph is only shown in that case.
	soundConfigured bool

	triggers   map[string]*Trigger
	cached     []*core.Session
	watched    map[string]bool
	refreshing atomic.Bool
}

// Run drives refresh cycles until the context is cancelled or the quit
// key is pressed. A refresh still in flight when the next wakeup arrives
// is skipped entirely, never queued.
func (d *Driver) Run(ctx context.Context) error {
	d.soundConfigured = d.Settings.Mode != sound.ModeOff
	d.triggers = make(map[string]*Trigger)
	d.watched = make(map[string]bool)

	// The deferred restore keeps every return path synchronous: the quit
	// key and error returns must not race process exit for the terminal
	// state. The ctx goroutine inside startKeyboard only backstops
	// signal-driven cancellation.
	keys, restoreTerminal := d.startKeyboard(ctx)
	defer restoreTerminal()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	// File events only wake the loop early; the interval remains the
	// refresh contract.
	wake := make(chan struct{}, 1)
	go forwardEvents(fsw.Events, fsw.Errors, wake, wakeDebounce)

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	d.refresh(fsw)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.refresh(fsw)
		case <-wake:
			d.refresh(fsw)
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			next, changed := Reduce(d.Settings, key)
			if !changed {
				continue
			}
			if next.Quit {
				return nil
			}
			d.Settings = next
			for _, trg := range d.triggers {
				trg.SetMode(next.Mode)
			}
			// Redraw from the cached pass; no new log scan.
			d.redraw()
		}
	}
}

// forwardEvents coalesces file events into single wakeups: a burst of
// writes within delay yields one wake after the burst settles. Returns
// when the events channel closes.
func forwardEvents(events <-chan fsnotify.Event, errs <-chan error, wake chan<- struct{}, delay time.Duration) {
	debounce := time.NewTimer(delay)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			if !debounce.Stop() && pending {
				<-debounce.C
			}
			debounce.Reset(delay)
			pending = true
		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			select {
			case wake <- struct{}{}:
			default:
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Debug("file watcher error", "error", err)
		}
	}
}

// startKeyboard switches stdin to raw mode when it is a terminal and
// streams keypresses. Returns a nil channel (never ready) when keyboard
// input is unavailable. The returned restore func is idempotent and
// always safe to call.
func (d *Driver) startKeyboard(ctx context.Context) (<-chan rune, func()) {
	if d.In == nil || !term.IsTerminal(d.In.Fd()) {
		return nil, func() {}
	}

	state, err := term.MakeRaw(d.In.Fd())
	if err != nil {
		log.Debug("raw mode unavailable", "error", err)
		return nil, func() {}
	}

	var once sync.Once
	restore := func() {
		once.Do(func() { _ = term.Restore(d.In.Fd(), state) })
	}
	go func() {
		<-ctx.Done()
		restore()
	}()

	keys := make(chan rune)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := d.In.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 0 {
				continue
			}
			select {
			case keys <- rune(buf[0]):
			case <-ctx.Done():
				return
			}
		}
	}()
	return keys, restore
}

// refresh runs one full discover→read→compose pass. The in-flight guard
// bounds resource use when a pass outlives the interval.
func (d *Driver) refresh(fsw *fsnotify.Watcher) {
	if !d.refreshing.CompareAndSwap(false, true) {
		log.Debug("refresh already in flight, skipping")
		return
	}
	defer d.refreshing.Store(false)

	refs, err := d.Reader.Sessions(d.Limit)
	if err != nil {
		log.Warn("session discovery failed", "error", err)
		return
	}

	sessions := make([]*core.Session, 0, len(refs))
	current := make(map[string]bool, len(refs))
	for _, ref := range refs {
		current[ref.Path] = true
		s := d.Reader.ReadSession(ref)
		sessions = append(sessions, s)

		trg, ok := d.triggers[ref.Path]
		if !ok {
			trg = NewTrigger(d.Settings.Mode)
			d.triggers[ref.Path] = trg
		}
		if trg.Observe(s.Activity, s.LastTimestamp) && d.Settings.Mode != sound.ModeOff && d.Notifier != nil {
			d.Notifier.Notify(sound.Request{
				Activity: s.Activity,
				Mode:     d.Settings.Mode,
				Volume:   d.Settings.Volume,
				Reverb:   d.Settings.Reverb,
			})
		}

		if dir := filepath.Dir(ref.Path); !d.watched[dir] {
			if err := fsw.Add(dir); err == nil {
				d.watched[dir] = true
			}
		}
	}

	// Trigger state for sessions outside the discovery window is dead
	// weight; drop it so a long-running watch stays bounded.
	for path := range d.triggers {
		if !current[path] {
			delete(d.triggers, path)
		}
	}

	d.cached = sessions
	d.redraw()
}

// redraw repaints the whole frame from the cached session pass.
func (d *Driver) redraw() {
	d.Renderer.Options.SoundGlyph = d.soundGlyph()

	var buf bytes.Buffer
	fmt.Fprintln(&buf, styleHeader.Render(d.headerLine()))
	fmt.Fprintln(&buf)

	if len(d.cached) == 0 {
		fmt.Fprintln(&buf, "no sessions found")
	}
	for _, s := range d.cached {
		if err := d.Renderer.Render(&buf, s); err != nil {
			log.Warn("render failed", "path", s.Ref.Path, "error", err)
		}
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, styleHelp.Render(d.helpLine()))

	// Clear and home, then repaint. Raw mode needs explicit carriage
	// returns.
	frame := strings.ReplaceAll(buf.String(), "\n", "\r\n")
	fmt.Fprint(d.Out, "\x1b[2J\x1b[H"+frame)
}

func (d *Driver) headerLine() string {
	header := fmt.Sprintf("codexline · %d session(s)", len(d.cached))
	if len(d.cached) > 0 {
		header += " · active " + core.RelativeTime(d.cached[0].Ref.ModifiedAt)
	}
	return header
}

func (d *Driver) helpLine() string {
	status := fmt.Sprintf("sound %s · vol %d · reverb %s",
		d.Settings.Mode, d.Settings.Volume, d.Settings.Reverb)
	return status + "   [m]ute  [r]everb  [+/-] volume  [q]uit"
}

func (d *Driver) soundGlyph() string {
	if !d.soundConfigured {
		return ""
	}
	if d.Settings.Mode == sound.ModeOff {
		return "🔇"
	}
	return "🔊"
}
