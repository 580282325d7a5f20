// Package sound is the boundary to the audio collaborator: the watch
// driver hands it advisory trigger requests and never waits on playback.
// Tone synthesis itself lives outside this module; the bundled Bell
// notifier only rings the terminal bell.
package sound

import (
	"fmt"
	"io"

	"codexline/core"
)

// Mode selects which activity transitions request a sound.
type Mode string

const (
	ModeOff       Mode = "off"
	ModeAll       Mode = "all"
	ModeSome      Mode = "some"
	ModeAssistant Mode = "assistant"
)

// ParseMode validates a sound mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOff, ModeAll, ModeSome, ModeAssistant:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown sound mode %q", s)
	}
}

// Reverb names the reverb preset passed through to the collaborator.
type Reverb string

const (
	ReverbNone    Reverb = "none"
	ReverbSubtle  Reverb = "subtle"
	ReverbDefault Reverb = "default"
	ReverbLush    Reverb = "lush"
)

// ParseReverb validates a reverb preset string.
func ParseReverb(s string) (Reverb, error) {
	switch Reverb(s) {
	case ReverbNone, ReverbSubtle, ReverbDefault, ReverbLush:
		return Reverb(s), nil
	default:
		return "", fmt.Errorf("unknown reverb preset %q", s)
	}
}

// Cycle returns the next preset in the none→subtle→default→lush cycle.
func (r Reverb) Cycle() Reverb {
	switch r {
	case ReverbNone:
		return ReverbSubtle
	case ReverbSubtle:
		return ReverbDefault
	case ReverbDefault:
		return ReverbLush
	default:
		return ReverbNone
	}
}

// Request is one advisory trigger: new activity of this kind was
// observed, play something appropriate. No response is consumed.
type Request struct {
	Activity core.Activity
	Mode     Mode
	Volume   int // 1..100
	Reverb   Reverb
}

// Notifier receives trigger requests. Implementations own any tone
// caches they need; the driver constructs one notifier and injects it.
type Notifier interface {
	Notify(Request)
}

// Bell rings the terminal bell for every request. It ignores volume and
// reverb, which only a real synthesizer can honor.
type Bell struct {
	W io.Writer
}

// Notify writes a BEL to the underlying writer.
func (b *Bell) Notify(Request) {
	fmt.Fprint(b.W, "\a")
}

// Discard swallows every request. Used when sound is off.
type Discard struct{}

func (Discard) Notify(Request) {}
