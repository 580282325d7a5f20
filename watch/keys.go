package watch

import "codexline/sound"

// Settings are the live-adjustable watch options. Keypresses reduce one
// Settings value to the next; the redraw happens as an effect afterward,
// so no shared option object is mutated in place.
type Settings struct {
	Mode   sound.Mode
	Volume int
	Reverb sound.Reverb
	Quit   bool

	// lastMode remembers the audible mode across a mute toggle.
	lastMode sound.Mode
}

const (
	keyMute      = 'm'
	keyReverb    = 'r'
	keyVolumeUp  = '+'
	keyVolumeUp2 = '='
	keyVolumeDn  = '-'
	keyQuit      = 'q'
	keyInterrupt = 0x03 // Ctrl-C
)

// Reduce applies one keypress to the settings and reports whether
// anything changed (a change warrants an immediate redraw).
func Reduce(s Settings, key rune) (Settings, bool) {
	switch key {
	case keyMute:
		if s.Mode != sound.ModeOff {
			s.lastMode = s.Mode
			s.Mode = sound.ModeOff
		} else if s.lastMode != "" && s.lastMode != sound.ModeOff {
			s.Mode = s.lastMode
		} else {
			s.Mode = sound.ModeAll
		}
		return s, true

	case keyReverb:
		s.Reverb = s.Reverb.Cycle()
		return s, true

	case keyVolumeUp, keyVolumeUp2:
		s.Volume = min(s.Volume+10, 100)
		return s, true

	case keyVolumeDn:
		s.Volume = max(s.Volume-10, 1)
		return s, true

	case keyQuit, keyInterrupt:
		s.Quit = true
		return s, true

	default:
		return s, false
	}
}
