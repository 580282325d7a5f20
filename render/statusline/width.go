package statusline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TruncateToWidth returns the longest prefix of s that occupies at most
// cols terminal columns. The walk is per code point: zero-width code
// points (combining marks, ZWJ, variation selectors, controls) attach to
// the preceding base character and are never split off by the cut. A cut
// that lands inside a joined emoji sequence drops the trailing joiner
// rather than emitting a half-open join. A non-positive budget disables
// truncation.
func TruncateToWidth(s string, cols int) string {
	if cols <= 0 {
		return s
	}

	width := 0
	cut := 0
	for i, r := range s {
		w := runeWidth(r)
		if w == 0 {
			// Part of the preceding cluster; keep it only if the walk
			// has not already stopped before its base.
			if cut == i {
				cut = i + utf8.RuneLen(r)
			}
			continue
		}
		if width+w > cols {
			break
		}
		width += w
		cut = i + utf8.RuneLen(r)
	}
	out := s[:cut]
	if cut < len(s) {
		out = strings.TrimRight(out, "‍")
	}
	return out
}

// DisplayWidth reports the number of terminal columns s occupies.
func DisplayWidth(s string) int {
	width := 0
	for _, r := range s {
		width += runeWidth(r)
	}
	return width
}

// runeWidth classifies one code point as occupying 0, 1, or 2 columns.
func runeWidth(r rune) int {
	switch {
	case r < 0x20, r >= 0x7F && r < 0xA0:
		return 0 // C0/C1 controls
	case r == 0x200B, r == 0x200C, r == 0x200D:
		return 0 // zero-width space/non-joiner/joiner
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0100 && r <= 0xE01EF:
		return 0 // variation selectors
	case unicode.Is(unicode.Mn, r), unicode.Is(unicode.Me, r):
		return 0 // combining marks
	case unicode.Is(wideRunes, r):
		return 2
	default:
		return 1
	}
}

// wideRunes covers East-Asian wide/fullwidth ranges plus the common
// pictographic/emoji blocks.
var wideRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x1100, Hi: 0x115F, Stride: 1}, // Hangul Jamo
		{Lo: 0x231A, Hi: 0x231B, Stride: 1}, // watch, hourglass
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // misc symbols and arrows
		{Lo: 0x2E80, Hi: 0x303E, Stride: 1}, // CJK radicals, punctuation
		{Lo: 0x3041, Hi: 0x33FF, Stride: 1}, // Kana, CJK symbols
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1}, // CJK ext A
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}, // CJK unified
		{Lo: 0xA000, Hi: 0xA4CF, Stride: 1}, // Yi
		{Lo: 0xA960, Hi: 0xA97F, Stride: 1}, // Hangul Jamo ext A
		{Lo: 0xAC00, Hi: 0xD7A3, Stride: 1}, // Hangul syllables
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1}, // CJK compat
		{Lo: 0xFE30, Hi: 0xFE4F, Stride: 1}, // CJK compat forms
		{Lo: 0xFF00, Hi: 0xFF60, Stride: 1}, // Fullwidth forms
		{Lo: 0xFFE0, Hi: 0xFFE6, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1F2FF, Stride: 1}, // mahjong, enclosed
		{Lo: 0x1F300, Hi: 0x1F64F, Stride: 1}, // pictographs, emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // symbols ext A
		{Lo: 0x20000, Hi: 0x2FFFD, Stride: 1}, // CJK ext B+
		{Lo: 0x30000, Hi: 0x3FFFD, Stride: 1},
	},
}
