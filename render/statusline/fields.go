// Package statusline composes a session's state into one bounded-width
// status line from a fixed catalog of display fields.
package statusline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codexline/core"
)

// Field enumerates the display fields. The set is closed: every field
// carries its derivation in render, so a new field cannot be added
// without the switch statements catching up.
type Field int

const (
	FieldSound Field = iota
	FieldTime
	FieldActivity
	FieldDaily
	FieldWeekly
	FieldRecent
	FieldTotal
	FieldError
	FieldModel
	FieldApproval
	FieldSandbox
	FieldDirectory
)

// DefaultOrder is the composition order when no explicit format is
// configured: status fields first, identity/location fields trailing.
var DefaultOrder = []Field{
	FieldSound, FieldTime, FieldActivity,
	FieldDaily, FieldWeekly, FieldRecent, FieldTotal,
	FieldError, FieldModel, FieldApproval, FieldSandbox, FieldDirectory,
}

// Key returns the canonical field name.
func (f Field) Key() string {
	switch f {
	case FieldSound:
		return "sound"
	case FieldTime:
		return "time"
	case FieldActivity:
		return "activity"
	case FieldDaily:
		return "daily"
	case FieldWeekly:
		return "weekly"
	case FieldRecent:
		return "recent"
	case FieldTotal:
		return "total"
	case FieldError:
		return "error"
	case FieldModel:
		return "model"
	case FieldApproval:
		return "approval"
	case FieldSandbox:
		return "sandbox"
	case FieldDirectory:
		return "directory"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Label returns the field's default label/icon. Fields whose value is
// itself a glyph (sound, activity) carry no label.
func (f Field) Label() string {
	switch f {
	case FieldTime:
		return "🕒"
	case FieldDaily:
		return "🕔"
	case FieldWeekly:
		return "🗓"
	case FieldRecent:
		return "🔄"
	case FieldTotal:
		return "📊"
	case FieldError:
		return "⚠️"
	case FieldModel:
		return "🤖"
	case FieldApproval:
		return "✅"
	case FieldSandbox:
		return "🛡️"
	case FieldDirectory:
		return "📁"
	default:
		return ""
	}
}

// aliases maps accepted field names, lowercased, to fields.
var aliases = map[string]Field{
	"sound":     FieldSound,
	"time":      FieldTime,
	"age":       FieldTime,
	"activity":  FieldActivity,
	"status":    FieldActivity,
	"daily":     FieldDaily,
	"primary":   FieldDaily,
	"weekly":    FieldWeekly,
	"secondary": FieldWeekly,
	"recent":    FieldRecent,
	"last":      FieldRecent,
	"total":     FieldTotal,
	"tokens":    FieldTotal,
	"error":     FieldError,
	"err":       FieldError,
	"model":     FieldModel,
	"approval":  FieldApproval,
	"sandbox":   FieldSandbox,
	"directory": FieldDirectory,
	"dir":       FieldDirectory,
	"cwd":       FieldDirectory,
	"folder":    FieldDirectory,
}

// Resolve maps a user-supplied field name to its Field. Unknown names
// are a configuration error.
func Resolve(name string) (Field, error) {
	f, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

// fieldContext carries everything a derivation may consult. Derivations
// never fail: missing or malformed nested data yields an empty value,
// which omits the field.
type fieldContext struct {
	session *core.Session
	opts    Options
	now     time.Time
	home    string
}

func (fc fieldContext) context() *core.TurnContext { return fc.session.Context }

func (fc fieldContext) info() *core.TokenInfo {
	if fc.session.Tokens == nil {
		return nil
	}
	return fc.session.Tokens.Info
}

func (fc fieldContext) rateLimits() *core.RateLimits {
	if fc.session.Tokens == nil {
		return nil
	}
	return fc.session.Tokens.RateLimits
}

// render derives the field's display value, or "" to omit the field.
func (f Field) render(fc fieldContext) string {
	switch f {
	case FieldSound:
		return fc.opts.SoundGlyph

	case FieldTime:
		if fc.session.Ref.ModifiedAt.IsZero() {
			return ""
		}
		return core.CompactAge(fc.now.Sub(fc.session.Ref.ModifiedAt))

	case FieldActivity:
		if fc.opts.Minimal {
			return ""
		}
		return fc.session.Activity.Icon()

	case FieldDaily:
		if rl := fc.rateLimits(); rl != nil {
			return renderWindow(rl.Primary, fc.now)
		}
		return ""

	case FieldWeekly:
		if rl := fc.rateLimits(); rl != nil {
			return renderWindow(rl.Secondary, fc.now)
		}
		return ""

	case FieldRecent:
		info := fc.info()
		if info == nil {
			return ""
		}
		// "n/a" distinguishes a snapshot that lacks the last-usage
		// sub-field from one that was never reported.
		if info.Last == nil {
			return "n/a"
		}
		return core.CompactCount(info.Last.TotalTokens)

	case FieldTotal:
		info := fc.info()
		if info == nil || info.Total == nil {
			return ""
		}
		return core.CompactCount(info.Total.TotalTokens)

	case FieldError:
		return fc.session.Err

	case FieldModel:
		if ctx := fc.context(); ctx != nil {
			return trimModel(ctx.Model)
		}
		return ""

	case FieldApproval:
		if fc.opts.Minimal {
			return ""
		}
		if ctx := fc.context(); ctx != nil {
			return ctx.ApprovalPolicy
		}
		return ""

	case FieldSandbox:
		if fc.opts.Minimal {
			return ""
		}
		ctx := fc.context()
		if ctx == nil || ctx.SandboxPolicy.Mode == "" {
			return ""
		}
		mode := ctx.SandboxPolicy.Mode
		if na := ctx.SandboxPolicy.NetworkAccess; na != nil && !*na {
			mode += "!net"
		}
		return mode

	case FieldDirectory:
		if fc.opts.Minimal {
			return ""
		}
		if ctx := fc.context(); ctx != nil {
			return trimDirectory(ctx.Cwd, fc.home)
		}
		return ""

	default:
		return ""
	}
}

// renderWindow formats a rate-limit window as "12%/15:04" for a reset on
// the same calendar day, "34%/01/02" otherwise, or bare "12%" when no
// reset time is known.
func renderWindow(w *core.RateLimitWindow, now time.Time) string {
	if w == nil {
		return ""
	}
	pct := fmt.Sprintf("%d%%", int(math.Round(w.UsedPercent)))
	reset, ok := w.ResetTime(now)
	if !ok {
		return pct
	}
	return pct + "/" + formatResetTarget(reset, now)
}

func formatResetTarget(reset, now time.Time) string {
	ry, rm, rd := reset.Date()
	ny, nm, nd := now.Date()
	if ry == ny && rm == nm && rd == nd {
		return reset.Format("15:04")
	}
	return reset.Format("01/02")
}

// modelPrefixes are vendor prefixes stripped from model ids for brevity.
var modelPrefixes = []string{"openai/", "gpt-"}

func trimModel(model string) string {
	for _, prefix := range modelPrefixes {
		if rest, ok := strings.CutPrefix(model, prefix); ok && rest != "" {
			return rest
		}
	}
	return model
}

// trimDirectory strips the home prefix and a single leading "dev" path
// segment, falling back to "." when nothing remains.
func trimDirectory(cwd, home string) string {
	if cwd == "" {
		return ""
	}
	dir := cwd
	if home != "" {
		if rest, ok := strings.CutPrefix(dir, home); ok {
			dir = rest
		}
	}
	dir = strings.TrimPrefix(dir, string(filepath.Separator))
	parts := strings.Split(dir, string(filepath.Separator))
	if len(parts) > 0 && parts[0] == "dev" {
		parts = parts[1:]
	}
	dir = strings.Join(parts, string(filepath.Separator))
	if dir == "" {
		return "."
	}
	return dir
}

func userHome() string {
	home, _ := os.UserHomeDir()
	return home
}
