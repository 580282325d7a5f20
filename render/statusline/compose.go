package statusline

import (
	"strings"
	"time"

	"codexline/core"
)

// placeholder is emitted when every field derives to empty.
const placeholder = "(no data)"

// Options is the per-render configuration consumed read-only by field
// derivations and the composer.
type Options struct {
	// Minimal suppresses the approval, sandbox, activity, and directory
	// fields.
	Minimal bool

	// Labels overrides field labels. A present-but-empty override
	// suppresses the label while keeping the value.
	Labels map[Field]string

	// SoundGlyph is the externally supplied sound status glyph; empty
	// omits the sound field.
	SoundGlyph string

	// Now fixes the reference clock for age and rate-limit rendering.
	// Zero means the wall clock.
	Now time.Time

	// HomeDir overrides the home prefix stripped from directories.
	// Empty means the current user's home.
	HomeDir string
}

// ResolveOrder resolves, deduplicates, and validates a user-supplied
// field name list. An empty list yields the default order. Unknown names
// fail before any rendering happens.
func ResolveOrder(names []string) ([]Field, error) {
	if len(names) == 0 {
		return append([]Field(nil), DefaultOrder...), nil
	}

	var order []Field
	seen := make(map[Field]bool)
	for _, name := range names {
		f, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		order = append(order, f)
	}
	return order, nil
}

// ResolveLabels validates label override targets and keys the overrides
// by field.
func ResolveLabels(overrides map[string]string) (map[Field]string, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	labels := make(map[Field]string, len(overrides))
	for name, label := range overrides {
		f, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		labels[f] = label
	}
	return labels, nil
}

// Compose derives each field in order, skips empty values, and joins the
// surviving "{label}{value}" parts with single spaces.
func Compose(s *core.Session, order []Field, opts Options) string {
	fc := fieldContext{
		session: s,
		opts:    opts,
		now:     opts.Now,
		home:    opts.HomeDir,
	}
	if fc.now.IsZero() {
		fc.now = time.Now()
	}
	if fc.home == "" {
		fc.home = userHome()
	}

	var parts []string
	for _, f := range order {
		value := f.render(fc)
		if value == "" {
			continue
		}
		label, ok := opts.Labels[f]
		if !ok {
			label = f.Label()
		}
		parts = append(parts, label+value)
	}

	if len(parts) == 0 {
		return placeholder
	}
	return strings.Join(parts, " ")
}
