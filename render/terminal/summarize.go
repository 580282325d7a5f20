package terminal

import (
	"fmt"
	"strings"

	"codexline/core"
)

// summarizeFinding reduces a finding to a display title plus a dim detail
// suffix like "(P1 high)  core/session.go:42-48".
func summarizeFinding(f core.Finding) (title, detail string) {
	title = strings.TrimSpace(f.Title)
	if title == "" {
		title = strings.TrimSpace(f.Body)
	}
	if title == "" {
		title = "finding"
	}

	var parts []string
	var tags []string
	if f.Priority != nil {
		tags = append(tags, fmt.Sprintf("P%d", *f.Priority))
	}
	if f.Severity != "" {
		tags = append(tags, strings.ToLower(f.Severity))
	}
	if len(tags) > 0 {
		parts = append(parts, "("+strings.Join(tags, " ")+")")
	}
	if loc := formatLocation(f.Location); loc != "" {
		parts = append(parts, loc)
	}
	return title, strings.Join(parts, "  ")
}

// formatLocation renders a code location as file:start-end.
func formatLocation(l *core.Location) string {
	if l == nil {
		return ""
	}
	switch {
	case l.File == "":
		if l.StartLine > 0 {
			return fmt.Sprintf("line %d", l.StartLine)
		}
		return ""
	case l.StartLine > 0 && l.EndLine > l.StartLine:
		return fmt.Sprintf("%s:%d-%d", l.File, l.StartLine, l.EndLine)
	case l.StartLine > 0:
		return fmt.Sprintf("%s:%d", l.File, l.StartLine)
	default:
		return l.File
	}
}
