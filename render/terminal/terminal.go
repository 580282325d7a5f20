// Package terminal renders one session as an ANSI-colored detail card:
// the token, rate-limit, and review detail the one-line view elides.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"codexline/core"
)

const defaultWidth = 100

// Renderer pretty-prints a session as a detail card to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int

	// Now fixes the reference clock for rate-limit rendering. Zero means
	// the wall clock.
	Now time.Time
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the session detail card to w.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	width := r.termWidth()
	now := r.Now
	if now.IsZero() {
		now = time.Now()
	}

	writeHeader(w, s)

	if s.Err != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  "+styleError.Render("⚠ "+s.Err))
		fmt.Fprintln(w)
		return nil
	}

	if s.Tokens != nil && s.Tokens.Info != nil {
		fmt.Fprintln(w)
		writeUsage(w, s.Tokens.Info)
	}
	if s.Tokens != nil && s.Tokens.RateLimits != nil {
		fmt.Fprintln(w)
		writeWindows(w, s.Tokens.RateLimits, now)
	}
	if s.Review != nil {
		writeReview(w, s.Review, width)
	}

	fmt.Fprintln(w)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeHeader renders the session identity block.
func writeHeader(w io.Writer, s *core.Session) {
	// Row 1: rollout file name + activity badge
	title := filepath.Base(s.Ref.Path)
	if title == "." || title == "/" || title == "" {
		title = "session"
	}
	row1 := styleTitle.Render(title)
	if icon := s.Activity.Icon(); icon != "" {
		row1 += "  " + styleActivityBadge.Render(icon+" "+strings.ToUpper(string(s.Activity)))
	}
	fmt.Fprintln(w, row1)

	// Row 2: model  relative_time  approval  sandbox  dir
	var parts []string
	if ctx := s.Context; ctx != nil && ctx.Model != "" {
		parts = append(parts, ctx.Model)
	}
	if !s.Ref.ModifiedAt.IsZero() {
		parts = append(parts, core.RelativeTime(s.Ref.ModifiedAt))
	}
	if ctx := s.Context; ctx != nil {
		if ctx.ApprovalPolicy != "" {
			parts = append(parts, ctx.ApprovalPolicy)
		}
		if mode := ctx.SandboxPolicy.Mode; mode != "" {
			if na := ctx.SandboxPolicy.NetworkAccess; na != nil && !*na {
				mode += "(no network)"
			}
			parts = append(parts, mode)
		}
		if ctx.Cwd != "" {
			parts = append(parts, ctx.Cwd)
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, styleMeta.Render(strings.Join(parts, "  ")))
	}
}

// writeUsage renders token counters in two rows: values then labels.
func writeUsage(w io.Writer, info *core.TokenInfo) {
	type stat struct {
		value int64
		label string
	}
	var stats []stat
	if info.Total != nil {
		stats = append(stats, stat{info.Total.TotalTokens, "TOTAL"})
		if info.Total.CachedInputTokens > 0 {
			stats = append(stats, stat{info.Total.CachedInputTokens, "CACHED"})
		}
		if info.Total.ReasoningOutputTokens > 0 {
			stats = append(stats, stat{info.Total.ReasoningOutputTokens, "REASONING"})
		}
	}
	if info.Last != nil {
		stats = append(stats, stat{info.Last.TotalTokens, "LAST TURN"})
	}
	if info.ContextWindow > 0 {
		stats = append(stats, stat{info.ContextWindow, "WINDOW"})
	}
	if len(stats) == 0 {
		return
	}

	var values, labels []string
	for _, st := range stats {
		formatted := formatNumber(st.value)
		colWidth := max(len(formatted), len(st.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, formatted))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, st.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

// writeWindows renders one line per known rate-limit window.
func writeWindows(w io.Writer, rl *core.RateLimits, now time.Time) {
	writeWindow(w, "primary", rl.Primary, now)
	writeWindow(w, "secondary", rl.Secondary, now)
}

func writeWindow(w io.Writer, name string, win *core.RateLimitWindow, now time.Time) {
	if win == nil {
		return
	}
	line := fmt.Sprintf("%s %d%% used", name, int(math.Round(win.UsedPercent)))
	if reset, ok := win.ResetTime(now); ok {
		line += "  resets " + reset.Format("Jan 2 15:04")
	}
	fmt.Fprintln(w, "  "+styleMeta.Render(line))
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// writeReview renders the review block: verdict badge, summary, findings.
func writeReview(w io.Writer, rv *core.Review, width int) {
	writeSeparator(w, width)
	fmt.Fprintln(w)

	header := verdictBadge(rv.Verdict)
	if !rv.Timestamp.IsZero() {
		header += "    " + styleMeta.Render(formatTime(rv.Timestamp))
	}
	fmt.Fprintln(w, " "+header)

	contentWidth := width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	if summary := strings.TrimSpace(rv.Summary); summary != "" {
		fmt.Fprintln(w, "  "+truncate(summary, contentWidth))
	}
	for _, f := range rv.Findings {
		title, detail := summarizeFinding(f)
		line := "• " + truncate(title, contentWidth)
		if detail != "" {
			line += "  " + styleFindingDetail.Render(detail)
		}
		fmt.Fprintln(w, "  "+line)
	}
}

func verdictBadge(v core.Verdict) string {
	switch v {
	case core.VerdictCorrect:
		return styleCorrect.Render("REVIEW: CORRECT")
	case core.VerdictIncorrect:
		return styleIncorrect.Render("REVIEW: INCORRECT")
	case core.VerdictUnsure:
		return styleUnsure.Render("REVIEW: UNSURE")
	default:
		return styleTitle.Render("REVIEW")
	}
}

// truncate shortens text to maxWidth, appending "..." if needed.
// Multi-line text is reduced to the first line.
func truncate(s string, maxWidth int) string {
	if maxWidth < 4 {
		maxWidth = 4
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func formatTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
