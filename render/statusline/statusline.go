package statusline

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"

	"codexline/core"
)

// Renderer writes one newline-terminated status line per session,
// clipped to the terminal column budget.
type Renderer struct {
	// Width is the column budget. Zero auto-detects the terminal width;
	// negative disables truncation.
	Width int

	// Order is the field composition order. Empty means DefaultOrder.
	Order []Field

	Options Options
}

// New creates a statusline Renderer with the default field order.
func New() *Renderer {
	return &Renderer{}
}

// Render composes and writes the session's status line.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	order := r.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	line := Compose(s, order, r.Options)
	line = TruncateToWidth(line, r.cols())

	_, err := fmt.Fprintln(w, line)
	return err
}

func (r *Renderer) cols() int {
	if r.Width != 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 0 // not a terminal: leave the line unclipped
}
