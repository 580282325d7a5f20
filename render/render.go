// Package render defines the interface for rendering summarized session
// state into various output formats.
package render

import (
	"io"

	"codexline/core"
)

// Renderer writes a session's state to the given writer in a specific format.
type Renderer interface {
	Render(w io.Writer, s *core.Session) error
}
