// Package reader defines the interface between session log readers and
// the front ends that render them.
package reader

import "codexline/core"

// Source discovers and reads session logs. The codex sub-package is the
// canonical implementation; the watch driver depends only on this
// interface.
type Source interface {
	// Sessions lists candidate sessions, newest first, capped at limit
	// (limit <= 0 means no cap).
	Sessions(limit int) ([]core.SessionRef, error)

	// ReadSession folds one session log into its summarized state. Read
	// failures are recorded on the returned session, never returned as an
	// error, so one bad log cannot abort a batch.
	ReadSession(ref core.SessionRef) *core.Session
}
