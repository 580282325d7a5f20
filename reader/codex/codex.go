// Package codex reads Codex CLI session logs (JSONL rollouts in
// ~/.codex/sessions/) and folds each into a summarized session state.
package codex

import (
	"bufio"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"codexline/core"
)

// Reader discovers and reads Codex CLI JSONL rollout files.
type Reader struct {
	// Dir overrides the default session directory (~/.codex/sessions/).
	Dir string
}

// maxLineSize is the maximum JSONL line size (1 MB). Rollout records can
// exceed the default 64 KB bufio.Scanner buffer.
const maxLineSize = 1 << 20

// Sessions lists rollout files under the session directory, newest
// first, capped at limit (limit <= 0 means no cap). A missing directory
// yields zero sessions, not an error.
func (r *Reader) Sessions(limit int) ([]core.SessionRef, error) {
	dir := r.dir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var refs []core.SessionRef
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		refs = append(refs, core.SessionRef{Path: path, ModifiedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].ModifiedAt.After(refs[j].ModifiedAt)
	})
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// ReadSession parses one rollout file into a Session. Read failures are
// recorded on the session's Err field rather than returned, so one bad
// file never aborts a batch.
func (r *Reader) ReadSession(ref core.SessionRef) *core.Session {
	s := &core.Session{Ref: ref}

	f, err := os.Open(ref.Path)
	if err != nil {
		s.Err = err.Error()
		return s
	}
	defer f.Close()

	if err := fold(f, s); err != nil {
		s.Err = err.Error()
	}
	return s
}

func (r *Reader) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex", "sessions")
}

// Raw JSON deserialization types. These mirror the JSONL structure on disk.

type rawRecord struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type rawEventMsg struct {
	Type         string          `json:"type"`
	Message      string          `json:"message"`
	ReviewOutput json.RawMessage `json:"review_output"`
}

type rawResponseItem struct {
	Type    string            `json:"type"`
	Role    string            `json:"role"`
	Content []json.RawMessage `json:"content"`
}

type rawContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// fold scans the rollout line by line, folding each recognized record
// into s. Blank and unparseable lines are skipped; record timestamps are
// assumed append-ordered (monotonicity is not verified).
func fold(r io.Reader, s *core.Session) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	inReview := false
	var pending *core.Review

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Debug("skipping malformed rollout line", "path", s.Ref.Path, "error", err)
			continue
		}

		ts := parseTime(rec.Timestamp)
		if !ts.IsZero() {
			s.LastTimestamp = ts
		}

		switch rec.Type {
		case "turn_context":
			var ctx core.TurnContext
			if err := json.Unmarshal(rec.Payload, &ctx); err == nil {
				s.Context = &ctx
			}

		case "event_msg":
			var ev rawEventMsg
			if err := json.Unmarshal(rec.Payload, &ev); err != nil {
				continue
			}
			foldEvent(s, rec.Payload, ev, ts, &inReview, &pending)

		case "response_item":
			var item rawResponseItem
			if err := json.Unmarshal(rec.Payload, &item); err != nil {
				continue
			}
			foldResponseItem(s, item, ts)
		}
	}
	return scanner.Err()
}

func foldEvent(s *core.Session, payload json.RawMessage, ev rawEventMsg, ts time.Time, inReview *bool, pending **core.Review) {
	switch ev.Type {
	case "token_count":
		var tc core.TokenCount
		if err := json.Unmarshal(payload, &tc); err == nil {
			s.Tokens = &tc
		}

	case "entered_review_mode":
		*inReview = true
		*pending = nil

	case "agent_message":
		if !*inReview {
			return
		}
		if rv := core.NormalizeReview(ev.Message, "", core.SourceAgentMessage); rv != nil {
			*pending = core.MergeReviews(*pending, rv)
		}

	case "exited_review_mode":
		*inReview = false
		merged := core.MergeReviews(decodeReviewOutput(ev.ReviewOutput), *pending)
		if merged == nil && ev.Message != "" {
			merged = core.NormalizeReview(ev.Message, "", core.SourceFallback)
		}
		*pending = nil
		if merged == nil {
			return
		}
		if merged.Timestamp.IsZero() {
			merged.Timestamp = ts
		}
		s.Review = merged
		s.Activity = core.ActivityReview
	}
}

// decodeReviewOutput normalizes the review_output field of an
// exited_review_mode event, which may be an object, a JSON-encoded
// string, or absent.
func decodeReviewOutput(raw json.RawMessage) *core.Review {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return core.NormalizeReview(v, "", core.SourceReviewOutput)
}

func foldResponseItem(s *core.Session, item rawResponseItem, ts time.Time) {
	switch {
	case item.Role == "assistant":
		s.LastAssistantAt = ts
		s.Activity = core.ActivityAssistant

	case item.Role == "user":
		if rv := core.ExtractTaggedReview(collectText(item.Content)); rv != nil {
			s.Review = core.MergeReviews(s.Review, rv)
			s.Activity = core.ActivityReview
		} else {
			s.Activity = core.ActivityUser
		}

	case item.Type == "function_call" || item.Type == "local_shell_call" || item.Type == "custom_tool_call":
		s.Activity = core.ActivityTool

	case item.Type == "reasoning":
		s.Activity = core.ActivityThinking
	}
}

// collectText joins the text of input_text/text content items.
func collectText(content []json.RawMessage) string {
	var parts []string
	for _, raw := range content {
		var item rawContentItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if (item.Type == "input_text" || item.Type == "text" || item.Type == "output_text") && item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
