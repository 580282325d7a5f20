// Package core defines the summarized session state that the rollout
// reader produces and all renderers consume.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// SessionRef identifies one candidate rollout file on disk.
type SessionRef struct {
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Session is the summarized state of one rollout log: the final value of
// each tracked field after a full forward scan. Last write wins for every
// field except Review, which merges partial records (see MergeReviews).
type Session struct {
	Ref             SessionRef   `json:"ref"`
	Context         *TurnContext `json:"context,omitempty"`
	Tokens          *TokenCount  `json:"tokens,omitempty"`
	LastTimestamp   time.Time    `json:"last_timestamp"`
	Activity        Activity     `json:"activity,omitempty"`
	LastAssistantAt time.Time    `json:"last_assistant_at"`
	Review          *Review      `json:"review,omitempty"`

	// Err is set instead of the fields above when the rollout could not
	// be opened or streamed. Kept as a string so the state stays
	// serializable.
	Err string `json:"error,omitempty"`
}

// Activity classifies the most recent meaningful record in a rollout.
type Activity string

const (
	ActivityUser      Activity = "user"
	ActivityAssistant Activity = "assistant"
	ActivityTool      Activity = "tool"
	ActivityThinking  Activity = "thinking"
	ActivityReview    Activity = "review"
)

// Icon returns the display glyph for the activity, or "" when unset.
func (a Activity) Icon() string {
	switch a {
	case ActivityUser:
		return "👤"
	case ActivityAssistant:
		return "💬"
	case ActivityTool:
		return "🔧"
	case ActivityThinking:
		return "💭"
	case ActivityReview:
		return "🔍"
	default:
		return ""
	}
}

// TurnContext mirrors a turn_context record payload. Each turn_context
// record replaces the previous value wholesale.
type TurnContext struct {
	Model          string        `json:"model,omitempty"`
	Cwd            string        `json:"cwd,omitempty"`
	ApprovalPolicy string        `json:"approval_policy,omitempty"`
	SandboxPolicy  SandboxPolicy `json:"sandbox_policy"`
}

// SandboxPolicy is the sandbox mode plus its network-access flag. Older
// rollouts carry a bare string instead of an object; both forms decode.
type SandboxPolicy struct {
	Mode          string `json:"mode,omitempty"`
	NetworkAccess *bool  `json:"network_access,omitempty"`
}

func (p *SandboxPolicy) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		p.Mode = s
		return nil
	}
	type plain SandboxPolicy
	return json.Unmarshal(b, (*plain)(p))
}

// TokenCount mirrors a token_count event payload.
type TokenCount struct {
	Info       *TokenInfo  `json:"info,omitempty"`
	RateLimits *RateLimits `json:"rate_limits,omitempty"`
}

// TokenInfo carries the running token totals for a session.
type TokenInfo struct {
	Total         *TokenUsage `json:"total_token_usage,omitempty"`
	Last          *TokenUsage `json:"last_token_usage,omitempty"`
	ContextWindow int64       `json:"model_context_window,omitempty"`
}

// TokenUsage is one usage snapshot.
type TokenUsage struct {
	InputTokens           int64 `json:"input_tokens"`
	CachedInputTokens     int64 `json:"cached_input_tokens"`
	OutputTokens          int64 `json:"output_tokens"`
	ReasoningOutputTokens int64 `json:"reasoning_output_tokens"`
	TotalTokens           int64 `json:"total_tokens"`
}

// RateLimits holds the named quota windows reported by the backend.
type RateLimits struct {
	Primary   *RateLimitWindow `json:"primary,omitempty"`
	Secondary *RateLimitWindow `json:"secondary,omitempty"`
}

// RateLimitWindow is one quota tracker. The reset time arrives either as
// a relative countdown (resets_in_seconds) or an absolute epoch
// (resets_at).
type RateLimitWindow struct {
	UsedPercent     float64  `json:"used_percent"`
	WindowMinutes   int64    `json:"window_minutes,omitempty"`
	ResetsInSeconds *float64 `json:"resets_in_seconds,omitempty"`
	ResetsAt        *Epoch   `json:"resets_at,omitempty"`
}

// ResetTime resolves the window's reset moment relative to now. The
// countdown takes precedence over the absolute epoch when both are set.
func (w *RateLimitWindow) ResetTime(now time.Time) (time.Time, bool) {
	if w == nil {
		return time.Time{}, false
	}
	if w.ResetsInSeconds != nil {
		return now.Add(time.Duration(*w.ResetsInSeconds * float64(time.Second))), true
	}
	if w.ResetsAt != nil && !w.ResetsAt.IsZero() {
		return w.ResetsAt.Time, true
	}
	return time.Time{}, false
}

// Epoch is a unix timestamp that decodes from a JSON number or a numeric
// string, in seconds or milliseconds. Values at or above 1e12 are taken
// as milliseconds. Undecodable input is left zero rather than failing
// the enclosing record.
type Epoch struct {
	time.Time
}

func (e *Epoch) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if f >= 1e12 {
		f /= 1000
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * float64(time.Second))
	e.Time = time.Unix(sec, nsec)
	return nil
}
