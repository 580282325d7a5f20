package core

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReviewSource records where a review payload came from.
type ReviewSource string

const (
	SourceReviewOutput ReviewSource = "review_output"
	SourceAgentMessage ReviewSource = "agent_message"
	SourceUserMessage  ReviewSource = "user_message"
	SourceFallback     ReviewSource = "fallback"
)

// Verdict is the normalized review outcome.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictUnsure    Verdict = "unsure"
)

// Review is the normalized form of a heterogeneous review payload: a
// structured object, a JSON-encoded string, or free text all reduce to
// this one shape.
type Review struct {
	Source      ReviewSource `json:"source,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Correctness string       `json:"overall_correctness,omitempty"`
	Explanation string       `json:"overall_explanation,omitempty"`
	Confidence  *float64     `json:"overall_confidence,omitempty"`
	Findings    []Finding    `json:"findings"`
	Text        string       `json:"text,omitempty"`
	Verdict     Verdict      `json:"verdict,omitempty"`
	Raw         string       `json:"raw,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Finding is one review finding. A finding with no title, no body, and
// no location normalizes to nothing and is dropped.
type Finding struct {
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body,omitempty"`
	Priority   *int      `json:"priority,omitempty"`
	Severity   string    `json:"severity,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Location   *Location `json:"location,omitempty"`
}

// Location points at the code a finding refers to.
type Location struct {
	File      string `json:"file,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// NormalizeReview reduces an arbitrary review payload to a Review, or nil
// when no usable content exists. A JSON-encoded string recurses into the
// object branch with the original string retained as fallback text.
func NormalizeReview(input any, fallback string, source ReviewSource) *Review {
	switch v := input.(type) {
	case nil:
		if t := strings.TrimSpace(fallback); t != "" {
			return freeTextReview(t, source)
		}
		return nil
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err == nil && m != nil {
			return normalizeObject(m, v, source)
		}
		if t := strings.TrimSpace(v); t != "" {
			return freeTextReview(t, source)
		}
		return NormalizeReview(nil, fallback, source)
	case map[string]any:
		return normalizeObject(v, fallback, source)
	default:
		return freeTextReview(fmt.Sprint(v), source)
	}
}

func freeTextReview(text string, source ReviewSource) *Review {
	return &Review{
		Source:      source,
		Summary:     text,
		Explanation: text,
		Text:        text,
		Findings:    []Finding{},
		Raw:         text,
	}
}

func normalizeObject(m map[string]any, fallback string, source ReviewSource) *Review {
	findings := []Finding{}
	if list, ok := m["findings"].([]any); ok {
		for _, item := range list {
			if f := normalizeFinding(item); f != nil {
				findings = append(findings, *f)
			}
		}
	}

	correctness := stringKey(m, "overall_correctness", "overallCorrectness")
	explanation := stringKey(m, "overall_explanation", "overallExplanation")
	confidence := floatKey(m, "overall_confidence", "overallConfidence")

	summary := stringKey(m, "summary")
	if summary == "" {
		summary = explanation
	}
	if summary == "" {
		summary = strings.TrimSpace(fallback)
	}

	text := summary
	if text == "" && len(findings) > 0 {
		text = findings[0].Title
		if text == "" {
			text = findings[0].Body
		}
	}

	if summary == "" && explanation == "" && correctness == "" && text == "" && len(findings) == 0 {
		return nil
	}

	raw := fallback
	if raw == "" {
		if b, err := json.Marshal(m); err == nil {
			raw = string(b)
		}
	}

	return &Review{
		Source:      source,
		Summary:     summary,
		Correctness: correctness,
		Explanation: explanation,
		Confidence:  confidence,
		Findings:    findings,
		Text:        text,
		Verdict:     VerdictFrom(correctness),
		Raw:         raw,
	}
}

func normalizeFinding(v any) *Finding {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil
	}

	f := Finding{
		Title:      stringKey(m, "title"),
		Body:       stringKey(m, "body"),
		Severity:   stringKey(m, "severity"),
		Confidence: floatKey(m, "confidence_score", "confidenceScore", "confidence"),
	}
	if p := floatKey(m, "priority"); p != nil {
		n := int(*p)
		f.Priority = &n
	}
	f.Location = normalizeLocation(m)

	if f.Title == "" && f.Body == "" && f.Location == nil {
		return nil
	}
	return &f
}

func normalizeLocation(m map[string]any) *Location {
	loc, ok := mapKey(m, "code_location", "codeLocation", "location")
	if !ok {
		return nil
	}
	l := Location{
		File: stringKey(loc, "absolute_file_path", "absoluteFilePath", "file"),
	}
	if lr, ok := mapKey(loc, "line_range", "lineRange"); ok {
		if v := floatKey(lr, "start"); v != nil {
			l.StartLine = int(*v)
		}
		if v := floatKey(lr, "end"); v != nil {
			l.EndLine = int(*v)
		}
	} else {
		if v := floatKey(loc, "start_line", "startLine"); v != nil {
			l.StartLine = int(*v)
		}
		if v := floatKey(loc, "end_line", "endLine"); v != nil {
			l.EndLine = int(*v)
		}
	}
	if l.File == "" && l.StartLine == 0 && l.EndLine == 0 {
		return nil
	}
	return &l
}

// VerdictFrom maps a raw correctness string to a Verdict by keyword.
// The incorrect branch is checked first so "incorrect" never matches the
// correct branch.
func VerdictFrom(correctness string) Verdict {
	s := strings.ToLower(correctness)
	switch {
	case s == "":
		return ""
	case containsAny(s, "incorrect", "reject", "changes"):
		return VerdictIncorrect
	case containsAny(s, "correct", "approve"):
		return VerdictCorrect
	case containsAny(s, "unsure", "uncertain", "follow-up"):
		return VerdictUnsure
	default:
		return ""
	}
}

// MergeReviews folds update into base: every scalar field keeps the
// base's value when already populated and takes the update's otherwise;
// finding lists concatenate with the base's findings first. Either side
// may be nil.
func MergeReviews(base, update *Review) *Review {
	if base == nil {
		return update
	}
	if update == nil {
		return base
	}

	merged := *base
	if merged.Source == "" {
		merged.Source = update.Source
	}
	if merged.Summary == "" {
		merged.Summary = update.Summary
	}
	if merged.Correctness == "" {
		merged.Correctness = update.Correctness
		merged.Verdict = update.Verdict
	}
	if merged.Explanation == "" {
		merged.Explanation = update.Explanation
	}
	if merged.Confidence == nil {
		merged.Confidence = update.Confidence
	}
	if merged.Text == "" {
		merged.Text = update.Text
	}
	if merged.Raw == "" {
		merged.Raw = update.Raw
	}
	if merged.Timestamp.IsZero() {
		merged.Timestamp = update.Timestamp
	}
	merged.Findings = append(append([]Finding{}, base.Findings...), update.Findings...)
	return &merged
}

// Tagged-text extraction. User messages can embed a review request as a
// small XML-ish block; only an action of "review" carries a payload.

var (
	actionRE  = regexp.MustCompile(`(?is)<action>(.*?)</action>`)
	resultsRE = regexp.MustCompile(`(?is)<results>(.*?)</results>`)
)

// ExtractTaggedReview recognizes an embedded review block in free text
// and normalizes its results payload. Returns nil when the text carries
// no review action.
func ExtractTaggedReview(text string) *Review {
	m := actionRE.FindStringSubmatch(text)
	if m == nil || !strings.EqualFold(strings.TrimSpace(m[1]), "review") {
		return nil
	}
	r := resultsRE.FindStringSubmatch(text)
	if r == nil {
		return nil
	}
	payload := strings.TrimSpace(r[1])
	if payload == "" {
		return nil
	}
	return NormalizeReview(payload, "", SourceUserMessage)
}

func stringKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func floatKey(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			f := v
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		}
	}
	return nil
}

func mapKey(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if mm, ok := m[k].(map[string]any); ok && mm != nil {
			return mm, true
		}
	}
	return nil, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
