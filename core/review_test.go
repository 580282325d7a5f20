package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReviewObject(t *testing.T) {
	input := map[string]any{
		"overall_correctness": "patch is incorrect",
		"overall_explanation": "the loop is off by one",
		"overall_confidence":  0.8,
		"findings": []any{
			map[string]any{
				"title":            "off-by-one",
				"body":             "loop bound excludes the last element",
				"priority":         float64(1),
				"confidence_score": 0.9,
				"code_location": map[string]any{
					"absolute_file_path": "/src/main.go",
					"line_range":         map[string]any{"start": float64(10), "end": float64(12)},
				},
			},
			// No title, body, or location: dropped.
			map[string]any{"confidence_score": 0.2},
		},
	}

	rv := NormalizeReview(input, "", SourceReviewOutput)
	require.NotNil(t, rv)

	assert.Equal(t, SourceReviewOutput, rv.Source)
	assert.Equal(t, "the loop is off by one", rv.Summary)
	assert.Equal(t, "patch is incorrect", rv.Correctness)
	assert.Equal(t, VerdictIncorrect, rv.Verdict)
	require.NotNil(t, rv.Confidence)
	assert.InDelta(t, 0.8, *rv.Confidence, 1e-9)

	require.Len(t, rv.Findings, 1)
	f := rv.Findings[0]
	assert.Equal(t, "off-by-one", f.Title)
	require.NotNil(t, f.Priority)
	assert.Equal(t, 1, *f.Priority)
	require.NotNil(t, f.Location)
	assert.Equal(t, "/src/main.go", f.Location.File)
	assert.Equal(t, 10, f.Location.StartLine)
	assert.Equal(t, 12, f.Location.EndLine)
}

func TestNormalizeReviewCamelCaseKeys(t *testing.T) {
	rv := NormalizeReview(map[string]any{
		"overallCorrectness": "looks correct",
		"overallExplanation": "all good",
	}, "", SourceAgentMessage)
	require.NotNil(t, rv)
	assert.Equal(t, "looks correct", rv.Correctness)
	assert.Equal(t, VerdictCorrect, rv.Verdict)
	assert.Equal(t, "all good", rv.Explanation)
}

func TestNormalizeReviewJSONString(t *testing.T) {
	rv := NormalizeReview(`{"overall_correctness":"unsure, needs follow-up"}`, "", SourceAgentMessage)
	require.NotNil(t, rv)
	assert.Equal(t, VerdictUnsure, rv.Verdict)
	// The original string is retained as raw payload.
	assert.Contains(t, rv.Raw, "overall_correctness")
}

func TestNormalizeReviewFreeText(t *testing.T) {
	rv := NormalizeReview("not valid json at all", "", SourceAgentMessage)
	require.NotNil(t, rv)
	assert.Equal(t, "not valid json at all", rv.Summary)
	assert.Equal(t, "not valid json at all", rv.Text)
	assert.Empty(t, rv.Verdict)
	assert.NotNil(t, rv.Findings)
	assert.Empty(t, rv.Findings)
}

func TestNormalizeReviewNilAndFallback(t *testing.T) {
	assert.Nil(t, NormalizeReview(nil, "", SourceFallback))
	assert.Nil(t, NormalizeReview(nil, "   ", SourceFallback))

	rv := NormalizeReview(nil, "review aborted", SourceFallback)
	require.NotNil(t, rv)
	assert.Equal(t, "review aborted", rv.Text)
}

func TestNormalizeReviewScalar(t *testing.T) {
	rv := NormalizeReview(42.0, "", SourceAgentMessage)
	require.NotNil(t, rv)
	assert.Equal(t, "42", rv.Text)
}

func TestNormalizeReviewEmptyObject(t *testing.T) {
	assert.Nil(t, NormalizeReview(map[string]any{}, "", SourceReviewOutput))
}

func TestVerdictFrom(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
	}{
		{"", ""},
		{"correct", VerdictCorrect},
		{"the patch is correct", VerdictCorrect},
		{"approve", VerdictCorrect},
		// "incorrect" contains "correct"; the incorrect branch must win.
		{"incorrect", VerdictIncorrect},
		{"reject this", VerdictIncorrect},
		{"request changes", VerdictIncorrect},
		{"unsure", VerdictUnsure},
		{"uncertain about the fix", VerdictUnsure},
		{"needs follow-up", VerdictUnsure},
		{"meh", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictFrom(tt.in), "VerdictFrom(%q)", tt.in)
	}
}

func TestMergeReviewsBaseWins(t *testing.T) {
	base := &Review{
		Source:      SourceReviewOutput,
		Correctness: "incorrect",
		Verdict:     VerdictIncorrect,
		Findings:    []Finding{{Title: "from exit event"}},
	}
	update := &Review{
		Source:      SourceAgentMessage,
		Summary:     "pending summary",
		Correctness: "correct",
		Verdict:     VerdictCorrect,
		Findings:    []Finding{{Title: "from partial"}},
	}

	merged := MergeReviews(base, update)
	require.NotNil(t, merged)

	// Populated base fields survive; gaps are backfilled from the update.
	assert.Equal(t, "incorrect", merged.Correctness)
	assert.Equal(t, VerdictIncorrect, merged.Verdict)
	assert.Equal(t, SourceReviewOutput, merged.Source)
	assert.Equal(t, "pending summary", merged.Summary)

	// Findings concatenate, base first, nothing dropped or duplicated.
	require.Len(t, merged.Findings, 2)
	assert.Equal(t, "from exit event", merged.Findings[0].Title)
	assert.Equal(t, "from partial", merged.Findings[1].Title)
}

func TestMergeReviewsNilSides(t *testing.T) {
	rv := &Review{Summary: "x"}
	assert.Equal(t, rv, MergeReviews(nil, rv))
	assert.Equal(t, rv, MergeReviews(rv, nil))
	assert.Nil(t, MergeReviews(nil, nil))
}

func TestMergeReviewsFindingCounts(t *testing.T) {
	a := &Review{Findings: []Finding{{Title: "a1"}, {Title: "a2"}}}
	b := &Review{Findings: []Finding{{Title: "b1"}}}
	c := &Review{Findings: []Finding{{Title: "c1"}, {Title: "c2"}, {Title: "c3"}}}

	merged := MergeReviews(MergeReviews(a, b), c)
	require.Len(t, merged.Findings, 6)
	// Original slices are untouched by the merge.
	assert.Len(t, a.Findings, 2)
	assert.Len(t, b.Findings, 1)
}

func TestExtractTaggedReview(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "review action with results",
			text: "<user_action><action>review</action><results>all clear</results></user_action>",
			want: true,
		},
		{
			name: "case and whitespace insensitive action",
			text: "<action>  Review </action><results>verdict text</results>",
			want: true,
		},
		{
			name: "other action",
			text: "<action>compact</action><results>ignored</results>",
			want: false,
		},
		{
			name: "no results block",
			text: "<action>review</action>",
			want: false,
		},
		{
			name: "empty results",
			text: "<action>review</action><results>   </results>",
			want: false,
		},
		{
			name: "plain text",
			text: "just a normal message",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv := ExtractTaggedReview(tt.text)
			if !tt.want {
				assert.Nil(t, rv)
				return
			}
			require.NotNil(t, rv)
			assert.Equal(t, SourceUserMessage, rv.Source)
			assert.NotEmpty(t, rv.Text)
		})
	}
}

func TestExtractTaggedReviewJSONResults(t *testing.T) {
	rv := ExtractTaggedReview(`<action>review</action><results>{"overall_correctness":"incorrect","findings":[{"title":"bug"}]}</results>`)
	require.NotNil(t, rv)
	assert.Equal(t, VerdictIncorrect, rv.Verdict)
	require.Len(t, rv.Findings, 1)
	assert.Equal(t, "bug", rv.Findings[0].Title)
}
