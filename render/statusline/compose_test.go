package statusline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codexline/core"
)

func sampleSession(now time.Time) *core.Session {
	return &core.Session{
		Ref: core.SessionRef{
			Path:       "/home/u/.codex/sessions/rollout.jsonl",
			ModifiedAt: now.Add(-time.Second),
		},
		Context: &core.TurnContext{
			Model: "test-model",
			Cwd:   "/home/u/dev/tmp/project",
		},
		Tokens: &core.TokenCount{Info: &core.TokenInfo{}},
	}
}

func TestComposeDefaultOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := sampleSession(now)

	got := Compose(s, DefaultOrder, Options{Now: now, HomeDir: "/home/u"})
	assert.Equal(t, "🕒now 🔄n/a 🤖test-model 📁tmp/project", got)
}

func TestComposeFullSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	hour := 3600.0
	week := 5 * 86400.0

	s := &core.Session{
		Ref: core.SessionRef{ModifiedAt: now.Add(-2 * time.Minute)},
		Context: &core.TurnContext{
			Model:          "gpt-5-codex",
			Cwd:            "/home/u/dev/tmp/project",
			ApprovalPolicy: "on-request",
			SandboxPolicy:  core.SandboxPolicy{Mode: "workspace-write"},
		},
		Tokens: &core.TokenCount{
			Info: &core.TokenInfo{
				Total: &core.TokenUsage{TotalTokens: 2_500_000},
				Last:  &core.TokenUsage{TotalTokens: 1234},
			},
			RateLimits: &core.RateLimits{
				Primary:   &core.RateLimitWindow{UsedPercent: 12, ResetsInSeconds: &hour},
				Secondary: &core.RateLimitWindow{UsedPercent: 34, ResetsInSeconds: &week},
			},
		},
		Activity: core.ActivityTool,
	}

	got := Compose(s, DefaultOrder, Options{Now: now, HomeDir: "/home/u"})
	assert.Equal(t, "🕒2m 🔧 🕔12%/11:00 🗓34%/06/06 🔄1.2K 📊2.5M 🤖5-codex ✅on-request 🛡️workspace-write 📁tmp/project", got)
}

func TestComposeMinimal(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := sampleSession(now)
	s.Activity = core.ActivityAssistant
	s.Context.ApprovalPolicy = "never"
	s.Context.SandboxPolicy = core.SandboxPolicy{Mode: "read-only"}

	got := Compose(s, DefaultOrder, Options{Minimal: true, Now: now, HomeDir: "/home/u"})
	assert.Equal(t, "🕒now 🔄n/a 🤖test-model", got)
}

func TestComposeCustomOrderAndLabels(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := sampleSession(now)
	s.Tokens.Info.Last = &core.TokenUsage{TotalTokens: 1234}

	order, err := ResolveOrder([]string{"recent", "model", "directory"})
	require.NoError(t, err)

	labels, err := ResolveLabels(map[string]string{"recent": "++"})
	require.NoError(t, err)

	got := Compose(s, order, Options{Now: now, HomeDir: "/home/u", Labels: labels})
	assert.Equal(t, "++1.2K 🤖test-model 📁tmp/project", got)
}

func TestComposeEmptyLabelOverride(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := sampleSession(now)

	got := Compose(s, []Field{FieldModel}, Options{
		Now:    now,
		Labels: map[Field]string{FieldModel: ""},
	})
	assert.Equal(t, "test-model", got)
}

func TestComposeSoundGlyphLeads(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := sampleSession(now)

	got := Compose(s, DefaultOrder, Options{Now: now, HomeDir: "/home/u", SoundGlyph: "🔊"})
	assert.Equal(t, "🔊 🕒now 🔄n/a 🤖test-model 📁tmp/project", got)
}

func TestComposeErrorSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &core.Session{
		Ref: core.SessionRef{ModifiedAt: now.Add(-time.Minute)},
		Err: "permission denied",
	}

	got := Compose(s, DefaultOrder, Options{Now: now})
	assert.Equal(t, "🕒1m ⚠️permission denied", got)
}

func TestComposePlaceholder(t *testing.T) {
	got := Compose(&core.Session{}, DefaultOrder, Options{Now: time.Now()})
	assert.Equal(t, "(no data)", got)
}

func TestResolveOrder(t *testing.T) {
	t.Run("empty yields default copy", func(t *testing.T) {
		order, err := ResolveOrder(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultOrder, order)

		order[0] = FieldModel
		assert.Equal(t, FieldSound, DefaultOrder[0])
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		order, err := ResolveOrder([]string{"model", "dir", "directory", "model"})
		require.NoError(t, err)
		assert.Equal(t, []Field{FieldModel, FieldDirectory}, order)
	})

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := ResolveOrder([]string{"model", "nope"})
		assert.ErrorContains(t, err, "nope")
	})
}

func TestResolveLabels(t *testing.T) {
	labels, err := ResolveLabels(map[string]string{"age": "t:", "tokens": ""})
	require.NoError(t, err)
	assert.Equal(t, map[Field]string{FieldTime: "t:", FieldTotal: ""}, labels)

	_, err = ResolveLabels(map[string]string{"nope": "x"})
	assert.Error(t, err)

	empty, err := ResolveLabels(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}
