package terminal

import "github.com/charmbracelet/lipgloss"

var (
	// Verdict colors — emerald for correct, red for incorrect, amber for unsure.
	colorCorrect   = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"}
	colorIncorrect = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	colorUnsure    = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#fbbf24"}

	// UI colors.
	colorBright   = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim      = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorActivity = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"} // purple
)

var (
	styleTitle = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)

	styleStat      = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleStatLabel = lipgloss.NewStyle().Foreground(colorDim)

	styleActivityBadge = lipgloss.NewStyle().Foreground(colorActivity).Bold(true)
	styleError         = lipgloss.NewStyle().Foreground(colorIncorrect).Bold(true)

	styleCorrect   = lipgloss.NewStyle().Foreground(colorCorrect).Bold(true)
	styleIncorrect = lipgloss.NewStyle().Foreground(colorIncorrect).Bold(true)
	styleUnsure    = lipgloss.NewStyle().Foreground(colorUnsure).Bold(true)

	styleFindingDetail = lipgloss.NewStyle().Foreground(colorDim)
	styleSeparator     = lipgloss.NewStyle().Foreground(colorDim)
)
