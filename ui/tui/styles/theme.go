package styles

import (
	"github.com/charmbracelet/lipgloss"

	"opswatch/internal/model"
)

var (
	Subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	Special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	BrandColor = lipgloss.Color("#f27b24")
	BaseColor  = lipgloss.Color("#444")

	OKColor       = lipgloss.Color("46")
	WarnColor     = lipgloss.Color("220")
	CritColor     = lipgloss.Color("196")
	InactiveColor = lipgloss.Color("#888")

	TitleStyle = lipgloss.NewStyle().
			MarginLeft(1).
			MarginRight(5).
			Padding(0, 1).
			Italic(true).
			Foreground(lipgloss.Color("#FFF7DB"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(BrandColor).
			Align(lipgloss.Left).
			Padding(1, 2)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Highlight).
			Padding(1, 2).
			Margin(1, 1)

	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFF"))

	FooterStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("#555"))
)

// SeverityColor maps a log severity to a foreground color.
func SeverityColor(s model.Severity) lipgloss.Color {
	switch s {
	case model.SeverityCritical:
		return CritColor
	case model.SeverityHigh:
		return lipgloss.Color("208")
	case model.SeverityMedium:
		return WarnColor
	case model.SeverityLow:
		return lipgloss.Color("39")
	default:
		return InactiveColor
	}
}

// ProblemColor maps a trigger severity to a foreground color.
func ProblemColor(s model.ProblemSeverity) lipgloss.Color {
	switch s {
	case model.ProblemDisaster, model.ProblemHigh:
		return CritColor
	case model.ProblemAverage, model.ProblemWarning:
		return WarnColor
	default:
		return InactiveColor
	}
}
