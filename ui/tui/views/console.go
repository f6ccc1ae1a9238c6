package views

import (
	"fmt"
	"strings"

	"opswatch/ui/tui/state"

	"github.com/charmbracelet/lipgloss"
)

type ConsoleView struct{}

func (v ConsoleView) Render(s state.AppState, props ViewProps) string {
	header := pageHeader("Poll Console", s, props)

	availableHeight := props.Height - lipgloss.Height(header) - 4
	start, end := visibleRange(len(s.ConsoleLogs), props.ScrollY, availableHeight)
	viewContent := strings.Join(s.ConsoleLogs[start:end], "\n")
	if len(s.ConsoleLogs) == 0 {
		viewContent = "Waiting for the first poll..."
	}

	box := lipgloss.NewStyle().
		Width(max(props.Width-4, 10)).
		Padding(0, 1).
		Render(viewContent)

	footerText := fmt.Sprintf("Lines: %d • [r] Refresh • [b] Back", len(s.ConsoleLogs))
	if len(s.ConsoleLogs) > availableHeight {
		footerText += " • Use ↑/↓ to scroll"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Padding(1, 2).Render(box),
		footer(footerText),
	)
}
