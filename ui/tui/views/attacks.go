package views

import (
	"fmt"
	"strings"

	"opswatch/internal/model"
	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

type AttacksView struct{}

func (v AttacksView) Render(s state.AppState, props ViewProps) string {
	header := pageHeader("Attack Types", s, props)

	var sev []string
	for i := model.SeverityCritical; i >= model.SeverityInfo; i-- {
		sev = append(sev, fmt.Sprintf("%s %d",
			lipgloss.NewStyle().Foreground(styles.SeverityColor(i)).Width(10).Render(strings.ToUpper(i.String())),
			s.Summary.BySeverity[i]))
	}
	totals := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Totals"),
		fmt.Sprintf("Events        %d", s.Summary.Total),
		fmt.Sprintf("Brute force   %d", s.Summary.BruteForce),
		fmt.Sprintf("Auth failures %d", s.Summary.AuthFailures),
		"",
		lipgloss.JoinVertical(lipgloss.Left, sev...),
	))

	body := []string{header}
	if s.LogsErr != nil {
		body = append(body, errorLine(s.LogsErr))
	}
	body = append(body,
		lipgloss.JoinHorizontal(lipgloss.Top, props.ChartView, totals),
		footer("[a] Flagged/all • [r] Refresh • [b] Back"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}
