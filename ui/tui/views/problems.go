package views

import (
	"fmt"
	"strings"

	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type ProblemsView struct{}

func (v ProblemsView) Render(s state.AppState, props ViewProps) string {
	header := pageHeader(fmt.Sprintf("Active Problems (%d)", len(s.Dashboard.Problems)), s, props)

	avail := props.Height - lipgloss.Height(header) - 7
	start, end := visibleRange(len(s.Dashboard.Problems), props.ScrollY, avail)
	problems := s.Dashboard.Problems[start:end]

	rows := make([][]string, len(problems))
	for i, p := range problems {
		rows[i] = []string{
			strings.ToUpper(string(p.Severity)),
			p.HostName,
			p.Description,
			string(p.Status),
			ago(p.LastChange),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Highlight)).
		Headers("SEVERITY", "HOST", "PROBLEM", "STATUS", "SINCE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(styles.BrandColor)
			}
			if row < 0 || row >= len(problems) {
				return base
			}
			if col == 0 {
				return base.Bold(true).Foreground(styles.ProblemColor(problems[row].Severity))
			}
			return base
		})

	body := []string{header}
	if s.Err != nil {
		body = append(body, errorLine(s.Err))
	}
	if len(s.Dashboard.Problems) == 0 {
		body = append(body, lipgloss.NewStyle().Padding(1, 2).Foreground(styles.OKColor).Render("No active problems."))
	} else {
		body = append(body, lipgloss.NewStyle().Padding(1, 1, 0).Render(t.Render()))
	}
	body = append(body, footer("↑/↓ Scroll • [r] Refresh • [b] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}
