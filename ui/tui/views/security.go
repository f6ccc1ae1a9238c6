package views

import (
	"fmt"

	"opswatch/internal/model"
	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type SecurityView struct{}

func (v SecurityView) Render(s state.AppState, props ViewProps) string {
	logs := s.FilteredLogs()
	scope := "flagged"
	if s.ShowAllLogs {
		scope = "all"
	}
	header := pageHeader(fmt.Sprintf("Security Logs (%d %s, severity: %s)", len(logs), scope, s.FilterLabel()), s, props)

	avail := props.Height - lipgloss.Height(header) - 7
	start, end := visibleRange(len(logs), props.ScrollY, avail)
	page := logs[start:end]

	rows := make([][]string, len(page))
	for i, l := range page {
		rows[i] = []string{
			l.Timestamp,
			string(l.Protocol),
			l.SourceIP,
			l.Severity.String(),
			string(l.AttackType),
			detail(l),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Highlight)).
		Headers("TIME", "PROTO", "SOURCE", "SEVERITY", "ATTACK", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(styles.BrandColor)
			}
			if row < 0 || row >= len(page) {
				return base
			}
			if col == 3 || col == 4 {
				return base.Foreground(styles.SeverityColor(page[row].Severity))
			}
			return base
		})

	body := []string{header}
	if s.LogsErr != nil {
		body = append(body, errorLine(s.LogsErr))
	}
	if len(logs) == 0 {
		body = append(body, lipgloss.NewStyle().Padding(1, 2).Render("No matching log records."))
	} else {
		body = append(body, lipgloss.NewStyle().Padding(1, 1, 0).Render(t.Render()))
	}
	body = append(body, footer("[f] Severity filter • [a] Flagged/all • ↑/↓ Scroll • [r] Refresh • [b] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}

// detail is the protocol-specific column: request line for HTTP, user and
// outcome for SSH.
func detail(l model.ClassifiedLog) string {
	if l.Protocol == model.ProtocolSSH {
		return fmt.Sprintf("user=%s outcome=%s", l.Username, l.Outcome)
	}
	d := fmt.Sprintf("%s %s %d", l.Method, l.FullURL, l.StatusCode)
	if r := []rune(d); len(r) > 60 {
		d = string(r[:59]) + "…"
	}
	return d
}
