package views

import (
	"fmt"
	"strings"

	"opswatch/internal/model"
	"opswatch/internal/output"
	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// FleetZone is the clickable fleet card; it opens the hosts page.
const FleetZone = "fleet_box"

type DashboardView struct{}

func (v DashboardView) Render(s state.AppState, props ViewProps) string {
	header := pageHeader("Fleet Dashboard", s, props)

	var logs *model.LogSummary
	if s.LogsErr == nil && !s.LastUpdate.IsZero() {
		sum := s.Summary
		logs = &sum
	}
	summary := output.BuildDashboard(s.Dashboard, logs, props.Checks)

	renderSection := func(sec *output.Section) string {
		var b strings.Builder
		for _, item := range sec.Items {
			valStr := fmt.Sprintf("%.0f%s", item.Value, item.Unit)
			if item.Unit == "%" {
				valStr = fmt.Sprintf("%.2f%s", item.Value, item.Unit)
			}
			if item.Status != "" {
				valStr = ColorForStatus(item.Status).Render(fmt.Sprintf("%s [%s]", valStr, item.Status))
			}
			fmt.Fprintf(&b, "%-15s : %s\n", item.Label, valStr)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	var fleetCol, securityCol, problemCol string
	if sec := summary.SectionByID(output.SectionFleet); sec != nil {
		fleetCol = zone.Mark(FleetZone, styles.CardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render("Fleet"),
				renderSection(sec),
			),
		))
	}

	if sec := summary.SectionByID(output.SectionSecurity); sec != nil {
		// Only the totals; per-type counts live on the attack page.
		totals := output.Section{Items: sec.Items[:min(3, len(sec.Items))]}
		securityCol = styles.CardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render("Security"),
				renderSection(&totals),
			),
		)
	} else if s.LogsErr != nil {
		securityCol = styles.CardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render("Security"),
				lipgloss.NewStyle().Foreground(styles.CritColor).Render("log store unavailable"),
			),
		)
	}

	if sec := summary.SectionByID(output.SectionProblems); sec != nil {
		lines := []string{lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Active Problems (%d)", len(sec.Items)))}
		for i, item := range sec.Items {
			if i == 5 {
				lines = append(lines, fmt.Sprintf("... %d more", len(sec.Items)-5))
				break
			}
			lines = append(lines, ColorForStatus(item.Status).Render(item.Label)+" "+item.Note)
		}
		if len(sec.Items) == 0 {
			lines = append(lines, ColorForStatus("OK").Render("No active problems"))
		}
		problemCol = styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	chartCol := styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Uptime % History"),
			props.ChartView,
		),
	)

	body := []string{header}
	if s.Err != nil {
		body = append(body, errorLine(s.Err))
	}
	body = append(body,
		lipgloss.JoinHorizontal(lipgloss.Top, fleetCol, securityCol),
		lipgloss.JoinHorizontal(lipgloss.Top, chartCol, problemCol),
		footer("[r] Refresh • [i] Interval • [b] Back • [q] Quit"),
	)
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, body...))
}
