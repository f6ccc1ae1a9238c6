package views

import (
	"fmt"

	"opswatch/internal/engine"
	"opswatch/internal/model"
	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type HostsView struct{}

func (v HostsView) Render(s state.AppState, props ViewProps) string {
	header := pageHeader(fmt.Sprintf("Hosts (%d)", len(s.Dashboard.Hosts)), s, props)

	// header, table borders, footer
	avail := props.Height - lipgloss.Height(header) - 7
	start, end := visibleRange(len(s.Dashboard.Hosts), props.ScrollY, avail)
	hosts := s.Dashboard.Hosts[start:end]

	statuses := make([]string, len(hosts))
	rows := make([][]string, len(hosts))
	for i, h := range hosts {
		statuses[i] = engine.HostStatus(h, props.Checks)
		rows[i] = []string{
			h.Hostname,
			h.IP,
			h.Availability.String(),
			fmt.Sprintf("%.1f%%", h.CPUPercent),
			fmt.Sprintf("%.1f%%", h.RAMPercent),
			h.BandwidthIn,
			h.BandwidthOut,
			statuses[i],
			ago(h.LastCheck),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Highlight)).
		Headers("HOST", "IP", "STATE", "CPU", "RAM", "IN", "OUT", "STATUS", "LAST CHECK").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(styles.BrandColor)
			}
			if row < 0 || row >= len(hosts) {
				return base
			}
			switch col {
			case 2:
				return base.Foreground(availabilityColor(hosts[row].Availability))
			case 7:
				return ColorForStatus(statuses[row]).Padding(0, 1)
			}
			return base
		})

	body := []string{header}
	if s.Err != nil {
		body = append(body, errorLine(s.Err))
	}
	if len(s.Dashboard.Hosts) == 0 {
		body = append(body, lipgloss.NewStyle().Padding(1, 2).Render("No hosts reported."))
	} else {
		body = append(body, lipgloss.NewStyle().Padding(1, 1, 0).Render(t.Render()))
	}
	body = append(body, footer(fmt.Sprintf("Rows %d-%d of %d • ↑/↓ Scroll • [r] Refresh • [b] Back",
		min(start+1, end), end, len(s.Dashboard.Hosts))))
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}

func availabilityColor(a model.Availability) lipgloss.Color {
	switch a {
	case model.AvailabilityAvailable:
		return styles.OKColor
	case model.AvailabilityUnavailable:
		return styles.CritColor
	}
	return styles.InactiveColor
}
