package views

import (
	"fmt"
	"math"

	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MenuOptions are the menu entries in cursor order.
var MenuOptions = []string{
	"Poll Console",
	"Fleet Dashboard",
	"Hosts & Resource Usage",
	"Active Problems",
	"Security Logs",
	"Attack Type Breakdown",
}

// MenuZone is the bubblezone id of menu entry i.
func MenuZone(i int) string {
	return fmt.Sprintf("menu_%d", i)
}

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render("OPSWATCH // FLEET & SECURITY MONITOR")

	var menuItems []string
	listStartY := 6

	for i, option := range MenuOptions {
		// Animation Logic
		dist := math.Abs(float64(i) - props.AnimCursor)
		selectionStrength := 0.0
		if dist < 1.0 {
			selectionStrength = 1.0 - dist
		}

		// Mouse Gradient Logic
		itemCenterY := listStartY + (i * 3) + 1
		mouseDistY := math.Abs(float64(props.MouseY - itemCenterY))

		borderColor := styles.BaseColor
		if mouseDistY < 10 && 1.0-(mouseDistY/10.0) > 0.5 {
			borderColor = lipgloss.Color("#aaa")
		}
		if selectionStrength > 0.1 || i == props.MenuCursor {
			borderColor = styles.BrandColor
		}

		popOut := int(selectionStrength * 2)

		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			MarginLeft(2 + popOut).
			Width(40)

		if i == props.MenuCursor {
			boxStyle = boxStyle.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			boxStyle = boxStyle.Foreground(lipgloss.Color("#AAA"))
		}

		text := fmt.Sprintf("%02d. %s", i+1, option)
		menuItems = append(menuItems, zone.Mark(MenuZone(i), boxStyle.Render(text)))
	}

	menuList := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	menuContent := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(styles.BrandColor).Render("VIEWS"),
		CopyStyle.Render("Pick a view. Data refreshes in the background."),
		menuList,
	)

	status := fmt.Sprintf("%d hosts • %d problems • %d flagged events • refresh every %s",
		s.Dashboard.Stats.TotalHosts, len(s.Dashboard.Problems), s.Summary.Total, formatInterval(s.Interval))
	if s.Err != nil {
		status = "last poll failed: " + s.Err.Error()
	}

	footerBlock := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).Render(status),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).Render("\n[↑/↓] Navigate • [Enter] Select • [r] Refresh • [i] Interval • [Q] Quit"),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		MenuBoxStyle.Render(menuContent),
		lipgloss.NewStyle().PaddingLeft(2).Render(footerBlock),
	)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

var (
	MenuHeaderStyle = styles.HeaderStyle

	MenuBoxStyle = lipgloss.NewStyle().
			Padding(1, 0).
			MarginTop(1)

	CopyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true).
			MarginBottom(1).
			PaddingLeft(2)
)
