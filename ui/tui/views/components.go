package views

import (
	"fmt"
	"time"

	"opswatch/internal/engine"
	"opswatch/ui/tui/state"
	"opswatch/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func ColorForStatus(status string) lipgloss.Style {
	sStyle := styles.StatusStyle
	switch status {
	case engine.StatusWarning:
		return sStyle.Foreground(styles.WarnColor)
	case engine.StatusCritical:
		return sStyle.Foreground(styles.CritColor)
	}
	return sStyle.Foreground(styles.OKColor)
}

// visibleRange clamps scrollY so that a window of avail rows stays inside
// total rows, returning the half-open row range to draw.
func visibleRange(total, scrollY, avail int) (start, end int) {
	if avail < 1 {
		avail = 1
	}
	if scrollY > total-avail {
		scrollY = total - avail
	}
	if scrollY < 0 {
		scrollY = 0
	}
	end = scrollY + avail
	if end > total {
		end = total
	}
	return scrollY, end
}

// pageHeader renders the page title with the refresh state.
func pageHeader(title string, s state.AppState, props ViewProps) string {
	updated := "never"
	if !s.LastUpdate.IsZero() {
		updated = s.LastUpdate.Format("15:04:05")
	}
	status := fmt.Sprintf("Updated %s • every %s", updated, formatInterval(s.Interval))
	if s.Loading {
		status = props.SpinnerView + " " + status
	}
	w := props.Width - lipgloss.Width(status) - 6
	if w < lipgloss.Width(title)+4 {
		w = lipgloss.Width(title) + 4
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		styles.HeaderStyle.Width(w).Render(title),
		lipgloss.NewStyle().PaddingLeft(2).Foreground(styles.InactiveColor).Render(status),
	)
}

func formatInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return d.String()
}

func errorLine(err error) string {
	return lipgloss.NewStyle().Foreground(styles.CritColor).PaddingLeft(2).Render("Error: " + err.Error())
}

func footer(text string) string {
	return styles.FooterStyle.Render(text)
}

func ago(unix int64) string {
	if unix <= 0 {
		return "-"
	}
	d := time.Since(time.Unix(unix, 0)).Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
