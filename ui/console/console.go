package console

import (
	"fmt"
	"io"
	"strings"

	"opswatch/internal/output"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Print renders the dashboard view to the writer in a compact format.
func Print(w io.Writer, view output.DashboardView) {
	fmt.Fprintf(w, "%s%s %s%s\n", colorCyan, "■", "OPSWATCH REPORT", colorReset)

	for _, sec := range view.Sections {
		fmt.Fprintf(w, "%s%s%s\n", colorCyan, "─ "+sec.Title, colorReset)
		if len(sec.Items) == 0 {
			fmt.Fprintf(w, "  (none)\n")
			continue
		}

		for _, it := range sec.Items {
			label := truncate(it.Label, 20)

			valStr := ""
			switch {
			case it.Unit != "":
				valStr = fmt.Sprintf("%.1f%s", it.Value, it.Unit)
			case it.Value != 0 || it.Note == "":
				valStr = fmt.Sprintf("%.0f", it.Value)
			}

			dots := strings.Repeat("·", 22-len([]rune(label)))
			line := fmt.Sprintf("  %s%s %10s%s", label, colorCyan+dots+colorReset, valStr, marker(it.Status))
			if it.Note != "" {
				line += "  " + truncate(it.Note, 60)
			}
			fmt.Fprintln(w, line)
		}
	}

	problems := 0
	if sec := view.SectionByID(output.SectionProblems); sec != nil {
		problems = len(sec.Items)
	}
	fmt.Fprintf(w, "%s─ Summary%s: Hosts: %d | Up: %.2f%% | Problems: %d\n\n",
		colorCyan, colorReset, view.Stats.TotalHosts, view.Stats.UpPercentage, problems)
}

func marker(status string) string {
	color := colorFor(status)
	switch status {
	case "":
		return ""
	case "WARN":
		return fmt.Sprintf(" %s!%s", color, colorReset)
	case "CRIT":
		return fmt.Sprintf(" %sX%s", color, colorReset)
	case "OK":
		return fmt.Sprintf(" %s✓%s", color, colorReset)
	default:
		return fmt.Sprintf(" %s%s%s", color, status[:1], colorReset)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

func colorFor(status string) string {
	switch status {
	case "WARN":
		return colorYellow
	case "CRIT":
		return colorRed
	default:
		return colorGreen
	}
}
