package components

import (
	"fmt"

	"opswatch/internal/output"
	"opswatch/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var barPalette = []lipgloss.Color{
	lipgloss.Color("196"),
	lipgloss.Color("208"),
	lipgloss.Color("220"),
	lipgloss.Color("39"),
	lipgloss.Color("141"),
	lipgloss.Color("46"),
}

// AttackWidget is a bar chart of classified records per attack type.
type AttackWidget struct {
	Chart  barchart.Model
	Counts []output.AttackCount
	Width  int
	Height int
}

func NewAttackWidget(width, height int) *AttackWidget {
	return &AttackWidget{
		Chart:  barchart.New(width, height),
		Width:  width,
		Height: height,
	}
}

func (c *AttackWidget) Init() tea.Cmd {
	return nil
}

func (c *AttackWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

// SetCounts replaces the plotted data. Counts are expected sorted, as
// output.AttackCounts returns them.
func (c *AttackWidget) SetCounts(counts []output.AttackCount) {
	c.Counts = counts
	c.Chart.Clear()
	data := make([]barchart.BarData, 0, len(counts))
	for i, ac := range counts {
		color := barPalette[i%len(barPalette)]
		data = append(data, barchart.BarData{
			Label: fmt.Sprintf("%d", i+1),
			Values: []barchart.BarValue{{
				Name:  string(ac.Type),
				Value: float64(ac.Count),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	c.Chart.PushAll(data)
}

func (c *AttackWidget) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
	c.SetCounts(c.Counts)
}

// Legend lists the numbered bars with their attack type and count.
func (c *AttackWidget) Legend() string {
	if len(c.Counts) == 0 {
		return lipgloss.NewStyle().Foreground(styles.InactiveColor).Render("No classified records")
	}
	var lines []string
	for i, ac := range c.Counts {
		color := barPalette[i%len(barPalette)]
		lines = append(lines, fmt.Sprintf("%s %-20s %d",
			lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%2d.", i+1)),
			ac.Type, ac.Count))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (c *AttackWidget) View() string {
	c.Chart.Draw()
	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Attack Types"),
			c.Chart.View(),
			"",
			c.Legend(),
		),
	)
}
