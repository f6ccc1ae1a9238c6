package components

import (
	"opswatch/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HistorySize is the number of polls kept on the uptime chart.
const HistorySize = 31

// UptimeWidget charts the fleet up percentage across polls.
type UptimeWidget struct {
	Chart   linechart.Model
	History []float64
	Width   int
	Height  int
}

func NewUptimeWidget(width, height int) *UptimeWidget {
	// width, height, minX, maxX, minY, maxY
	lc := linechart.New(width, height, 0, HistorySize-1, 0, 100)
	return &UptimeWidget{
		Chart:   lc,
		History: make([]float64, 0, HistorySize),
		Width:   width,
		Height:  height,
	}
}

func (c *UptimeWidget) Init() tea.Cmd {
	return nil
}

// Push appends one sample, dropping the oldest past HistorySize.
func (c *UptimeWidget) Push(value float64) {
	c.History = append(c.History, value)
	if len(c.History) > HistorySize {
		c.History = c.History[1:]
	}
}

func (c *UptimeWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *UptimeWidget) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

// Plot redraws the chart canvas without the surrounding card.
func (c *UptimeWidget) Plot() string {
	c.Chart.Clear()
	if len(c.History) == 1 {
		p := canvas.Float64Point{X: 0, Y: c.History[0]}
		c.Chart.DrawBrailleLine(p, p)
	}
	for i := 0; i < len(c.History)-1; i++ {
		c.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.History[i+1]},
		)
	}
	c.Chart.DrawXYAxisAndLabel()
	return c.Chart.View()
}

func (c *UptimeWidget) View() string {
	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Uptime % History"),
			c.Plot(),
		),
	)
}
