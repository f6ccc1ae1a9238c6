package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opswatch/internal/engine"
	"opswatch/internal/model"
	"opswatch/internal/output"
	"opswatch/ui/tui/components"
	"opswatch/ui/tui/state"
	"opswatch/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// DataSource is the part of the dashboard service the TUI polls.
type DataSource interface {
	Dashboard(ctx context.Context) (model.Dashboard, error)
	Logs(ctx context.Context, all bool) ([]model.ClassifiedLog, error)
}

// RefreshIntervals is the cycle walked by the interval key.
var RefreshIntervals = []time.Duration{30 * time.Second, time.Minute, 5 * time.Minute}

const (
	maxConsoleLines = 100
	fetchTimeout    = 30 * time.Second
)

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	source     DataSource
	config     engine.Config
	state      state.AppState
	spinner    spinner.Model
	uptime     *components.UptimeWidget
	attacks    *components.AttackWidget
	menuCursor int
	animCursor float64
	velocity   float64 // Physics velocity
	spring     harmonica.Spring
	scrollY    int
	mouseX     int
	mouseY     int
	quitting   bool
	width      int
	height     int
}

// Messages
type TickMsg time.Time
type AnimateMsg time.Time

// DataLoadedMsg carries one poll. The two halves fail independently.
type DataLoadedMsg struct {
	Dashboard model.Dashboard
	Logs      []model.ClassifiedLog
	Err       error
	LogsErr   error
	At        time.Time
}

func InitialModel(source DataSource, cfg engine.Config, interval time.Duration) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Increased frequency (12.0) for faster response and damping (0.9) to prevent overshoot
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	if interval <= 0 {
		interval = RefreshIntervals[0]
	}

	return MainModel{
		source:  source,
		config:  cfg,
		spinner: s,
		uptime:  components.NewUptimeWidget(30, 10),
		attacks: components.NewAttackWidget(40, 12),
		spring:  spring,
		state: state.AppState{
			CurrentPage:    state.PageMenu,
			Interval:       interval,
			SeverityFilter: state.AllSeverities,
			Loading:        true,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		fetchCmd(m.source, m.state.ShowAllLogs),
		tickCmd(m.state.Interval),
		animateCmd(),
	)
}

// Commands
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

// fetchCmd polls hosts, problems and logs concurrently.
func fetchCmd(src DataSource, showAll bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var msg DataLoadedMsg
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			msg.Dashboard, msg.Err = src.Dashboard(ctx)
		}()
		go func() {
			defer wg.Done()
			msg.Logs, msg.LogsErr = src.Logs(ctx, showAll)
		}()
		wg.Wait()
		msg.At = time.Now()
		return msg
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case TickMsg:
		return m.handleTickMsg(msg)

	case DataLoadedMsg:
		return m.handleDataLoadedMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "r":
		return m, m.refresh()
	case "i":
		m.cycleInterval()
		return m, nil
	}

	if m.state.CurrentPage == state.PageMenu {
		switch msg.String() {
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case "enter":
			m.navigateTo(m.menuCursor)
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.scrollY > 0 {
			m.scrollY--
		}
		return m, nil
	case "down", "j":
		m.scrollY++
		return m, nil
	case "b", "esc", "backspace":
		m.state.CurrentPage = state.PageMenu
		m.scrollY = 0
		return m, nil
	}

	if m.state.CurrentPage == state.PageSecurity || m.state.CurrentPage == state.PageAttacks {
		switch msg.String() {
		case "f":
			m.state.SeverityFilter = m.state.NextSeverityFilter()
			m.scrollY = 0
		case "a":
			m.state.ShowAllLogs = !m.state.ShowAllLogs
			m.scrollY = 0
			return m, m.refresh()
		}
	}

	return m, nil
}

func (m *MainModel) refresh() tea.Cmd {
	m.state.Loading = true
	return fetchCmd(m.source, m.state.ShowAllLogs)
}

// cycleInterval advances to the next refresh interval. The tick already
// scheduled still fires at the old interval.
func (m *MainModel) cycleInterval() {
	next := RefreshIntervals[0]
	for i, d := range RefreshIntervals {
		if d == m.state.Interval {
			next = RefreshIntervals[(i+1)%len(RefreshIntervals)]
			break
		}
	}
	m.state.Interval = next
	m.logf("refresh interval set to %s", next)
}

func (m *MainModel) navigateTo(cursor int) {
	pages := []state.Page{
		state.PageConsole,
		state.PageDashboard,
		state.PageHosts,
		state.PageProblems,
		state.PageSecurity,
		state.PageAttacks,
	}
	if cursor >= 0 && cursor < len(pages) {
		m.state.CurrentPage = pages[cursor]
		m.scrollY = 0
	}
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	var v float64 = m.velocity
	m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
	m.velocity = v
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	newW := msg.Width/2 - 6
	if newW > 10 {
		m.uptime.Resize(newW, 10)
		m.attacks.Resize(newW, 12)
	}
	return m, nil
}

func (m *MainModel) handleTickMsg(msg TickMsg) (tea.Model, tea.Cmd) {
	return m, tea.Batch(
		m.refresh(),
		tickCmd(m.state.Interval),
	)
}

func (m *MainModel) handleDataLoadedMsg(msg DataLoadedMsg) (tea.Model, tea.Cmd) {
	m.state.Loading = false
	m.state.LastUpdate = msg.At

	m.state.Err = msg.Err
	if msg.Err != nil {
		m.logf("ERROR monitoring poll: %v", msg.Err)
	} else {
		m.state.Dashboard = msg.Dashboard
		m.uptime.Push(msg.Dashboard.Stats.UpPercentage)
	}

	m.state.LogsErr = msg.LogsErr
	if msg.LogsErr != nil {
		m.logf("ERROR log poll: %v", msg.LogsErr)
	} else {
		m.state.Logs = msg.Logs
		m.state.Summary = output.Summarize(msg.Logs)
		m.attacks.SetCounts(output.AttackCounts(m.state.Summary))
	}

	if msg.Err == nil {
		st := msg.Dashboard.Stats
		m.logf("hosts=%d up=%d down=%d uptime=%.2f%% problems=%d events=%d",
			st.TotalHosts, st.ServersUp, st.ServersDown, st.UpPercentage,
			len(msg.Dashboard.Problems), m.state.Summary.Total)
	}
	return m, nil
}

func (m *MainModel) logf(format string, args ...any) {
	line := fmt.Sprintf("[%s] ", time.Now().Format("15:04:05")) + fmt.Sprintf(format, args...)
	m.state.ConsoleLogs = append(m.state.ConsoleLogs, line)
	if len(m.state.ConsoleLogs) > maxConsoleLines {
		m.state.ConsoleLogs = m.state.ConsoleLogs[1:]
	}
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	switch m.state.CurrentPage {
	case state.PageMenu:
		for i := range views.MenuOptions {
			if zone.Get(views.MenuZone(i)).InBounds(msg) {
				m.menuCursor = i
				m.navigateTo(i)
				return m, nil
			}
		}
	case state.PageDashboard:
		if zone.Get(views.FleetZone).InBounds(msg) {
			m.state.CurrentPage = state.PageHosts
			m.scrollY = 0
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	spin := m.spinner.View()
	switch m.state.CurrentPage {
	case state.PageMenu:
		return views.RenderMenu(m.state, m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY)
	case state.PageDashboard:
		return views.RenderDashboard(m.state, m.config, spin, m.uptime.Plot(), m.width, m.height)
	case state.PageConsole:
		return views.RenderConsole(m.state, spin, m.width, m.height, m.scrollY)
	case state.PageHosts:
		return views.RenderHosts(m.state, m.config, spin, m.width, m.height, m.scrollY)
	case state.PageProblems:
		return views.RenderProblems(m.state, spin, m.width, m.height, m.scrollY)
	case state.PageSecurity:
		return views.RenderSecurity(m.state, spin, m.width, m.height, m.scrollY)
	case state.PageAttacks:
		return views.RenderAttacks(m.state, spin, m.attacks.View(), m.width, m.height)
	default:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Render("Unknown view\n\nPress 'b' to go back"),
		)
	}
}

// Start runs the dashboard until the user quits.
func Start(source DataSource, cfg engine.Config, interval time.Duration) error {
	m := InitialModel(source, cfg, interval)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
