package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"opswatch/internal/engine"
	"opswatch/internal/model"
	"opswatch/ui/tui/state"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// MockSource for testing
type MockSource struct {
	dashboard model.Dashboard
	logs      []model.ClassifiedLog
	err       error
	logsErr   error
	lastAll   bool
}

func (m *MockSource) Dashboard(ctx context.Context) (model.Dashboard, error) {
	return m.dashboard, m.err
}

func (m *MockSource) Logs(ctx context.Context, all bool) ([]model.ClassifiedLog, error) {
	m.lastAll = all
	return m.logs, m.logsErr
}

func newTestModel() (MainModel, *MockSource) {
	src := &MockSource{}
	return InitialModel(src, engine.DefaultConfig(), 30*time.Second), src
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenuNavigation(t *testing.T) {
	mm, _ := newTestModel()

	// Initial state
	if mm.menuCursor != 0 {
		t.Errorf("Expected initial menu cursor 0, got %d", mm.menuCursor)
	}
	if mm.state.CurrentPage != state.PageMenu {
		t.Errorf("Expected initial page PageMenu, got %v", mm.state.CurrentPage)
	}

	// Test Down Navigation
	cmd := tea.KeyMsg{Type: tea.KeyDown, Runes: []rune{}, Alt: false}
	updatedModel, _ := mm.Update(cmd)
	m := updatedModel.(*MainModel)

	if m.menuCursor != 1 {
		t.Errorf("Expected menu cursor 1 after Down key, got %d", m.menuCursor)
	}

	// Test Up Navigation
	cmd = tea.KeyMsg{Type: tea.KeyUp, Runes: []rune{}, Alt: false}
	updatedModel, _ = m.Update(cmd)
	m = updatedModel.(*MainModel)

	if m.menuCursor != 0 {
		t.Errorf("Expected menu cursor 0 after Up key, got %d", m.menuCursor)
	}

	// Cursor stops at the last entry
	for i := 0; i < 10; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.menuCursor != 5 {
		t.Errorf("Expected menu cursor clamped to 5, got %d", m.menuCursor)
	}
}

func TestMenuAnimationLogic(t *testing.T) {
	mm, _ := newTestModel()

	// Move cursor to 1
	mm.menuCursor = 1

	if mm.animCursor != 0 {
		t.Errorf("Expected initial animCursor 0, got %f", mm.animCursor)
	}

	// The spring physics should move animCursor towards menuCursor (1.0)
	animateMsg := AnimateMsg(time.Now())
	updatedModel, _ := mm.Update(animateMsg)
	m := updatedModel.(*MainModel)

	if m.animCursor <= 0 {
		t.Errorf("Expected animCursor to increase after animation frame, got %f", m.animCursor)
	}
	if m.animCursor >= 1.0 {
		t.Errorf("Expected animCursor to not reach target immediately, got %f", m.animCursor)
	}

	updatedModel, _ = m.Update(animateMsg)
	m = updatedModel.(*MainModel)
	prevCursor := m.animCursor

	updatedModel, _ = m.Update(animateMsg)
	m = updatedModel.(*MainModel)

	if m.animCursor <= prevCursor {
		t.Errorf("Expected animCursor to continue increasing, got %f (prev %f)", m.animCursor, prevCursor)
	}
}

func TestPageTransition(t *testing.T) {
	tests := []struct {
		cursor int
		want   state.Page
	}{
		{0, state.PageConsole},
		{1, state.PageDashboard},
		{2, state.PageHosts},
		{3, state.PageProblems},
		{4, state.PageSecurity},
		{5, state.PageAttacks},
	}
	for _, tt := range tests {
		mm, _ := newTestModel()
		mm.menuCursor = tt.cursor
		updatedModel, _ := mm.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m := updatedModel.(*MainModel)

		if m.state.CurrentPage != tt.want {
			t.Errorf("cursor %d: expected page %v, got %v", tt.cursor, tt.want, m.state.CurrentPage)
		}

		m.scrollY = 3
		updatedModel, _ = m.Update(key("b"))
		m = updatedModel.(*MainModel)
		if m.state.CurrentPage != state.PageMenu {
			t.Errorf("cursor %d: expected PageMenu after back, got %v", tt.cursor, m.state.CurrentPage)
		}
		if m.scrollY != 0 {
			t.Errorf("cursor %d: scroll should reset on back, got %d", tt.cursor, m.scrollY)
		}
	}
}

func TestIntervalCycle(t *testing.T) {
	mm, _ := newTestModel()
	want := []time.Duration{time.Minute, 5 * time.Minute, 30 * time.Second, time.Minute}
	for i, w := range want {
		mm.Update(key("i"))
		if mm.state.Interval != w {
			t.Fatalf("press %d: interval = %s, want %s", i+1, mm.state.Interval, w)
		}
	}
	if !strings.Contains(mm.state.ConsoleLogs[0], "refresh interval set to 1m0s") {
		t.Errorf("interval change not logged: %q", mm.state.ConsoleLogs[0])
	}
}

func TestIntervalOutsideCycleRestarts(t *testing.T) {
	src := &MockSource{}
	mm := InitialModel(src, engine.DefaultConfig(), 10*time.Second)
	mm.Update(key("i"))
	if mm.state.Interval != 30*time.Second {
		t.Errorf("interval = %s, want 30s", mm.state.Interval)
	}

	mm = InitialModel(src, engine.DefaultConfig(), 0)
	if mm.state.Interval != 30*time.Second {
		t.Errorf("zero interval should default to 30s, got %s", mm.state.Interval)
	}
}

func TestRefreshFetches(t *testing.T) {
	mm, src := newTestModel()
	src.dashboard = sampleDashboard()

	mm.state.Loading = false
	_, cmd := mm.Update(key("r"))
	if cmd == nil {
		t.Fatal("refresh should return a command")
	}
	if !mm.state.Loading {
		t.Error("refresh should mark the model as loading")
	}

	msg := fetchCmd(src, true)()
	loaded, ok := msg.(DataLoadedMsg)
	if !ok {
		t.Fatalf("fetchCmd returned %T", msg)
	}
	if !src.lastAll {
		t.Error("showAll not forwarded to Logs")
	}
	if loaded.Dashboard.Stats.TotalHosts != 2 || loaded.At.IsZero() {
		t.Errorf("unexpected message: %+v", loaded)
	}
}

func sampleDashboard() model.Dashboard {
	return model.Dashboard{
		Stats: model.FleetStats{TotalHosts: 2, ServersUp: 1, ServersDown: 1, UpPercentage: 50},
		Hosts: []model.HostSummary{
			{HostID: "1", Hostname: "web-01", IP: "10.0.0.1", Availability: model.AvailabilityAvailable, CPUPercent: 12.5, RAMPercent: 40, BandwidthIn: "0 bps", BandwidthOut: "0 bps"},
			{HostID: "2", Hostname: "db-01", IP: "10.0.0.2", Availability: model.AvailabilityUnavailable, BandwidthIn: "0 bps", BandwidthOut: "0 bps"},
		},
		Problems: []model.Problem{
			{ID: "7", HostName: "db-01", Description: "Host unreachable", Severity: model.ProblemHigh, Status: model.ProblemActive},
		},
	}
}

func classified(sev model.Severity, attack model.AttackType) model.ClassifiedLog {
	return model.ClassifiedLog{
		LogRecord:      model.LogRecord{ID: string(attack), Protocol: model.ProtocolHTTP, Timestamp: "2024-01-01T00:00:00Z"},
		Classification: model.Classification{Severity: sev, AttackType: attack},
	}
}

func TestDataLoaded(t *testing.T) {
	mm, _ := newTestModel()
	logs := []model.ClassifiedLog{
		classified(model.SeverityHigh, model.AttackSQLInjection),
		classified(model.SeverityHigh, model.AttackSQLInjection),
		classified(model.SeverityCritical, model.AttackServerError),
	}

	mm.Update(DataLoadedMsg{Dashboard: sampleDashboard(), Logs: logs, At: time.Now()})

	if mm.state.Loading {
		t.Error("loading flag should clear")
	}
	if mm.state.Dashboard.Stats.TotalHosts != 2 {
		t.Errorf("dashboard not stored: %+v", mm.state.Dashboard.Stats)
	}
	if got := mm.uptime.History; len(got) != 1 || got[0] != 50 {
		t.Errorf("uptime history = %v", got)
	}
	if mm.state.Summary.Total != 3 || mm.state.Summary.ByAttackType[model.AttackSQLInjection] != 2 {
		t.Errorf("summary = %+v", mm.state.Summary)
	}
	if len(mm.attacks.Counts) != 2 || mm.attacks.Counts[0].Type != model.AttackSQLInjection {
		t.Errorf("attack counts = %+v", mm.attacks.Counts)
	}
	if n := len(mm.state.ConsoleLogs); n != 1 || !strings.Contains(mm.state.ConsoleLogs[0], "hosts=2 up=1 down=1 uptime=50.00% problems=1 events=3") {
		t.Errorf("console = %v", mm.state.ConsoleLogs)
	}
}

func TestDataLoadedPartialFailure(t *testing.T) {
	mm, _ := newTestModel()
	mm.Update(DataLoadedMsg{Dashboard: sampleDashboard(), At: time.Now()})

	mm.Update(DataLoadedMsg{Err: errors.New("zabbix down"), Logs: []model.ClassifiedLog{classified(model.SeverityLow, model.AttackPathScanning)}, At: time.Now()})

	if mm.state.Err == nil {
		t.Fatal("dashboard error should be kept")
	}
	if mm.state.Dashboard.Stats.TotalHosts != 2 {
		t.Error("previous dashboard should survive a failed poll")
	}
	if len(mm.uptime.History) != 1 {
		t.Errorf("failed poll must not add a history point, got %v", mm.uptime.History)
	}
	if mm.state.Summary.Total != 1 {
		t.Errorf("logs should still load, summary = %+v", mm.state.Summary)
	}
	if !strings.Contains(mm.state.ConsoleLogs[len(mm.state.ConsoleLogs)-1], "ERROR monitoring poll: zabbix down") {
		t.Errorf("console = %v", mm.state.ConsoleLogs)
	}

	mm.Update(DataLoadedMsg{Dashboard: sampleDashboard(), LogsErr: errors.New("es down"), At: time.Now()})
	if mm.state.Err != nil || mm.state.LogsErr == nil {
		t.Errorf("errors = %v / %v", mm.state.Err, mm.state.LogsErr)
	}
}

func TestConsoleCapped(t *testing.T) {
	mm, _ := newTestModel()
	for i := 0; i < maxConsoleLines+20; i++ {
		mm.logf("line %d", i)
	}
	if len(mm.state.ConsoleLogs) != maxConsoleLines {
		t.Fatalf("console length = %d", len(mm.state.ConsoleLogs))
	}
	if !strings.HasSuffix(mm.state.ConsoleLogs[0], "line 20") {
		t.Errorf("oldest kept line = %q", mm.state.ConsoleLogs[0])
	}
}

func TestSecurityKeys(t *testing.T) {
	mm, _ := newTestModel()
	mm.state.CurrentPage = state.PageSecurity

	mm.Update(key("f"))
	if mm.state.SeverityFilter != int(model.SeverityCritical) {
		t.Errorf("filter = %d, want critical", mm.state.SeverityFilter)
	}

	_, cmd := mm.Update(key("a"))
	if !mm.state.ShowAllLogs || cmd == nil {
		t.Error("'a' should toggle show-all and refetch")
	}

	// Filter keys do nothing on other pages
	mm.state.CurrentPage = state.PageHosts
	mm.Update(key("f"))
	if mm.state.SeverityFilter != int(model.SeverityCritical) {
		t.Errorf("filter changed outside the security page: %d", mm.state.SeverityFilter)
	}
}

func TestViewsRender(t *testing.T) {
	zone.NewGlobal()
	mm, _ := newTestModel()
	mm.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	mm.Update(DataLoadedMsg{
		Dashboard: sampleDashboard(),
		Logs:      []model.ClassifiedLog{classified(model.SeverityHigh, model.AttackXSS)},
		At:        time.Now(),
	})

	pages := map[state.Page]string{
		state.PageMenu:      "Fleet Dashboard",
		state.PageConsole:   "hosts=2",
		state.PageDashboard: "Active Problems (1)",
		state.PageHosts:     "web-01",
		state.PageProblems:  "Host unreachable",
		state.PageSecurity:  "xss_attempt",
		state.PageAttacks:   "xss_attempt",
	}
	for page, want := range pages {
		mm.state.CurrentPage = page
		if out := mm.View(); !strings.Contains(out, want) {
			t.Errorf("page %v: output does not contain %q", page, want)
		}
	}
}
