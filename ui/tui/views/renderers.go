package views

import (
	"opswatch/internal/engine"
	"opswatch/ui/tui/state"
)

func RenderMenu(s state.AppState, width, height, cursor int, animCursor float64, mouseX, mouseY int) string {
	return MenuView{}.Render(s, ViewProps{
		Width:      width,
		Height:     height,
		MenuCursor: cursor,
		AnimCursor: animCursor,
		MouseX:     mouseX,
		MouseY:     mouseY,
	})
}

func RenderDashboard(s state.AppState, checks engine.Config, spinnerView, chartView string, width, height int) string {
	return DashboardView{}.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		SpinnerView: spinnerView,
		ChartView:   chartView,
		Checks:      checks,
	})
}

func RenderConsole(s state.AppState, spinnerView string, width, height, scrollY int) string {
	return ConsoleView{}.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		ScrollY:     scrollY,
		SpinnerView: spinnerView,
	})
}

func RenderHosts(s state.AppState, checks engine.Config, spinnerView string, width, height, scrollY int) string {
	return HostsView{}.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		ScrollY:     scrollY,
		SpinnerView: spinnerView,
		Checks:      checks,
	})
}

func RenderProblems(s state.AppState, spinnerView string, width, height, scrollY int) string {
	return ProblemsView{}.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		ScrollY:     scrollY,
		SpinnerView: spinnerView,
	})
}

func RenderSecurity(s state.AppState, spinnerView string, width, height, scrollY int) string {
	return SecurityView{}.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		ScrollY:     scrollY,
		SpinnerView: spinnerView,
	})
}

func RenderAttacks(s state.AppState, spinnerView, chartView string, width, height int) string {
	return AttacksView{}.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		SpinnerView: spinnerView,
		ChartView:   chartView,
	})
}
