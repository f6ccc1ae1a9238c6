package state

import (
	"time"

	"opswatch/internal/model"
)

type Page int

const (
	PageMenu Page = iota
	PageConsole
	PageDashboard
	PageHosts
	PageProblems
	PageSecurity
	PageAttacks
)

// AllSeverities disables the security log filter.
const AllSeverities = -1

// AppState holds the latest poll and the presentation state derived from it.
type AppState struct {
	Dashboard  model.Dashboard
	Logs       []model.ClassifiedLog
	Summary    model.LogSummary
	LastUpdate time.Time
	Err        error
	LogsErr    error
	Loading    bool

	ConsoleLogs []string
	CurrentPage Page

	Interval       time.Duration
	ShowAllLogs    bool
	SeverityFilter int
}

// FilteredLogs applies SeverityFilter to Logs.
func (s AppState) FilteredLogs() []model.ClassifiedLog {
	if s.SeverityFilter == AllSeverities {
		return s.Logs
	}
	out := make([]model.ClassifiedLog, 0, len(s.Logs))
	for _, l := range s.Logs {
		if int(l.Severity) == s.SeverityFilter {
			out = append(out, l)
		}
	}
	return out
}

// FilterLabel names the active severity filter.
func (s AppState) FilterLabel() string {
	if s.SeverityFilter == AllSeverities {
		return "all"
	}
	return model.Severity(s.SeverityFilter).String()
}

// NextSeverityFilter cycles all -> critical -> high -> medium -> low -> info -> all.
func (s AppState) NextSeverityFilter() int {
	switch {
	case s.SeverityFilter == AllSeverities:
		return int(model.SeverityCritical)
	case s.SeverityFilter <= int(model.SeverityInfo):
		return AllSeverities
	default:
		return s.SeverityFilter - 1
	}
}
