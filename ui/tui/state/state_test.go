package state

import (
	"testing"

	"opswatch/internal/model"
)

func logAt(sev model.Severity) model.ClassifiedLog {
	return model.ClassifiedLog{Classification: model.Classification{Severity: sev}}
}

func TestFilteredLogs(t *testing.T) {
	s := AppState{
		SeverityFilter: AllSeverities,
		Logs: []model.ClassifiedLog{
			logAt(model.SeverityHigh),
			logAt(model.SeverityCritical),
			logAt(model.SeverityHigh),
		},
	}
	if got := len(s.FilteredLogs()); got != 3 {
		t.Errorf("all: got %d logs", got)
	}

	s.SeverityFilter = int(model.SeverityHigh)
	if got := len(s.FilteredLogs()); got != 2 {
		t.Errorf("high: got %d logs", got)
	}

	s.SeverityFilter = int(model.SeverityLow)
	if got := s.FilteredLogs(); got == nil || len(got) != 0 {
		t.Errorf("low: got %v, want empty non-nil", got)
	}
}

func TestSeverityFilterCycle(t *testing.T) {
	s := AppState{SeverityFilter: AllSeverities}
	want := []string{"critical", "high", "medium", "low", "info", "all", "critical"}
	for i, w := range want {
		s.SeverityFilter = s.NextSeverityFilter()
		if got := s.FilterLabel(); got != w {
			t.Fatalf("step %d: filter = %q, want %q", i, got, w)
		}
	}
}
