package views

import (
	"testing"
	"time"
)

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		total, scroll, avail int
		start, end           int
	}{
		{10, 0, 5, 0, 5},
		{10, 3, 5, 3, 8},
		{10, 8, 5, 5, 10},
		{10, -2, 5, 0, 5},
		{3, 2, 5, 0, 3},
		{0, 4, 5, 0, 0},
		{10, 2, 0, 2, 3},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.total, tt.scroll, tt.avail)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = %d, %d; want %d, %d",
				tt.total, tt.scroll, tt.avail, start, end, tt.start, tt.end)
		}
	}
}

func TestFormatInterval(t *testing.T) {
	tests := map[time.Duration]string{
		30 * time.Second: "30s",
		time.Minute:      "1m",
		5 * time.Minute:  "5m",
		90 * time.Second: "1m30s",
	}
	for d, want := range tests {
		if got := formatInterval(d); got != want {
			t.Errorf("formatInterval(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestAgo(t *testing.T) {
	if got := ago(0); got != "-" {
		t.Errorf("ago(0) = %q", got)
	}
	if got := ago(time.Now().Add(-2 * time.Hour).Unix()); got != "2h ago" {
		t.Errorf("ago(2h) = %q", got)
	}
	if got := ago(time.Now().Add(-3 * 24 * time.Hour).Unix()); got != "3d ago" {
		t.Errorf("ago(3d) = %q", got)
	}
}
