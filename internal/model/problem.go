package model

// ProblemStatus reflects the trigger value flag.
type ProblemStatus string

const (
	ProblemResolved ProblemStatus = "RESOLVED"
	ProblemActive   ProblemStatus = "PROBLEM"
)

// ProblemSeverity names a trigger priority.
type ProblemSeverity string

const (
	ProblemDisaster ProblemSeverity = "disaster"
	ProblemHigh     ProblemSeverity = "high"
	ProblemWarning  ProblemSeverity = "warning"
	ProblemAverage  ProblemSeverity = "average"
	ProblemInfo     ProblemSeverity = "info"
	ProblemUnknown  ProblemSeverity = "unknown"
)

// Problem is one active trigger from the alerting backend.
type Problem struct {
	ID          string          `json:"id"`
	HostName    string          `json:"host"`
	Description string          `json:"problem"`
	Severity    ProblemSeverity `json:"severity"`
	LastChange  int64           `json:"lastchange"`
	Status      ProblemStatus   `json:"status"`
}

// Dashboard is the composed payload for a single dashboard poll.
type Dashboard struct {
	Stats    FleetStats    `json:"stats"`
	Hosts    []HostSummary `json:"hosts"`
	Problems []Problem     `json:"problems"`
}

// Health reports independent reachability of both upstreams.
type Health struct {
	Zabbix        bool `json:"zabbix"`
	Elasticsearch bool `json:"elasticsearch"`
}
