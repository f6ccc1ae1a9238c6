package engine

import (
	"opswatch/internal/model"
)

const (
	StatusHealthy  = "OK"
	StatusWarning  = "WARN"
	StatusCritical = "CRIT"
)

// Config holds warning and critical thresholds in percent.
type Config struct {
	CPUWarning  float64
	CPUCritical float64
	RAMWarning  float64
	RAMCritical float64
}

func DefaultConfig() Config {
	return Config{
		CPUWarning:  70.0,
		CPUCritical: 90.0,
		RAMWarning:  70.0,
		RAMCritical: 90.0,
	}
}

type CheckResult struct {
	Name   string
	Value  float64
	Status string
}

func getStatus(value, warning, critical float64) string {
	if value > critical {
		return StatusCritical
	}
	if value > warning {
		return StatusWarning
	}
	return StatusHealthy
}

// Evaluate checks one host. The result always holds Availability, CPU
// Usage and RAM Usage, in that order.
func Evaluate(host model.HostSummary, cfg Config) []CheckResult {
	var result []CheckResult

	// Availability
	availStatus := StatusHealthy
	switch host.Availability {
	case model.AvailabilityUnavailable:
		availStatus = StatusCritical
	case model.AvailabilityUnknown:
		availStatus = StatusWarning
	}
	result = append(result, CheckResult{
		Name:   "Availability",
		Value:  float64(host.Availability),
		Status: availStatus,
	})

	// CPU
	result = append(result, CheckResult{
		Name:   "CPU Usage",
		Value:  host.CPUPercent,
		Status: getStatus(host.CPUPercent, cfg.CPUWarning, cfg.CPUCritical),
	})

	// RAM
	result = append(result, CheckResult{
		Name:   "RAM Usage",
		Value:  host.RAMPercent,
		Status: getStatus(host.RAMPercent, cfg.RAMWarning, cfg.RAMCritical),
	})

	return result
}

// Overall returns the worst status among results.
func Overall(results []CheckResult) string {
	worst := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusCritical:
			return StatusCritical
		case StatusWarning:
			worst = StatusWarning
		}
	}
	return worst
}

// HostStatus is Overall(Evaluate(host, cfg)).
func HostStatus(host model.HostSummary, cfg Config) string {
	return Overall(Evaluate(host, cfg))
}
