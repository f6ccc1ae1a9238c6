package collector

import (
	"fmt"
	"math"
	"strings"

	"opswatch/internal/model"
	"opswatch/internal/zabbix"
)

const (
	keyCPU    = "system.cpu.util"
	keyMemory = "vm.memory.utilization"
	keyNetIn  = "net.if.in"
	keyNetOut = "net.if.out"
)

// AggregateHost folds one host's interface and items into a summary.
// A nil iface leaves the IP as a placeholder and availability unknown.
// When several items match a bandwidth key the last one wins.
func AggregateHost(host zabbix.Host, iface *zabbix.Interface, items []zabbix.Item) model.HostSummary {
	sum := model.HostSummary{
		HostID:       host.HostID.String(),
		Hostname:     host.Host.String(),
		IP:           model.Placeholder,
		Availability: model.AvailabilityUnknown,
		BandwidthIn:  model.BandwidthPlaceholder,
		BandwidthOut: model.BandwidthPlaceholder,
	}
	if iface != nil {
		if ip := iface.IP.String(); ip != "" {
			sum.IP = ip
		}
		sum.Availability = availability(iface.Available.Int())
	}

	for _, it := range items {
		key := it.Key.String()
		switch {
		case key == keyCPU:
			sum.CPUPercent = round(it.LastValue.Float(), 1)
		case key == keyMemory:
			sum.RAMPercent = round(it.LastValue.Float(), 1)
		case strings.Contains(key, keyNetIn):
			sum.BandwidthIn = kbps(it.LastValue.Float())
		case strings.Contains(key, keyNetOut):
			sum.BandwidthOut = kbps(it.LastValue.Float())
		default:
			continue
		}
		if clock := it.LastClock.Int(); clock > sum.LastCheck {
			sum.LastCheck = clock
		}
	}
	return sum
}

// FleetStatsOf counts reachable and unreachable hosts. Hosts with unknown
// availability only count towards the total.
func FleetStatsOf(hosts []model.HostSummary) model.FleetStats {
	stats := model.FleetStats{TotalHosts: len(hosts)}
	for _, h := range hosts {
		switch h.Availability {
		case model.AvailabilityAvailable:
			stats.ServersUp++
		case model.AvailabilityUnavailable:
			stats.ServersDown++
		}
	}
	if stats.TotalHosts > 0 {
		stats.UpPercentage = round(float64(stats.ServersUp)/float64(stats.TotalHosts)*100, 2)
	}
	return stats
}

// MapProblems converts active triggers to problems. The result is never nil.
func MapProblems(triggers []zabbix.Trigger) []model.Problem {
	problems := make([]model.Problem, 0, len(triggers))
	for _, t := range triggers {
		p := model.Problem{
			ID:          t.TriggerID.String(),
			HostName:    "Unknown",
			Description: t.Description.String(),
			Severity:    problemSeverity(t.Priority.Int()),
			LastChange:  t.LastChange.Int(),
			Status:      model.ProblemActive,
		}
		if len(t.Hosts) > 0 && t.Hosts[0].Host != "" {
			p.HostName = t.Hosts[0].Host.String()
		}
		if p.Description == "" {
			p.Description = "No description"
		}
		if t.Value.String() == "0" {
			p.Status = model.ProblemResolved
		}
		problems = append(problems, p)
	}
	return problems
}

func problemSeverity(priority int64) model.ProblemSeverity {
	switch priority {
	case 5:
		return model.ProblemDisaster
	case 4:
		return model.ProblemHigh
	case 3:
		return model.ProblemWarning
	case 2:
		return model.ProblemAverage
	case 1:
		return model.ProblemInfo
	default:
		return model.ProblemUnknown
	}
}

func availability(v int64) model.Availability {
	switch model.Availability(v) {
	case model.AvailabilityAvailable:
		return model.AvailabilityAvailable
	case model.AvailabilityUnavailable:
		return model.AvailabilityUnavailable
	default:
		return model.AvailabilityUnknown
	}
}

func kbps(bitsPerSecond float64) string {
	return fmt.Sprintf("%.2f Kbps", bitsPerSecond/1024)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
