package output

import (
	"fmt"
	"sort"
	"strings"

	"opswatch/internal/engine"
	"opswatch/internal/model"
)

// Section constants to avoid hardcoded strings
const (
	SectionFleet    = "fleet"
	SectionHosts    = "hosts"
	SectionProblems = "problems"
	SectionSecurity = "security"
)

// UI/view-model types (no printing here)
type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status string
	Note   string
}

type Section struct {
	ID    string // fleet/hosts/problems/security
	Title string
	Items []Item
}

type DashboardView struct {
	Sections []Section
	Stats    model.FleetStats
}

// BuildDashboard converts one poll into UI-ready sections. logs may be nil
// when the log store was not queried.
func BuildDashboard(d model.Dashboard, logs *model.LogSummary, cfg engine.Config) DashboardView {
	fleet := Section{ID: SectionFleet, Title: "Fleet"}
	fleet.Items = append(fleet.Items,
		Item{Key: "total_hosts", Label: "Total Hosts", Value: float64(d.Stats.TotalHosts)},
		Item{Key: "servers_up", Label: "Up", Value: float64(d.Stats.ServersUp), Status: engine.StatusHealthy},
		Item{Key: "servers_down", Label: "Down", Value: float64(d.Stats.ServersDown), Status: downStatus(d.Stats.ServersDown)},
		Item{Key: "up_percentage", Label: "Uptime", Value: d.Stats.UpPercentage, Unit: "%"},
	)

	hosts := Section{ID: SectionHosts, Title: "Hosts"}
	for _, h := range d.Hosts {
		hosts.Items = append(hosts.Items, Item{
			Key:    "host_" + h.HostID,
			Label:  h.Hostname,
			Value:  h.CPUPercent,
			Unit:   "%",
			Status: engine.HostStatus(h, cfg),
			Note:   fmt.Sprintf("%s  %s  ram %.1f%%  in %s  out %s", h.IP, h.Availability, h.RAMPercent, h.BandwidthIn, h.BandwidthOut),
		})
	}

	problems := Section{ID: SectionProblems, Title: "Problems"}
	for _, p := range d.Problems {
		problems.Items = append(problems.Items, Item{
			Key:    "problem_" + p.ID,
			Label:  p.HostName,
			Status: problemStatus(p.Severity),
			Note:   fmt.Sprintf("[%s] %s", strings.ToUpper(string(p.Severity)), p.Description),
		})
	}

	sections := []Section{fleet, hosts, problems}
	if logs != nil {
		sections = append(sections, buildSecurity(*logs))
	}
	return DashboardView{Sections: sections, Stats: d.Stats}
}

func buildSecurity(s model.LogSummary) Section {
	sec := Section{ID: SectionSecurity, Title: "Security"}
	sec.Items = append(sec.Items,
		Item{Key: "events", Label: "Events", Value: float64(s.Total)},
		Item{Key: "brute_force", Label: "Brute Force", Value: float64(s.BruteForce), Status: countStatus(s.BruteForce, engine.StatusCritical)},
		Item{Key: "auth_failures", Label: "Auth Failures", Value: float64(s.AuthFailures), Status: countStatus(s.AuthFailures, engine.StatusWarning)},
	)
	for _, ac := range AttackCounts(s) {
		sec.Items = append(sec.Items, Item{
			Key:   "attack_" + string(ac.Type),
			Label: string(ac.Type),
			Value: float64(ac.Count),
		})
	}
	return sec
}

type AttackCount struct {
	Type  model.AttackType
	Count int
}

// AttackCounts lists the non-zero attack types, most frequent first and
// then in display order.
func AttackCounts(s model.LogSummary) []AttackCount {
	var out []AttackCount
	for _, t := range model.AttackTypes {
		if n := s.ByAttackType[t]; n > 0 {
			out = append(out, AttackCount{Type: t, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func downStatus(n int) string {
	if n > 0 {
		return engine.StatusCritical
	}
	return engine.StatusHealthy
}

func countStatus(n int, status string) string {
	if n > 0 {
		return status
	}
	return engine.StatusHealthy
}

func problemStatus(sev model.ProblemSeverity) string {
	switch sev {
	case model.ProblemDisaster, model.ProblemHigh:
		return engine.StatusCritical
	case model.ProblemWarning, model.ProblemAverage:
		return engine.StatusWarning
	default:
		return engine.StatusHealthy
	}
}

func (v DashboardView) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}
