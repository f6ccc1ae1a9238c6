package model

// Availability is the tri-state reachability reported by a host interface.
type Availability int

const (
	AvailabilityUnknown     Availability = 0
	AvailabilityAvailable   Availability = 1
	AvailabilityUnavailable Availability = 2
)

func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "online"
	case AvailabilityUnavailable:
		return "offline"
	default:
		return "unknown"
	}
}

// BandwidthPlaceholder is reported when a host has no interface traffic item.
const BandwidthPlaceholder = "0 bps"

// HostSummary is one monitored host as seen in a single poll.
type HostSummary struct {
	HostID       string       `json:"hostid"`
	Hostname     string       `json:"host"`
	IP           string       `json:"ip"`
	Availability Availability `json:"available"`
	CPUPercent   float64      `json:"cpu"`
	RAMPercent   float64      `json:"ram"`
	BandwidthIn  string       `json:"bwIn"`
	BandwidthOut string       `json:"bwOut"`
	LastCheck    int64        `json:"lastCheck"`
}

// FleetStats is derived from the full host list of a poll.
type FleetStats struct {
	TotalHosts   int     `json:"totalHosts"`
	ServersUp    int     `json:"serversUp"`
	ServersDown  int     `json:"serversDown"`
	UpPercentage float64 `json:"upPercentage"`
}
