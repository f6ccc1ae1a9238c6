package model

// SelfStatus describes the dashboard process and the machine it runs on.
type SelfStatus struct {
	Hostname       string  `json:"hostname"`
	OS             string  `json:"os"`
	Platform       string  `json:"platform"`
	KernelVersion  string  `json:"kernelVersion"`
	HostUptime     uint64  `json:"hostUptime"`
	CPUCores       int     `json:"cpuCores"`
	MemoryPercent  float64 `json:"memoryPercent"`
	PID            int32   `json:"pid"`
	ProcessRSS     uint64  `json:"processRss"`
	ProcessCPU     float64 `json:"processCpu"`
	Goroutines     int     `json:"goroutines"`
	ProcessUptimeS int64   `json:"processUptime"`
}
