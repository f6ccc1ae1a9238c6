package services

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"opswatch/internal/model"
)

// SelfSensor reports on the dashboard's own process and host.
type SelfSensor struct {
	pid     int32
	started time.Time
}

func NewSelfSensor() *SelfSensor {
	return &SelfSensor{pid: int32(os.Getpid()), started: time.Now()}
}

func (s *SelfSensor) Name() string {
	return "Self"
}

// Collect fails only when host information is unavailable; the process
// and memory figures are best-effort.
func (s *SelfSensor) Collect(ctx context.Context) (model.SelfStatus, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return model.SelfStatus{}, fmt.Errorf("failed to get host info: %w", err)
	}

	st := model.SelfStatus{
		Hostname:       info.Hostname,
		OS:             info.OS,
		Platform:       info.Platform,
		KernelVersion:  info.KernelVersion,
		HostUptime:     info.Uptime,
		PID:            s.pid,
		Goroutines:     runtime.NumGoroutine(),
		ProcessUptimeS: int64(time.Since(s.started).Seconds()),
	}

	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		st.CPUCores = cores
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemoryPercent = vm.UsedPercent
	}

	p, err := process.NewProcessWithContext(ctx, s.pid)
	if err != nil {
		return st, nil
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		st.ProcessRSS = mi.RSS
	}
	if pct, err := p.CPUPercentWithContext(ctx); err == nil {
		st.ProcessCPU = pct
	}
	return st, nil
}
