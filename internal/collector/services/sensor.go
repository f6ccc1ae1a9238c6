package services

import (
	"context"
	"sync"
	"time"
)

// Probe checks whether one upstream is reachable.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

type ProbeResult struct {
	Name    string
	OK      bool
	Err     error
	Elapsed time.Duration
}

// RunProbes runs every probe concurrently and waits for all of them.
// Results are returned in the order of probes. A failing probe never
// affects the others.
func RunProbes(ctx context.Context, probes ...Probe) []ProbeResult {
	results := make([]ProbeResult, len(probes))

	var wg sync.WaitGroup
	wg.Add(len(probes))
	for i, p := range probes {
		go func() {
			defer wg.Done()
			start := time.Now()
			err := p.Check(ctx)
			results[i] = ProbeResult{Name: p.Name(), OK: err == nil, Err: err, Elapsed: time.Since(start)}
		}()
	}
	wg.Wait()
	return results
}
