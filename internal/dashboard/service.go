package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"opswatch/internal/collector"
	"opswatch/internal/collector/services"
	"opswatch/internal/model"
	"opswatch/internal/output"
)

// HostSource produces host summaries and problems for one poll.
// *collector.HostCollector satisfies it.
type HostSource interface {
	CollectHosts(ctx context.Context) ([]model.HostSummary, error)
	CollectProblems(ctx context.Context) ([]model.Problem, error)
}

// Recorder receives poll-level measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	output.ClassificationObserver
	ObservePoll(view string, err error, elapsed time.Duration)
	ObserveFleet(s model.FleetStats)
}

type Deps struct {
	Hosts      HostSource
	Logs       output.LogSource
	Normalizer output.RecordNormalizer
	Flagger    output.LogFlagger
	Zabbix     services.Probe
	Elastic    services.Probe
	Self       *services.SelfSensor
}

// Service answers every dashboard view. Each call is an independent poll;
// nothing is cached between calls.
type Service struct {
	deps     Deps
	pipeline output.PipelineOptions
	recorder Recorder
	logger   *slog.Logger
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithPipelineOptions(o output.PipelineOptions) Option {
	return func(s *Service) { s.pipeline = o }
}

func New(deps Deps, opts ...Option) *Service {
	s := &Service{
		deps:     deps,
		pipeline: output.DefaultPipelineOptions(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deps.Self == nil {
		s.deps.Self = services.NewSelfSensor()
	}
	if s.recorder != nil {
		s.pipeline.Observer = s.recorder
	}
	return s
}

func (s *Service) observe(view string, start time.Time, err error) {
	if s.recorder != nil {
		s.recorder.ObservePoll(view, err, time.Since(start))
	}
	if err != nil {
		s.logger.Error("poll failed", "view", view, "error", err)
	}
}

// Hosts lists the host summaries. An unusable host listing is an empty
// list.
func (s *Service) Hosts(ctx context.Context) (hosts []model.HostSummary, err error) {
	defer func(start time.Time) { s.observe("hosts", start, err) }(time.Now())

	hosts, err = s.deps.Hosts.CollectHosts(ctx)
	if errors.Is(err, collector.ErrNoHosts) {
		s.logger.Warn("host listing unusable, reporting no hosts", "error", err)
		return []model.HostSummary{}, nil
	}
	return hosts, err
}

func (s *Service) Problems(ctx context.Context) (problems []model.Problem, err error) {
	defer func(start time.Time) { s.observe("problems", start, err) }(time.Now())
	return s.deps.Hosts.CollectProblems(ctx)
}

// Dashboard fetches hosts and problems concurrently and derives the fleet
// statistics from the host list. When the host listing is unusable the
// dashboard is empty, problems included.
func (s *Service) Dashboard(ctx context.Context) (d model.Dashboard, err error) {
	defer func(start time.Time) { s.observe("dashboard", start, err) }(time.Now())

	var hosts []model.HostSummary
	var problems []model.Problem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		hosts, err = s.deps.Hosts.CollectHosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		problems, err = s.deps.Hosts.CollectProblems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, collector.ErrNoHosts) {
			s.logger.Warn("host listing unusable, reporting an empty dashboard", "error", err)
			return model.Dashboard{Hosts: []model.HostSummary{}, Problems: []model.Problem{}}, nil
		}
		return model.Dashboard{}, err
	}

	d = model.Dashboard{
		Stats:    collector.FleetStatsOf(hosts),
		Hosts:    hosts,
		Problems: problems,
	}
	if s.recorder != nil {
		s.recorder.ObserveFleet(d.Stats)
	}
	return d, nil
}

// Logs runs the security log pipeline. all keeps records classified as
// normal.
func (s *Service) Logs(ctx context.Context, all bool) (logs []model.ClassifiedLog, err error) {
	defer func(start time.Time) { s.observe("logs", start, err) }(time.Now())

	opts := s.pipeline
	opts.ShowAll = all
	return output.RunLogPipeline(ctx, s.deps.Logs, s.deps.Normalizer, s.deps.Flagger, opts)
}

func (s *Service) LogSummary(ctx context.Context, all bool) (model.LogSummary, error) {
	logs, err := s.Logs(ctx, all)
	if err != nil {
		return model.LogSummary{}, err
	}
	return output.Summarize(logs), nil
}

// Health probes both upstreams concurrently. It never fails; an
// unreachable upstream is reported as false.
func (s *Service) Health(ctx context.Context) model.Health {
	results := services.RunProbes(ctx, s.deps.Zabbix, s.deps.Elastic)
	for _, r := range results {
		if !r.OK {
			s.logger.Warn("upstream unreachable", "probe", r.Name, "error", r.Err, "elapsed", r.Elapsed)
		}
	}
	return model.Health{Zabbix: results[0].OK, Elasticsearch: results[1].OK}
}

// Status reports on the dashboard process itself.
func (s *Service) Status(ctx context.Context) (model.SelfStatus, error) {
	return s.deps.Self.Collect(ctx)
}
