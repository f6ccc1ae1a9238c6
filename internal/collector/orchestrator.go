package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"opswatch/internal/model"
	"opswatch/internal/zabbix"
)

// ErrNoHosts reports that the host listing answered without a usable host
// list (an RPC error object or a non-list result). Callers that only want
// the host table treat it as an empty fleet.
var ErrNoHosts = errors.New("host listing returned no usable data")

// Source is the subset of the monitoring API the collector reads from.
// *zabbix.Client satisfies it.
type Source interface {
	Hosts(ctx context.Context) ([]zabbix.Host, error)
	HostInterfaces(ctx context.Context, hostID string) ([]zabbix.Interface, error)
	Items(ctx context.Context, hostID string) ([]zabbix.Item, error)
	Triggers(ctx context.Context) ([]zabbix.Trigger, error)
}

// HostCollector polls the monitoring backend and produces host summaries
// and problems for a single dashboard refresh.
type HostCollector struct {
	src    Source
	cfg    CollectorConfig
	logger *slog.Logger
}

type Option func(*HostCollector)

func WithLogger(l *slog.Logger) Option {
	return func(c *HostCollector) { c.logger = l }
}

func NewHostCollector(src Source, cfg CollectorConfig, opts ...Option) (*HostCollector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &HostCollector{src: src, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CollectHosts lists every host and resolves its interface and items
// concurrently. A failed lookup for one host degrades that host to
// placeholders; only a failed host listing fails the call, with
// ErrNoHosts when the listing was unusable rather than unreachable. On
// success the result keeps host.get order and is never nil.
func (c *HostCollector) CollectHosts(ctx context.Context) ([]model.HostSummary, error) {
	hosts, err := c.src.Hosts(ctx)
	if err != nil {
		if absorbable(err) {
			return nil, fmt.Errorf("%w: %w", ErrNoHosts, err)
		}
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}

	out := make([]model.HostSummary, len(hosts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)

	for i, h := range hosts {
		g.Go(func() error {
			sum, err := c.collectHost(gctx, h)
			if err != nil {
				return err
			}
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HostCollector) collectHost(ctx context.Context, h zabbix.Host) (model.HostSummary, error) {
	hctx, cancel := context.WithTimeout(ctx, c.cfg.HostTimeout)
	defer cancel()

	id := h.HostID.String()

	var (
		wg                 sync.WaitGroup
		ifaces             []zabbix.Interface
		items              []zabbix.Item
		ifaceErr, itemsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ifaces, ifaceErr = c.src.HostInterfaces(hctx, id)
	}()
	go func() {
		defer wg.Done()
		items, itemsErr = c.src.Items(hctx, id)
	}()
	wg.Wait()

	if (ifaceErr != nil || itemsErr != nil) && ctx.Err() != nil {
		return model.HostSummary{}, ctx.Err()
	}
	if ifaceErr != nil {
		c.logger.Warn("interface lookup failed", "host", h.Host.String(), "error", ifaceErr)
	}
	if len(ifaces) == 0 {
		ifaces = h.Interfaces
	}
	if itemsErr != nil {
		c.logger.Warn("item lookup failed", "host", h.Host.String(), "error", itemsErr)
		items = nil
	}

	var iface *zabbix.Interface
	if len(ifaces) > 0 {
		iface = &ifaces[0]
	}
	return AggregateHost(h, iface, items), nil
}

// CollectProblems returns the active problems. A non-list result or an
// RPC error object yields an empty list; transport and login failures
// are returned.
func (c *HostCollector) CollectProblems(ctx context.Context) ([]model.Problem, error) {
	triggers, err := c.src.Triggers(ctx)
	if err != nil {
		if absorbable(err) {
			c.logger.Warn("trigger listing returned no usable data", "error", err)
			return []model.Problem{}, nil
		}
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	return MapProblems(triggers), nil
}

// absorbable reports whether err describes an unusable payload rather than
// an unreachable or unauthenticated backend.
func absorbable(err error) bool {
	if errors.Is(err, zabbix.ErrLogin) {
		return false
	}
	if errors.Is(err, zabbix.ErrNotList) {
		return true
	}
	var rpcErr *zabbix.RPCError
	return errors.As(err, &rpcErr)
}
