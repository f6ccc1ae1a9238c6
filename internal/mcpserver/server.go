package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"opswatch/internal/engine"
	"opswatch/internal/model"
	"opswatch/internal/output"
)

// DashboardService is the read-only data the tools expose.
type DashboardService interface {
	Hosts(ctx context.Context) ([]model.HostSummary, error)
	Problems(ctx context.Context) ([]model.Problem, error)
	Dashboard(ctx context.Context) (model.Dashboard, error)
	Logs(ctx context.Context, all bool) ([]model.ClassifiedLog, error)
	Health(ctx context.Context) model.Health
}

// Server wraps the MCP server with opswatch capabilities.
type Server struct {
	mcpServer *mcp.Server
	svc       DashboardService
	checks    engine.Config
	logger    *slog.Logger
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
	Checks        engine.Config
}

func DefaultConfig() Config {
	return Config{
		ServerName:    "opswatch",
		ServerVersion: "1.0.0",
		Checks:        engine.DefaultConfig(),
	}
}

// NewServer creates a new MCP server instance with every tool registered.
func NewServer(cfg Config, svc DashboardService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		svc:       svc,
		checks:    cfg.Checks,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// EmptyArgs is the input of tools that take no arguments.
type EmptyArgs struct{}

// HostView is a host with its evaluated health status.
type HostView struct {
	HostID       string  `json:"hostid"`
	Hostname     string  `json:"host"`
	IP           string  `json:"ip"`
	Availability string  `json:"availability" jsonschema:"online, offline or unknown"`
	CPUPercent   float64 `json:"cpu"`
	RAMPercent   float64 `json:"ram"`
	BandwidthIn  string  `json:"bwIn"`
	BandwidthOut string  `json:"bwOut"`
	LastCheck    int64   `json:"lastCheck" jsonschema:"unix time of the newest metric"`
	Status       string  `json:"status" jsonschema:"overall health: OK, WARN or CRIT"`
}

type DashboardResult struct {
	Stats    model.FleetStats `json:"stats" jsonschema:"fleet availability statistics"`
	Hosts    []HostView       `json:"hosts" jsonschema:"monitored hosts"`
	Problems []model.Problem  `json:"problems" jsonschema:"active problems"`
}

type HostsResult struct {
	Hosts []HostView `json:"hosts" jsonschema:"monitored hosts"`
}

type ProblemsResult struct {
	Problems []model.Problem `json:"problems" jsonschema:"active problems"`
}

// SecurityLogsArgs defines the input for get_security_logs tool.
type SecurityLogsArgs struct {
	All   bool `json:"all,omitempty" jsonschema:"include records classified as normal"`
	Limit int  `json:"limit,omitempty" jsonschema:"maximum number of records to return"`
}

// SecurityLog is a flattened classified record. Severity is rendered as
// its name.
type SecurityLog struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Protocol   string `json:"protocol"`
	IP         string `json:"ip"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Status     int    `json:"status"`
	UserAgent  string `json:"userAgent"`
	Username   string `json:"username"`
	Outcome    string `json:"outcome"`
	Severity   string `json:"severity"`
	AttackType string `json:"attackType"`
	Score      int    `json:"score"`
}

type SecuritySummary struct {
	Total        int            `json:"total"`
	ByAttackType map[string]int `json:"byAttackType"`
	BySeverity   map[string]int `json:"bySeverity"`
	BruteForce   int            `json:"bruteForce"`
	AuthFailures int            `json:"authFailures"`
}

type SecurityLogsResult struct {
	Logs    []SecurityLog   `json:"logs" jsonschema:"classified security log records, newest first"`
	Summary SecuritySummary `json:"summary" jsonschema:"counts over the returned batch"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get fleet statistics, every monitored host and all active problems in one poll.",
	}, s.handleGetDashboard)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_hosts",
		Description: "List monitored hosts with IP, availability, CPU and RAM usage, bandwidth and health status.",
	}, s.handleGetHosts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_problems",
		Description: "List active problems (triggers) with host, severity and last change time.",
	}, s.handleGetProblems)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_security_logs",
		Description: "Get recent web and SSH log records classified for attacks (SQL injection, XSS, path traversal, scanners, brute force). Set all to include normal traffic.",
	}, s.handleGetSecurityLogs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_health",
		Description: "Check whether the monitoring backend and the log store are reachable.",
	}, s.handleGetHealth)
}

func (s *Server) hostViews(hosts []model.HostSummary) []HostView {
	views := make([]HostView, 0, len(hosts))
	for _, h := range hosts {
		views = append(views, HostView{
			HostID:       h.HostID,
			Hostname:     h.Hostname,
			IP:           h.IP,
			Availability: h.Availability.String(),
			CPUPercent:   h.CPUPercent,
			RAMPercent:   h.RAMPercent,
			BandwidthIn:  h.BandwidthIn,
			BandwidthOut: h.BandwidthOut,
			LastCheck:    h.LastCheck,
			Status:       engine.HostStatus(h, s.checks),
		})
	}
	return views
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, DashboardResult, error) {
	d, err := s.svc.Dashboard(ctx)
	if err != nil {
		return nil, DashboardResult{}, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return nil, DashboardResult{Stats: d.Stats, Hosts: s.hostViews(d.Hosts), Problems: nonNil(d.Problems)}, nil
}

func (s *Server) handleGetHosts(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, HostsResult, error) {
	hosts, err := s.svc.Hosts(ctx)
	if err != nil {
		return nil, HostsResult{}, fmt.Errorf("failed to list hosts: %w", err)
	}
	return nil, HostsResult{Hosts: s.hostViews(hosts)}, nil
}

func (s *Server) handleGetProblems(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, ProblemsResult, error) {
	problems, err := s.svc.Problems(ctx)
	if err != nil {
		return nil, ProblemsResult{}, fmt.Errorf("failed to list problems: %w", err)
	}
	return nil, ProblemsResult{Problems: nonNil(problems)}, nil
}

func (s *Server) handleGetSecurityLogs(ctx context.Context, _ *mcp.CallToolRequest, args SecurityLogsArgs) (*mcp.CallToolResult, SecurityLogsResult, error) {
	logs, err := s.svc.Logs(ctx, args.All)
	if err != nil {
		return nil, SecurityLogsResult{}, fmt.Errorf("failed to load security logs: %w", err)
	}
	if args.Limit > 0 && len(logs) > args.Limit {
		logs = logs[:args.Limit]
	}

	out := SecurityLogsResult{Logs: make([]SecurityLog, 0, len(logs))}
	for _, l := range logs {
		out.Logs = append(out.Logs, SecurityLog{
			ID:         l.ID,
			Timestamp:  l.Timestamp,
			Protocol:   string(l.Protocol),
			IP:         l.SourceIP,
			Method:     l.Method,
			URL:        l.FullURL,
			Status:     l.StatusCode,
			UserAgent:  l.UserAgent,
			Username:   l.Username,
			Outcome:    l.Outcome,
			Severity:   l.Severity.String(),
			AttackType: string(l.AttackType),
			Score:      l.Score,
		})
	}

	sum := output.Summarize(logs)
	out.Summary = SecuritySummary{
		Total:        sum.Total,
		ByAttackType: make(map[string]int, len(sum.ByAttackType)),
		BySeverity:   make(map[string]int, len(sum.BySeverity)),
		BruteForce:   sum.BruteForce,
		AuthFailures: sum.AuthFailures,
	}
	for k, v := range sum.ByAttackType {
		out.Summary.ByAttackType[string(k)] = v
	}
	for k, v := range sum.BySeverity {
		out.Summary.BySeverity[k.String()] = v
	}
	return nil, out, nil
}

func (s *Server) handleGetHealth(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, model.Health, error) {
	return nil, s.svc.Health(ctx), nil
}

// Start runs the MCP server on the stdio transport until ctx is done or
// the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// MCP exposes the underlying server, e.g. to connect other transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcpServer
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
