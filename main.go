package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"opswatch/internal/collector"
	"opswatch/internal/collector/services"
	"opswatch/internal/config"
	"opswatch/internal/dashboard"
	"opswatch/internal/elastic"
	"opswatch/internal/engine"
	"opswatch/internal/flagger"
	"opswatch/internal/httpclient"
	"opswatch/internal/logging"
	"opswatch/internal/mcpserver"
	"opswatch/internal/metrics"
	"opswatch/internal/model"
	"opswatch/internal/normalizer"
	"opswatch/internal/output"
	"opswatch/internal/server"
	"opswatch/internal/zabbix"
	"opswatch/ui/console"
	"opswatch/ui/tui"
)

var version = "v1.0.0"

var (
	configPath string
	logLevel   string
	checkAll   bool
)

var rootCmd = &cobra.Command{
	Use:           "opswatch",
	Short:         "opswatch - fleet health and security log dashboard",
	Long:          `opswatch polls Zabbix for host health and Elasticsearch for web and SSH logs, and flags suspicious traffic`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and Prometheus metrics",
	RunE:  runServe,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal dashboard",
	RunE:  runTUI,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the dashboard as MCP tools on stdio",
	RunE:  runMCP,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll once and print a report",
	RunE:  runCheck,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "Include unflagged log records in the security summary")

	rootCmd.AddCommand(serveCmd, tuiCmd, mcpCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wired dependency graph shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	svc     *dashboard.Service
}

func loadConfig() (config.Config, slog.Level, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, slog.LevelInfo, err
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	return cfg, logging.ParseLevel(level), nil
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	m := metrics.New()

	zc := zabbix.New(cfg.Zabbix.URL, cfg.Zabbix.User, cfg.Zabbix.Password,
		zabbix.WithObserver(m),
		zabbix.WithLogger(logger),
		zabbix.WithHTTPOptions(httpclient.WithTimeout(cfg.Zabbix.Timeout)),
	)
	ec := elastic.New(cfg.Elastic.URL, cfg.Elastic.Index,
		elastic.WithObserver(m),
		elastic.WithLogger(logger),
		elastic.WithHTTPOptions(httpclient.WithTimeout(cfg.Elastic.Timeout)),
	)

	hc, err := collector.NewHostCollector(zc,
		collector.DefaultCollectorConfig().WithMaxConcurrency(cfg.Poll.MaxConcurrency),
		collector.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("collector: %w", err)
	}

	flg, err := flagger.NewFlaggerService(flagger.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("flagger: %w", err)
	}

	pipeline := output.DefaultPipelineOptions()
	pipeline.Size = cfg.Elastic.BatchSize
	pipeline.Datasets = []string{cfg.Elastic.WebDataset, cfg.Elastic.AuthDataset}
	pipeline.ExcludePathPrefix = cfg.Elastic.ExcludePathPrefix

	svc := dashboard.New(dashboard.Deps{
		Hosts:      hc,
		Logs:       ec,
		Normalizer: normalizer.New(cfg.Elastic.AuthDataset),
		Flagger:    flg,
		Zabbix:     services.NewZabbixProbe(zc),
		Elastic:    services.NewElasticProbe(ec),
	},
		dashboard.WithRecorder(m),
		dashboard.WithLogger(logger),
		dashboard.WithPipelineOptions(pipeline),
	)

	return &app{cfg: cfg, logger: logger, metrics: m, svc: svc}, nil
}

func checksOf(cfg config.Config) engine.Config {
	return engine.Config{
		CPUWarning:  cfg.Checks.CPUWarning,
		CPUCritical: cfg.Checks.CPUCritical,
		RAMWarning:  cfg.Checks.RAMWarning,
		RAMCritical: cfg.Checks.RAMCritical,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, level, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Init(true, level)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	srv := server.New(a.svc,
		server.WithMetricsHandler(a.metrics.Handler()),
		server.WithLogger(logger),
		server.WithBasePath(cfg.Server.BasePath),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
	)
	logger.Info("opswatch serving", "addr", cfg.Server.Addr, "base_path", cfg.Server.BasePath, "zabbix", cfg.Zabbix.URL, "elastic", cfg.Elastic.URL, "version", version)
	return srv.Run(ctx, cfg.Server.Addr)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// stderr output would corrupt the alternate screen
	logger := logging.Discard()
	slog.SetDefault(logger)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	return tui.Start(a.svc, checksOf(cfg), cfg.Poll.Interval)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, level, err := loadConfig()
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr
	logger := logging.Init(true, level)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	mcpCfg := mcpserver.DefaultConfig()
	mcpCfg.ServerVersion = version
	mcpCfg.Checks = checksOf(cfg)
	return mcpserver.NewServer(mcpCfg, a.svc, logger).Start(ctx)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, level, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Init(false, level)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	d, err := a.svc.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("monitoring poll failed: %w", err)
	}

	var logs *model.LogSummary
	if sum, err := a.svc.LogSummary(ctx, checkAll); err != nil {
		logger.Warn("log store unavailable, skipping security summary", "error", err)
	} else {
		logs = &sum
	}
	view := output.BuildDashboard(d, logs, checksOf(cfg))
	console.Print(cmd.OutOrStdout(), view)
	return nil
}
