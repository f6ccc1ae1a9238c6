package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all opswatch configuration.
// Use Default() for sensible defaults, or Load() to layer a config file and
// OPSWATCH_* environment variables on top of them.
type Config struct {
	Zabbix  ZabbixConfig  `mapstructure:"zabbix"`
	Elastic ElasticConfig `mapstructure:"elastic"`
	Server  ServerConfig  `mapstructure:"server"`
	Poll    PollConfig    `mapstructure:"poll"`
	Checks  ChecksConfig  `mapstructure:"checks"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ZabbixConfig points at the JSON-RPC endpoint (…/api_jsonrpc.php).
type ZabbixConfig struct {
	URL      string        `mapstructure:"url"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ElasticConfig describes the log store and the security log query.
type ElasticConfig struct {
	URL               string        `mapstructure:"url"`
	Index             string        `mapstructure:"index"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BatchSize         int           `mapstructure:"batch_size"`
	WebDataset        string        `mapstructure:"web_dataset"`
	AuthDataset       string        `mapstructure:"auth_dataset"`
	ExcludePathPrefix string        `mapstructure:"exclude_path_prefix"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	BasePath     string        `mapstructure:"base_path"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PollConfig controls the presentation-layer refresh and per-host fan-out.
type PollConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// ChecksConfig holds host health thresholds in percent.
type ChecksConfig struct {
	CPUWarning  float64 `mapstructure:"cpu_warning"`
	CPUCritical float64 `mapstructure:"cpu_critical"`
	RAMWarning  float64 `mapstructure:"ram_warning"`
	RAMCritical float64 `mapstructure:"ram_critical"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Zabbix: ZabbixConfig{
			URL:     "http://localhost/zabbix/api_jsonrpc.php",
			Timeout: 10 * time.Second,
		},
		Elastic: ElasticConfig{
			URL:               "http://localhost:9200",
			Index:             "filebeat-*",
			Timeout:           10 * time.Second,
			BatchSize:         100,
			WebDataset:        "nginx.access",
			AuthDataset:       "system.auth",
			ExcludePathPrefix: "/api/",
		},
		Server: ServerConfig{
			Addr:         ":3001",
			BasePath:     "/api",
			WriteTimeout: 60 * time.Second,
		},
		Poll: PollConfig{
			Interval:       30 * time.Second,
			MaxConcurrency: 8,
		},
		Checks: ChecksConfig{
			CPUWarning:  70,
			CPUCritical: 90,
			RAMWarning:  70,
			RAMCritical: 90,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// WithZabbix returns a copy of the config pointing at another Zabbix endpoint.
func (c Config) WithZabbix(url, user, password string) Config {
	c.Zabbix.URL = url
	c.Zabbix.User = user
	c.Zabbix.Password = password
	return c
}

// WithElastic returns a copy of the config pointing at another log store.
func (c Config) WithElastic(url string) Config {
	c.Elastic.URL = url
	return c
}

// WithServerAddr returns a copy of the config with a different listen address.
func (c Config) WithServerAddr(addr string) Config {
	c.Server.Addr = addr
	return c
}

// WithPollInterval returns a copy of the config with a different refresh interval.
func (c Config) WithPollInterval(d time.Duration) Config {
	c.Poll.Interval = d
	return c
}

// legacyEnv maps keys to the variable names the original deployment used.
var legacyEnv = map[string]string{
	"zabbix.url":      "ZABBIX_URL",
	"zabbix.user":     "ZABBIX_USER",
	"zabbix.password": "ZABBIX_PASS",
}

// Load reads an optional config file at path (empty means none) and then
// applies OPSWATCH_* environment overrides, e.g. OPSWATCH_ELASTIC_URL.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("opswatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envName := "OPSWATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("zabbix.url", d.Zabbix.URL)
	v.SetDefault("zabbix.user", d.Zabbix.User)
	v.SetDefault("zabbix.password", d.Zabbix.Password)
	v.SetDefault("zabbix.timeout", d.Zabbix.Timeout)

	v.SetDefault("elastic.url", d.Elastic.URL)
	v.SetDefault("elastic.index", d.Elastic.Index)
	v.SetDefault("elastic.timeout", d.Elastic.Timeout)
	v.SetDefault("elastic.batch_size", d.Elastic.BatchSize)
	v.SetDefault("elastic.web_dataset", d.Elastic.WebDataset)
	v.SetDefault("elastic.auth_dataset", d.Elastic.AuthDataset)
	v.SetDefault("elastic.exclude_path_prefix", d.Elastic.ExcludePathPrefix)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.base_path", d.Server.BasePath)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("poll.interval", d.Poll.Interval)
	v.SetDefault("poll.max_concurrency", d.Poll.MaxConcurrency)

	v.SetDefault("checks.cpu_warning", d.Checks.CPUWarning)
	v.SetDefault("checks.cpu_critical", d.Checks.CPUCritical)
	v.SetDefault("checks.ram_warning", d.Checks.RAMWarning)
	v.SetDefault("checks.ram_critical", d.Checks.RAMCritical)

	v.SetDefault("logging.level", d.Logging.Level)
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Zabbix.URL == "" {
		errs = append(errs, errors.New("zabbix.url is required"))
	}
	if c.Elastic.URL == "" {
		errs = append(errs, errors.New("elastic.url is required"))
	}
	if c.Elastic.Index == "" {
		errs = append(errs, errors.New("elastic.index is required"))
	}
	if c.Elastic.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("elastic.batch_size must be positive, got %d", c.Elastic.BatchSize))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path must start with /, got %q", c.Server.BasePath))
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval))
	}
	if c.Poll.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("poll.max_concurrency must be positive, got %d", c.Poll.MaxConcurrency))
	}
	if c.Checks.CPUWarning > c.Checks.CPUCritical {
		errs = append(errs, errors.New("checks.cpu_warning must not exceed checks.cpu_critical"))
	}
	if c.Checks.RAMWarning > c.Checks.RAMCritical {
		errs = append(errs, errors.New("checks.ram_warning must not exceed checks.ram_critical"))
	}
	return errors.Join(errs...)
}
