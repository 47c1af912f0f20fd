package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ImagesBackendDisk = "disk"
	ImagesBackendGCS  = "gcs"
)

type Config struct {
	Host        string
	Port        int
	Environment string
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	AutoMigrate    bool   `toml:"auto_migrate"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// auth
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	SessionTTL                  Duration `toml:"session_ttl"`
	AllowedOrigins              []string `toml:"allowed_origins"`
	// exercise images
	ImagesBackend  string `toml:"images_backend"`
	ImagesRootPath string `toml:"images_root_path"`
	ImagesBucket   string `toml:"images_bucket"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not configured", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config section for env,
// with defaults applied and checked.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config [%s]: %w", env, err)
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.SessionTTL.Duration == 0 {
		c.SessionTTL.Duration = DefaultSessionTTL
	}
	if c.ImagesBackend == "" {
		c.ImagesBackend = ImagesBackendDisk
	}
}

func (c *Config) Validate() error {
	switch c.ImagesBackend {
	case ImagesBackendDisk:
		if c.ImagesRootPath == "" {
			return fmt.Errorf("images_root_path required for the %s images backend", ImagesBackendDisk)
		}
	case ImagesBackendGCS:
		if c.ImagesBucket == "" {
			return fmt.Errorf("images_bucket required for the %s images backend", ImagesBackendGCS)
		}
	default:
		return fmt.Errorf("unknown images backend: %s", c.ImagesBackend)
	}
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		return fmt.Errorf("postgres_host and postgres_db_name are required")
	}
	return nil
}
