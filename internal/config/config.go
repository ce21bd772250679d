package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration.
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. Only DATABASE_URL has no default.
type Config struct {
	// Server
	HTTPPort        string        `yaml:"http_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Database
	DatabaseURL    string `yaml:"database_url"`
	DBMaxConns     int32  `yaml:"db_max_conns"`
	DBMinConns     int32  `yaml:"db_min_conns"`
	MigrationsPath string `yaml:"migrations_path"`

	// Request pipeline
	AllowedOrigins        []string      `yaml:"allowed_origins"`
	APISlowThreshold      time.Duration `yaml:"api_slow_threshold"`
	UploadSlowThreshold   time.Duration `yaml:"upload_slow_threshold"`
	LogSlowRequests       bool          `yaml:"log_slow_requests"`
	MinAccessReasonLength int           `yaml:"min_access_reason_length"`
	MaxUploadBytes        int64         `yaml:"max_upload_bytes"`

	// Rate limiting: requests per second per client IP
	RateLimit     int           `yaml:"rate_limit_per_client"`
	RateBurst     int           `yaml:"rate_limit_burst"`
	RateLimitIdle time.Duration `yaml:"rate_limit_idle_ttl"`

	// Access audit writer
	AuditWorkers      int             `yaml:"audit_workers"`
	AuditQueueSize    int             `yaml:"audit_queue_size"`
	AuditRetryBackoff []time.Duration `yaml:"audit_retry_backoff"`
}

// Defaults returns a Config with every default filled in.
func Defaults() *Config {
	return &Config{
		HTTPPort:        "8080",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 30 * time.Second,

		LogLevel:  "info",
		LogFormat: "json",

		DBMaxConns:     25,
		DBMinConns:     5,
		MigrationsPath: "migrations",

		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
		},
		APISlowThreshold:      500 * time.Millisecond,
		UploadSlowThreshold:   2000 * time.Millisecond,
		LogSlowRequests:       true,
		MinAccessReasonLength: 5,
		MaxUploadBytes:        10 << 20,

		RateLimit:     20,
		RateBurst:     40,
		RateLimitIdle: 10 * time.Minute,

		AuditWorkers:   2,
		AuditQueueSize: 1000,
		AuditRetryBackoff: []time.Duration{
			100 * time.Millisecond,
			500 * time.Millisecond,
			2 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty, in which case the
// CONFIG_FILE environment variable is consulted; if both are empty no file
// is read.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.ReadTimeout = getDuration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxConns = int32(getInt("DB_MAX_CONNS", int(cfg.DBMaxConns)))
	cfg.DBMinConns = int32(getInt("DB_MIN_CONNS", int(cfg.DBMinConns)))
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.MigrationsPath)

	cfg.AllowedOrigins = getList("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.APISlowThreshold = getDuration("API_SLOW_THRESHOLD", cfg.APISlowThreshold)
	cfg.UploadSlowThreshold = getDuration("UPLOAD_SLOW_THRESHOLD", cfg.UploadSlowThreshold)
	cfg.LogSlowRequests = getBool("LOG_SLOW_REQUESTS", cfg.LogSlowRequests)
	cfg.MinAccessReasonLength = getInt("MIN_ACCESS_REASON_LENGTH", cfg.MinAccessReasonLength)
	cfg.MaxUploadBytes = int64(getInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))

	cfg.RateLimit = getInt("RATE_LIMIT_PER_CLIENT", cfg.RateLimit)
	cfg.RateBurst = getInt("RATE_LIMIT_BURST", cfg.RateBurst)
	cfg.RateLimitIdle = getDuration("RATE_LIMIT_IDLE_TTL", cfg.RateLimitIdle)

	cfg.AuditWorkers = getInt("AUDIT_WORKERS", cfg.AuditWorkers)
	cfg.AuditQueueSize = getInt("AUDIT_QUEUE_SIZE", cfg.AuditQueueSize)
	for i := range cfg.AuditRetryBackoff {
		key := fmt.Sprintf("AUDIT_RETRY_BACKOFF_%d", i+1)
		cfg.AuditRetryBackoff[i] = getDuration(key, cfg.AuditRetryBackoff[i])
	}
}

// Validate reports every problem with cfg at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	if c.MinAccessReasonLength < 1 {
		errs = append(errs, errors.New("MIN_ACCESS_REASON_LENGTH must be positive"))
	}
	if c.RateLimit < 1 || c.RateBurst < 1 {
		errs = append(errs, errors.New("rate limit and burst must be positive"))
	}
	if c.RateLimitIdle <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_IDLE_TTL must be positive"))
	}
	// Credentials are allowed, so every origin must be listed literally.
	for _, o := range c.AllowedOrigins {
		if strings.Contains(o, "*") {
			errs = append(errs, fmt.Errorf("ALLOWED_ORIGINS entry %q: wildcards are not supported", o))
		}
	}
	if c.AuditWorkers < 1 || c.AuditQueueSize < 1 {
		errs = append(errs, errors.New("AUDIT_WORKERS and AUDIT_QUEUE_SIZE must be positive"))
	}
	if len(c.AuditRetryBackoff) == 0 {
		errs = append(errs, errors.New("at least one audit retry backoff is required"))
	}
	if c.MaxUploadBytes < 1 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
