package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration. Values are resolved in order:
// defaults, optional YAML file, environment variables.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	SMTP     SMTP     `yaml:"smtp"`
	Auth     Auth     `yaml:"auth"`
	Redis    Redis    `yaml:"redis"`
	Notify   Notify   `yaml:"notify"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr         string        `yaml:"addr"`
	Environment  string        `yaml:"environment"`
	LogLevel     string        `yaml:"log_level"`
	BaseURL      string        `yaml:"base_url"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// TrustedProxies lists peers (IPs or CIDRs) allowed to set
	// X-Forwarded-For and X-Real-IP. Empty means the socket peer is the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Database holds PostgreSQL connection and pool settings.
type Database struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"sslmode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

// SMTP holds the outbound mail credentials.
type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Sender   string `yaml:"sender"`
}

// Auth configures login tokens, password hashing and login throttling.
type Auth struct {
	JWTSigningKey   string        `yaml:"jwt_signing_key"`
	JWTIssuer       string        `yaml:"jwt_issuer"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
	LoginRatePerSec float64       `yaml:"login_rate_per_second"`
	LoginRateBurst  int           `yaml:"login_rate_burst"`
}

// Redis is optional; an empty URL keeps token revocation in process.
type Redis struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

// Notify configures the invitation mail outbox worker.
type Notify struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			Environment:  "development",
			LogLevel:     "info",
			BaseURL:      "http://localhost:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: Database{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Name:         "projecthub",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxIdleTime:  15 * time.Minute,
		},
		SMTP: SMTP{
			Port: 587,
		},
		Auth: Auth{
			JWTIssuer:       "projecthub",
			TokenTTL:        12 * time.Hour,
			BcryptCost:      12,
			LoginRatePerSec: 1,
			LoginRateBurst:  5,
		},
		Redis: Redis{
			PoolSize: 10,
		},
		Notify: Notify{
			MaxAttempts:  5,
			PollInterval: 5 * time.Second,
			BatchSize:    20,
			RetryBackoff: 30 * time.Second,
		},
	}
}

// Load reads the optional YAML file at path, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			var out []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			*dst = out
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("ENVIRONMENT", &c.Server.Environment)
	str("LOG_LEVEL", &c.Server.LogLevel)
	str("APP_BASE_URL", &c.Server.BaseURL)
	list("TRUSTED_PROXIES", &c.Server.TrustedProxies)

	str("DB_HOST", &c.Database.Host)
	num("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	num("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	num("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	dur("DB_MAX_IDLE_TIME", &c.Database.MaxIdleTime)

	str("SMTP_HOST", &c.SMTP.Host)
	num("SMTP_PORT", &c.SMTP.Port)
	str("SMTP_USERNAME", &c.SMTP.Username)
	str("SMTP_PASSWORD", &c.SMTP.Password)
	str("SMTP_SENDER", &c.SMTP.Sender)

	str("JWT_SIGNING_KEY", &c.Auth.JWTSigningKey)
	dur("JWT_TTL", &c.Auth.TokenTTL)
	num("BCRYPT_COST", &c.Auth.BcryptCost)
	float("LOGIN_RATE_PER_SECOND", &c.Auth.LoginRatePerSec)
	num("LOGIN_RATE_BURST", &c.Auth.LoginRateBurst)

	str("REDIS_URL", &c.Redis.URL)

	num("NOTIFY_MAX_ATTEMPTS", &c.Notify.MaxAttempts)
	dur("NOTIFY_POLL_INTERVAL", &c.Notify.PollInterval)
	num("NOTIFY_BATCH_SIZE", &c.Notify.BatchSize)
	dur("NOTIFY_RETRY_BACKOFF", &c.Notify.RetryBackoff)

	return errors.Join(errs...)
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
		errs = append(errs, errors.New("database host, name and user are required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid database port %d", c.Database.Port))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("database max open connections must be positive"))
	}
	if c.IsProduction() && c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required in production"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}
	if c.Notify.MaxAttempts <= 0 {
		errs = append(errs, errors.New("notify max attempts must be positive"))
	}
	for _, p := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid trusted proxy %q", p))
		}
	}
	if _, err := url.Parse(c.Server.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid base url: %w", err))
	}
	return errors.Join(errs...)
}

// DSN renders the lib/pq connection string.
func (d Database) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
