// Package config loads the process-wide service configuration.
//
// The configuration is read once at startup from the environment (optionally
// preloaded from a .env file) and then passed by value/pointer to every
// component that needs it. Nothing else in the service reads the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// EnvProduction is the SERVICE_ENV value that enables production-only behaviour
// such as the Secure cookie attribute.
const EnvProduction = "production"

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the root configuration value.
type Config struct {
	Service   ServiceConfig   `envconfig:"SERVICE"`
	Database  DatabaseConfig  `envconfig:"DB"`
	Auth      AuthConfig      `envconfig:"AUTH"`
	Logging   LoggingConfig   `envconfig:"LOG"`
	Tracing   TracingConfig   `envconfig:"TRACING"`
	Profiling ProfilingConfig `envconfig:"PROFILING"`
	CORS      CORSConfig      `envconfig:"CORS"`
	Shutdown  ShutdownConfig  `envconfig:"SHUTDOWN"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string `default:"cookie-auth-service"`
	Version string `default:"dev"`
	Env     string `default:"development"`
	Port    string `default:"5000"`
}

// DatabaseConfig holds the user store connection settings.
type DatabaseConfig struct {
	// Driver selects the user store: "postgres" or "memory".
	Driver         string `default:"postgres"`
	Host           string `default:"localhost"`
	Port           int    `default:"5432"`
	User           string `default:"postgres"`
	Password       string `default:"postgres"`
	Name           string `default:"auth"`
	SSLMode        string `default:"disable" split_words:"true"`
	MaxConns       int32  `default:"10" split_words:"true"`
	MigrateOnStart bool   `default:"true" split_words:"true"`
}

// AuthConfig holds session signing and password hashing settings.
type AuthConfig struct {
	// JWTSecret falls back to the bare JWT_SECRET variable when AUTH_JWT_SECRET is unset.
	JWTSecret  string        `envconfig:"JWT_SECRET"`
	TokenTTL   time.Duration `default:"4h" split_words:"true"`
	BcryptCost int           `default:"10" split_words:"true"`
	CookieName string        `default:"jwt" split_words:"true"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string `default:"info"`
}

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled    bool    `default:"false"`
	Endpoint   string  `default:"localhost:4318"`
	SampleRate float64 `default:"1.0" split_words:"true"`
}

// ProfilingConfig controls continuous profiling.
type ProfilingConfig struct {
	Enabled  bool   `default:"false"`
	Endpoint string `default:"http://localhost:4040"`
}

// CORSConfig lists allowed browser origins. An empty list allows any origin.
type CORSConfig struct {
	AllowOrigins []string `split_words:"true"`
}

// ShutdownConfig controls graceful shutdown.
type ShutdownConfig struct {
	Timeout             string `default:"10s"`
	ReadinessDrainDelay string `default:"0s" split_words:"true"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("SERVICE_PORT is required"))
	} else if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errs = append(errs, fmt.Errorf("SERVICE_PORT %q is not a number", c.Service.Port))
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be in [%d, %d], got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("AUTH_COOKIE_NAME is required"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("TRACING_SAMPLE_RATE must be in [0, 1], got %v", c.Tracing.SampleRate))
	}
	if _, err := time.ParseDuration(c.Shutdown.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	if _, err := time.ParseDuration(c.Shutdown.ReadinessDrainDelay); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_READINESS_DRAIN_DELAY: %w", err))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c != nil && c.Service.Env == EnvProduction
}

// DSN builds the PostgreSQL connection string for pgx.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	if d.MaxConns > 0 {
		q.Set("pool_max_conns", strconv.Itoa(int(d.MaxConns)))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// GetShutdownTimeoutDuration returns the HTTP shutdown timeout, 10s when unparsable.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Shutdown.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetReadinessDrainDelayDuration returns how long /ready reports 503 before the server stops.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.Shutdown.ReadinessDrainDelay)
	if err != nil {
		return 0
	}
	return d
}
