package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "LIBAPP"

const (
	AppModeDev  = "dev"
	AppModeProd = "prod"

	defaultJWTSecret        = "default_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Identity IdentityConfig
	Cookie   CookieConfig
	Seed     SeedConfig
}

// AppConfig holds process-level settings
type AppConfig struct {
	Mode           string `envconfig:"LIBAPP_APP_MODE" default:"dev"`
	Port           string `envconfig:"LIBAPP_PORT" default:"3000"`
	LogLevel       string `envconfig:"LIBAPP_LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LIBAPP_LOG_FORMAT" default:"json"`
	AllowedOrigins string `envconfig:"LIBAPP_ALLOWED_ORIGINS"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string `envconfig:"LIBAPP_DB_DRIVER" default:"mysql"`
	DSN      string `envconfig:"LIBAPP_DB_DSN"`
	Host     string `envconfig:"LIBAPP_DB_HOST" default:"localhost"`
	Port     string `envconfig:"LIBAPP_DB_PORT"`
	User     string `envconfig:"LIBAPP_DB_USER" default:"root"`
	Password string `envconfig:"LIBAPP_DB_PASS"`
	Name     string `envconfig:"LIBAPP_DB_NAME" default:"libapp"`

	MaxIdleConns    int           `envconfig:"LIBAPP_DB_MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"LIBAPP_DB_MAX_OPEN_CONNS" default:"100"`
	ConnMaxLifetime time.Duration `envconfig:"LIBAPP_DB_CONN_MAX_LIFETIME" default:"1h"`
}

// JWTConfig holds token settings
type JWTConfig struct {
	Secret           string `envconfig:"LIBAPP_JWT_SECRET" default:"default_secret"`
	RefreshSecret    string `envconfig:"LIBAPP_JWT_REFRESH_SECRET" default:"default_refresh_secret"`
	Issuer           string `envconfig:"LIBAPP_JWT_ISSUER" default:"libapp"`
	AccessTokenMins  int    `envconfig:"LIBAPP_ACCESS_TOKEN_MINUTES" default:"15"`
	RefreshTokenDays int    `envconfig:"LIBAPP_REFRESH_TOKEN_DAYS" default:"7"`
	// CleanupSchedule is a cron spec for purging expired refresh tokens.
	CleanupSchedule string `envconfig:"LIBAPP_TOKEN_CLEANUP_SCHEDULE" default:"@daily"`
}

// IdentityConfig holds account and password policy settings
type IdentityConfig struct {
	BcryptCost        int `envconfig:"LIBAPP_BCRYPT_COST" default:"12"`
	MinPasswordLength int `envconfig:"LIBAPP_MIN_PASSWORD_LENGTH" default:"8"`
}

// CookieConfig holds auth cookie attributes
type CookieConfig struct {
	Secure   bool   `envconfig:"LIBAPP_COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"LIBAPP_COOKIE_SAMESITE" default:"Lax"`
	Domain   string `envconfig:"LIBAPP_COOKIE_DOMAIN"`
}

// SeedConfig controls the startup seed
type SeedConfig struct {
	Enabled bool `envconfig:"LIBAPP_SEED_ENABLED" default:"true"`
	// FixturesPath overrides the embedded fixture file when set.
	FixturesPath string `envconfig:"LIBAPP_SEED_FIXTURES"`
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production sets real environment variables
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.App.Mode = strings.ToLower(strings.TrimSpace(c.App.Mode))
	if c.App.Mode != AppModeDev && c.App.Mode != AppModeProd {
		return fmt.Errorf("invalid LIBAPP_APP_MODE: '%s' (must be 'dev' or 'prod')", c.App.Mode)
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid LIBAPP_DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		return errors.New("LIBAPP_DB_DSN is required for the sqlite driver")
	}

	if c.IsProd() && (c.JWT.Secret == defaultJWTSecret || c.JWT.RefreshSecret == defaultJWTRefreshSecret) {
		return errors.New("default JWT secrets are not allowed in prod mode")
	}
	if c.JWT.AccessTokenMins <= 0 || c.JWT.RefreshTokenDays <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.App.Mode == AppModeDev
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.App.Mode == AppModeProd
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.App.AllowedOrigins == "" && c.IsDev() {
		return "*"
	}
	return c.App.AllowedOrigins
}
