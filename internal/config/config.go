package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Identity verification modes.
const (
	AuthModeHMAC       = "hmac"
	AuthModeJWKS       = "jwks"
	AuthModeAuthorizer = "authorizer"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port            string        `mapstructure:"PORT" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	// Database configuration
	DBType               string `mapstructure:"DB_TYPE" validate:"required,oneof=postgres postgresql mysql mariadb sqlite sqlite3 sqlserver mssql"`
	DBHost               string `mapstructure:"DB_HOST"`
	DBPort               string `mapstructure:"DB_PORT" validate:"omitempty,numeric"`
	DBDatabase           string `mapstructure:"DB_DATABASE" validate:"required"`
	DBAppUser            string `mapstructure:"DB_APP_USER"`
	DBAppPassword        string `mapstructure:"DB_APP_PASSWORD"`
	DBAppConnectionLimit int    `mapstructure:"DB_APP_CONNECTION_LIMIT" validate:"gte=1,lte=500"`

	// Identity configuration
	AuthMode      string `mapstructure:"AUTH_MODE" validate:"omitempty,oneof=hmac jwks authorizer"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	JWTAudience   string `mapstructure:"JWT_AUDIENCE"`
	JWTJWKSURL    string `mapstructure:"JWT_JWKS_URL" validate:"omitempty,url"`
	AuthzURL      string `mapstructure:"AUTHZ_URL" validate:"omitempty,url"`
	AuthzClientID string `mapstructure:"AUTHZ_CLIENT_ID"`

	// File storage and exports
	StorageDir      string        `mapstructure:"STORAGE_DIR" validate:"required"`
	SigningSecret   string        `mapstructure:"SIGNING_SECRET"`
	PublicBaseURL   string        `mapstructure:"PUBLIC_BASE_URL" validate:"omitempty,url"`
	SignedURLTTL    time.Duration `mapstructure:"SIGNED_URL_TTL" validate:"gt=0"`
	ExportRateLimit int           `mapstructure:"EXPORT_RATE_LIMIT" validate:"gte=0"`
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	defaults = map[string]any{
		"PORT":                    "3000",
		"SHUTDOWN_TIMEOUT":        "10s",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "json",
		"DB_TYPE":                 "postgres",
		"DB_HOST":                 "localhost",
		"DB_PORT":                 "",
		"DB_DATABASE":             "",
		"DB_APP_USER":             "",
		"DB_APP_PASSWORD":         "",
		"DB_APP_CONNECTION_LIMIT": 5,
		"AUTH_MODE":               "",
		"JWT_SECRET":              "",
		"JWT_ISSUER":              "",
		"JWT_AUDIENCE":            "",
		"JWT_JWKS_URL":            "",
		"AUTHZ_URL":               "",
		"AUTHZ_CLIENT_ID":         "",
		"STORAGE_DIR":             "./storage",
		"SIGNING_SECRET":          "",
		"PUBLIC_BASE_URL":         "",
		"SIGNED_URL_TTL":          "15m",
		"EXPORT_RATE_LIMIT":       10,
	}
)

// Load reads .env (when present) and the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolve fills derived settings and checks rules spanning several fields.
func (c *Config) resolve() error {
	c.DBType = strings.ToLower(c.DBType)
	if !c.IsSQLite() {
		if c.DBAppUser == "" {
			return fmt.Errorf("DB_APP_USER is required for DB_TYPE %s", c.DBType)
		}
		if c.DBPort == "" {
			c.DBPort = defaultPort(c.DBType)
		}
	}

	if c.AuthMode == "" {
		switch {
		case c.JWTSecret != "":
			c.AuthMode = AuthModeHMAC
		case c.JWTJWKSURL != "":
			c.AuthMode = AuthModeJWKS
		case c.AuthzURL != "":
			c.AuthMode = AuthModeAuthorizer
		default:
			return fmt.Errorf("one of JWT_SECRET, JWT_JWKS_URL or AUTHZ_URL is required")
		}
	}

	switch c.AuthMode {
	case AuthModeHMAC:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for AUTH_MODE hmac")
		}
	case AuthModeJWKS:
		if c.JWTJWKSURL == "" || c.JWTIssuer == "" || c.JWTAudience == "" {
			return fmt.Errorf("JWT_JWKS_URL, JWT_ISSUER and JWT_AUDIENCE are required for AUTH_MODE jwks")
		}
	case AuthModeAuthorizer:
		if c.AuthzURL == "" || c.AuthzClientID == "" {
			return fmt.Errorf("AUTHZ_URL and AUTHZ_CLIENT_ID are required for AUTH_MODE authorizer")
		}
	}

	if c.SigningSecret == "" {
		c.SigningSecret = c.JWTSecret
	}
	if c.SigningSecret == "" {
		return fmt.Errorf("SIGNING_SECRET is required")
	}

	return nil
}

// IsSQLite reports whether the database is a local sqlite file.
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite3"
}

// IdentityURL is the remote identity endpoint the service depends on, if any.
func (c *Config) IdentityURL() string {
	switch c.AuthMode {
	case AuthModeJWKS:
		return c.JWTJWKSURL
	case AuthModeAuthorizer:
		return c.AuthzURL
	}
	return ""
}

func defaultPort(dbType string) string {
	switch dbType {
	case "mysql", "mariadb":
		return "3306"
	case "sqlserver", "mssql":
		return "1433"
	}
	return "5432"
}
