// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Supported session stores.
const (
	SessionStoreDB     = "db"
	SessionStoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// DBDriver selects the SQL backend: postgres or mysql.
	DBDriver string

	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// MySQL – used when DBDriver is mysql.
	MySQLDSN string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	CookieName    string
	CookieSecure  bool

	// Server
	Debug       bool
	Port        string
	TLSDomains  []string
	CORSOrigins []string
	AutoMigrate bool
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg, err := FromViper(newViper())
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// FromViper builds a validated Config from v, applying defaults first.
func FromViper(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_USER", "recipes")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "recipes")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_STORE", SessionStoreDB)
	v.SetDefault("COOKIE_NAME", "session")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("PORT", ":5555")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DBDriver:      strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBUser:        v.GetString("DB_USER"),
		DBPass:        v.GetString("DB_PASS"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		MySQLDSN:      v.GetString("MYSQL_DSN"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		SessionStore:  strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE"))),
		CookieName:    v.GetString("COOKIE_NAME"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		Debug:         v.GetBool("DEBUG"),
		Port:          v.GetString("PORT"),
		TLSDomains:    splitTrimmed(v.GetString("TLS_DOMAINS")),
		CORSOrigins:   splitTrimmed(v.GetString("CORS_ORIGINS")),
		AutoMigrate:   v.GetBool("AUTO_MIGRATE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// SessionKey returns the session token signing key as a byte slice.
func (c *Config) SessionKey() []byte {
	return []byte(c.SessionSecret)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" && c.DBPass == "" {
			return errors.New("config: DATABASE_URL or DB_PASS must be set")
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return errors.New("config: MYSQL_DSN must be set when DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET must be set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.SessionStore != SessionStoreDB && c.SessionStore != SessionStoreMemory {
		return fmt.Errorf("config: unsupported SESSION_STORE %q", c.SessionStore)
	}
	if strings.TrimSpace(c.CookieName) == "" {
		return errors.New("config: COOKIE_NAME must not be empty")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
