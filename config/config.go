package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	Port         string
	StoreDriver  string
	DataFile     string
	DatabaseURL  string
	Password     string
	PasswordHash string
	// SessionSecret signs session cookies. Generated per process when
	// SESSION_SECRET is unset, which logs everybody out on restart.
	SessionSecret   []byte
	SecretGenerated bool
	SessionTTL      time.Duration
	StaticDir       string
	// CORSOrigins are the origins allowed to call the API with the session
	// cookie. "*" opens anonymous cross-origin reads only.
	CORSOrigins     []string
	LoginPerMinute  int
	LogLevel        string
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         env("PORT", "5000"),
		StoreDriver:  strings.ToLower(env("STORE_DRIVER", DriverFile)),
		DataFile:     env("DATA_FILE", "data/storage.json"),
		DatabaseURL:  env("DATABASE_URL", ""),
		Password:     os.Getenv("APP_PASSWORD"),
		PasswordHash: strings.TrimSpace(os.Getenv("APP_PASSWORD_HASH")),
		StaticDir:    env("STATIC_DIR", "web"),
		CORSOrigins:  splitList(env("CORS_ORIGIN", "*")),
		LogLevel:     env("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" && cfg.StoreDriver == DriverPostgres {
		cfg.DatabaseURL = postgresURLFromParts()
	}

	ttl, err := time.ParseDuration(env("SESSION_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	perMinute, err := strconv.Atoi(env("LOGIN_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE: %w", err)
	}
	cfg.LoginPerMinute = perMinute

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = []byte(hex.EncodeToString(b))
		cfg.SecretGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Password == "" && c.PasswordHash == "" {
		return errors.New("APP_PASSWORD or APP_PASSWORD_HASH must be set")
	}
	switch c.StoreDriver {
	case DriverFile:
		if c.DataFile == "" {
			return errors.New("DATA_FILE must not be empty")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL (or user/password/host/port/dbname) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.LoginPerMinute <= 0 {
		return errors.New("LOGIN_RATE must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// postgresURLFromParts builds a DSN from the Supabase-style variables.
func postgresURLFromParts() string {
	user := strings.TrimSpace(os.Getenv("user"))
	host := strings.TrimSpace(os.Getenv("host"))
	if user == "" || host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, strings.TrimSpace(os.Getenv("password"))),
		Host:     host + ":" + env("port", "5432"),
		Path:     "/" + strings.TrimSpace(os.Getenv("dbname")),
		RawQuery: "sslmode=require",
	}
	return u.String()
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
