package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the API server configuration loaded from environment variables.
type Config struct {
	Port        string
	Env         string
	JWTSecret   string
	CORSOrigins []string

	Sadad  SadadConfig
	DB     DatabaseConfig
	Redis  RedisConfig
	Worker WorkerConfig
}

// SadadConfig contains gateway credentials and client settings.
type SadadConfig struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	LogPath      string
	HTTPTimeout  time.Duration
	RateCacheTTL time.Duration
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a ledger database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis rate cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	RateSyncInterval time.Duration
}

// LoadGateway reads only the Sadad settings. The CLI uses it directly; the server
// reaches it through Load.
func LoadGateway() (*SadadConfig, error) {
	_ = godotenv.Load()

	cfg := &SadadConfig{
		ClientID:     strings.TrimSpace(getEnv("SADAD_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(getEnv("SADAD_CLIENT_SECRET", "")),
		LogPath:      getEnv("SADAD_LOG_PATH", ""),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("sadad configuration incomplete: ensure SADAD_CLIENT_ID and SADAD_CLIENT_SECRET are set")
	}

	// SADAD_SANDBOX has no default.
	raw := os.Getenv("SADAD_SANDBOX")
	if raw == "" {
		return nil, errors.New("SADAD_SANDBOX must be set to true or false")
	}
	sandbox, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid SADAD_SANDBOX %q: must be true or false", raw)
	}
	cfg.Sandbox = sandbox

	if cfg.HTTPTimeout, err = parseDurationEnv("SADAD_HTTP_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid SADAD_HTTP_TIMEOUT: %w", err)
	}
	if cfg.RateCacheTTL, err = parseDurationEnv("SADAD_RATE_CACHE_TTL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid SADAD_RATE_CACHE_TTL: %w", err)
	}
	return cfg, nil
}

// Load reads the server configuration. If a .env file exists in the working
// directory, it is loaded first.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "localhost:3000"))

	sadad, err := LoadGateway()
	if err != nil {
		return nil, err
	}
	cfg.Sadad = *sadad

	// Database (optional ledger)
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis (optional rate cache)
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	if cfg.Worker.RateSyncInterval, err = parseDurationEnv("RATE_SYNC_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid RATE_SYNC_INTERVAL: %w", err)
	}

	if cfg.DB.Enabled() && (cfg.DB.User == "" || cfg.DB.Name == "") {
		return nil, errors.New("database configuration incomplete: ensure DB_USER and DB_NAME are set when DB_HOST is set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
