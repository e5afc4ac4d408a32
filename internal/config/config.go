// Package config loads server configuration from command-line flags,
// environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Assistant AssistantConfig
	Catalog   CatalogConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates durable files: the user database and the token key.
type DataConfig struct {
	Path string
}

// UsersDBPath is the sqlite file holding registered accounts.
func (d DataConfig) UsersDBPath() string {
	return filepath.Join(d.Path, "users.db")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string

	// Per-client request budgets, per minute.
	AuthRateLimit      int
	AssistantRateLimit int
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key (32 bytes), filled in from the key file at startup.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// AssistantConfig configures the generative text service.
type AssistantConfig struct {
	APIKey  string // empty disables the service; callers get placeholder text
	Model   string
	BaseURL string
	Timeout time.Duration
	// Upstream requests per minute across all sessions.
	RequestsPerMinute int
}

// Enabled reports whether an API key is configured.
func (a AssistantConfig) Enabled() bool { return a.APIKey != "" }

// CatalogConfig controls the in-memory catalog.
type CatalogConfig struct {
	Seed      bool   // load the starter listings at startup
	SeedFile  string // YAML file overriding the built-in listings
	WatchSeed bool   // publish rooms appended to SeedFile while running
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and resolves each setting with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("meraroom", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the user database and token key")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	authRate := fs.String("auth-rate-limit", "", "Auth requests per minute per client (default: 10)")
	assistantRate := fs.String("assistant-rate-limit", "", "Assistant requests per minute per client (default: 20)")

	tokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 24h)")

	aiKey := fs.String("ai-api-key", "", "Generative language API key")
	aiModel := fs.String("ai-model", "", "Generative model name")
	aiBaseURL := fs.String("ai-base-url", "", "Generative language API base URL")
	aiTimeout := fs.String("ai-timeout", "", "Assistant request timeout (default: 30s)")
	aiRPM := fs.String("ai-requests-per-minute", "", "Upstream assistant requests per minute (default: 60)")

	seed := fs.String("seed", "", "Load starter listings (default: true)")
	seedFile := fs.String("seed-file", "", "YAML file with starter listings")
	watchSeed := fs.String("watch-seed", "", "Publish rooms added to the seed file while running (default: true)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine. godotenv never overrides variables that
	// are already set.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins:     splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
			AuthRateLimit:      getIntConfigValue(*authRate, "AUTH_RATE_LIMIT", 10),
			AssistantRateLimit: getIntConfigValue(*assistantRate, "ASSISTANT_RATE_LIMIT", 20),
		},
		Assistant: AssistantConfig{
			APIKey:            getConfigValue(*aiKey, "GEMINI_API_KEY", ""),
			Model:             getConfigValue(*aiModel, "AI_MODEL", "gemini-3-flash-preview"),
			BaseURL:           getConfigValue(*aiBaseURL, "AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			RequestsPerMinute: getIntConfigValue(*aiRPM, "AI_REQUESTS_PER_MINUTE", 60),
		},
		Catalog: CatalogConfig{
			Seed:      getBoolConfigValue(*seed, "CATALOG_SEED", true),
			SeedFile:  getConfigValue(*seedFile, "CATALOG_SEED_FILE", ""),
			WatchSeed: getBoolConfigValue(*watchSeed, "CATALOG_WATCH_SEED", true),
		},
	}

	durations := []struct {
		name         string
		flagValue    string
		envKey       string
		defaultValue string
		dst          *time.Duration
	}{
		{"read timeout", *readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"write timeout", *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{"idle timeout", *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"access token duration", *tokenDuration, "ACCESS_TOKEN_DURATION", "24h", &cfg.Auth.AccessTokenDuration},
		{"assistant timeout", *aiTimeout, "AI_TIMEOUT", "30s", &cfg.Assistant.Timeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.defaultValue)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.Catalog.SeedFile != "" {
		expanded, err := expandPath(cfg.Catalog.SeedFile, "")
		if err != nil {
			return nil, fmt.Errorf("invalid seed file: %w", err)
		}
		cfg.Catalog.SeedFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and sane.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}

	if c.Server.AuthRateLimit <= 0 || c.Server.AssistantRateLimit <= 0 {
		return errors.New("rate limits must be positive")
	}
	if c.Assistant.RequestsPerMinute <= 0 {
		return errors.New("assistant requests per minute must be positive")
	}
	if c.Assistant.Model == "" {
		return errors.New("assistant model is required")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as-is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Data.Path, filepath.Join(homeDir, "MeraRoom", "data"))
	if err != nil {
		return err
	}
	c.Data.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// getIntConfigValue falls back to defaultValue when the value doesn't parse.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
