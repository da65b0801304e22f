// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Session SessionConfig
	Card    CardConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the sqlite database and the
	// card render cache (default: ~/tento/data).
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port          string        // Server port (default: 8080)
	PublicBaseURL string        // Public URL the server is reachable at (for OG tags)
	CORSOrigins   []string      // Allowed CORS origins
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
}

// SessionConfig holds session token configuration.
type SessionConfig struct {
	// KeyHex is the hex-encoded PASETO v4 symmetric key (64 hex chars).
	KeyHex string
	// TokenDuration is the session token lifetime (default: 720h).
	TokenDuration time.Duration
}

// CardConfig holds social card rendering configuration.
type CardConfig struct {
	// DisplayFontPath is the path to the display font file (optional,
	// falls back to a bundled font).
	DisplayFontPath string
	// BodyFontURL is where the body font is fetched from at startup.
	BodyFontURL string
	// CacheTTL is how long rendered cards stay cached (default: 15m).
	CacheTTL time.Duration
	// RenderTimeout bounds a single card render (default: 5s).
	RenderTimeout time.Duration
	// RateRPS and RateBurst shape the per-IP rate limit on card endpoints.
	RateRPS   float64
	RateBurst int
}

// defaultBodyFontURL is the CDN location of the body font.
const defaultBodyFontURL = "https://cdn.jsdelivr.net/npm/@fontsource/inter/files/inter-latin-400-normal.woff"

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	publicBaseURL := flag.String("public-base-url", "", "Public base URL (default: http://localhost:8080)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	sessionKey := flag.String("session-key", "", "Hex-encoded PASETO session key")
	tokenDuration := flag.String("token-duration", "", "Session token lifetime (default: 720h)")

	fontPath := flag.String("display-font", "", "Path to the display font file")
	bodyFontURL := flag.String("body-font-url", "", "URL of the body font")
	cardCacheTTL := flag.String("card-cache-ttl", "", "Rendered card cache TTL (default: 15m)")
	renderTimeout := flag.String("render-timeout", "", "Card render timeout (default: 5s)")
	cardRateRPS := flag.String("card-rate-rps", "", "Per-IP requests per second on card endpoints (default: 2)")
	cardRateBurst := flag.String("card-rate-burst", "", "Per-IP burst on card endpoints (default: 5)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			PublicBaseURL: getConfigValue(*publicBaseURL, "PUBLIC_BASE_URL", "http://localhost:8080"),
			CORSOrigins:   splitOrigins(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Session: SessionConfig{
			KeyHex: getConfigValue(*sessionKey, "SESSION_KEY", ""),
		},
		Card: CardConfig{
			DisplayFontPath: getConfigValue(*fontPath, "DISPLAY_FONT_PATH", ""),
			BodyFontURL:     getConfigValue(*bodyFontURL, "BODY_FONT_URL", defaultBodyFontURL),
			RateRPS:         getFloatConfigValue(*cardRateRPS, "CARD_RATE_RPS", 2),
			RateBurst:       getIntConfigValue(*cardRateBurst, "CARD_RATE_BURST", 5),
		},
	}

	durations := []struct {
		dst        *time.Duration
		flagValue  string
		envKey     string
		defaultVal string
		name       string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout"},
		{&cfg.Session.TokenDuration, *tokenDuration, "TOKEN_DURATION", "720h", "token duration"},
		{&cfg.Card.CacheTTL, *cardCacheTTL, "CARD_CACHE_TTL", "15m", "card cache ttl"},
		{&cfg.Card.RenderTimeout, *renderTimeout, "RENDER_TIMEOUT", "5s", "render timeout"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.defaultVal)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Card.RateRPS <= 0 || c.Card.RateBurst <= 0 {
		return errors.New("card rate limit must be positive")
	}

	// The session key is optional here; a missing key is generated at
	// startup in development and rejected in production by main.

	return nil
}

// DatabasePath is where the sqlite database lives under the data path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "tento.db")
}

// CardCachePath is where the rendered card cache lives under the data path.
func (c *Config) CardCachePath() string {
	return filepath.Join(c.Data.BasePath, "cache", "cards")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
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

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "tento", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// splitOrigins splits a comma-separated origin list, trimming whitespace.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
