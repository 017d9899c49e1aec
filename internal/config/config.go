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
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Watcher   WatcherConfig
	Discovery DiscoveryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty auto-detects from environment
	File   string // optional log file, empty disables the file sink
}

// StorageConfig holds database, search index, and prompt library paths.
type StorageConfig struct {
	// DataDir is the base directory for server-owned state (default: ~/.promptkeep)
	DataDir string
	// PromptsDir is the markdown mirror of the prompt library (default: ~/Documents/PromptKeep)
	PromptsDir string
	// DatabasePath is the SQLite file (default: {data}/promptkeep.db)
	DatabasePath string
	// IndexPath is the directory holding the search index (default: {data}/search)
	IndexPath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        // Bind address (default: 127.0.0.1; the server is a local GUI backend)
	Port         string        // Server port (default: 8571)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins for the GUI
}

// WatcherConfig holds prompt directory watching configuration.
type WatcherConfig struct {
	// Enabled allows disabling filesystem reconciliation entirely (default: true)
	Enabled bool
	// SettleDelay is how long a file must stay quiet before its event fires (default: 100ms)
	SettleDelay time.Duration
}

// DiscoveryConfig holds mDNS/Zeroconf advertisement configuration.
type DiscoveryConfig struct {
	// Enabled advertises the server on the local network (default: false)
	Enabled bool
	// ServiceName is the advertised instance name (default: PromptKeep)
	ServiceName string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables (PROMPTKEEP_*).
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (json, pretty)")
	logFile := flag.String("log-file", "", "Append JSON logs to this file")
	dataDir := flag.String("data-dir", "", "Base directory for database and index")
	promptsDir := flag.String("prompts-dir", "", "Markdown prompt library directory")
	dbPath := flag.String("db-path", "", "SQLite database file")
	indexPath := flag.String("index-path", "", "Search index directory")

	// Server flags
	host := flag.String("host", "", "Bind address (default: 127.0.0.1)")
	port := flag.String("port", "", "Server port (default: 8571)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins")

	// Watcher flags
	watchEnabled := flag.String("watch", "", "Watch the prompt directory for edits (default: true)")
	settleDelay := flag.String("settle-delay", "", "Quiet period before a file event fires (default: 100ms)")

	// Discovery flags
	discoveryEnabled := flag.String("discovery", "", "Advertise via mDNS/Zeroconf (default: false)")
	serviceName := flag.String("service-name", "", "mDNS instance name (default: PromptKeep)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "PROMPTKEEP_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "PROMPTKEEP_LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "PROMPTKEEP_LOG_FORMAT", ""),
			File:   getConfigValue(*logFile, "PROMPTKEEP_LOG_FILE", ""),
		},
		Storage: StorageConfig{
			DataDir:      getConfigValue(*dataDir, "PROMPTKEEP_DATA_DIR", ""),
			PromptsDir:   getConfigValue(*promptsDir, "PROMPTKEEP_PROMPTS_DIR", ""),
			DatabasePath: getConfigValue(*dbPath, "PROMPTKEEP_DB_PATH", ""),
			IndexPath:    getConfigValue(*indexPath, "PROMPTKEEP_INDEX_PATH", ""),
		},
		Server: ServerConfig{
			Host: getConfigValue(*host, "PROMPTKEEP_HOST", "127.0.0.1"),
			Port: getConfigValue(*port, "PROMPTKEEP_PORT", "8571"),
			CORSOrigins: splitOrigins(getConfigValue(*corsOrigins, "PROMPTKEEP_CORS_ORIGINS",
				"http://localhost:1420,tauri://localhost")),
		},
		Watcher: WatcherConfig{
			Enabled: getBoolConfigValue(*watchEnabled, "PROMPTKEEP_WATCH", true),
		},
		Discovery: DiscoveryConfig{
			Enabled:     getBoolConfigValue(*discoveryEnabled, "PROMPTKEEP_DISCOVERY", false),
			ServiceName: getConfigValue(*serviceName, "PROMPTKEEP_SERVICE_NAME", "PromptKeep"),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "PROMPTKEEP_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "PROMPTKEEP_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "PROMPTKEEP_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Parse watcher settle delay.
	settleDelayStr := getConfigValue(*settleDelay, "PROMPTKEEP_SETTLE_DELAY", "100ms")
	settleDelayDuration, err := time.ParseDuration(settleDelayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid settle delay %q: %w", settleDelayStr, err)
	}
	cfg.Watcher.SettleDelay = settleDelayDuration

	// Expand and validate storage paths.
	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}
	if err := cfg.expandPromptsDir(); err != nil {
		return nil, fmt.Errorf("invalid prompts dir: %w", err)
	}
	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	if err := cfg.expandIndexPath(); err != nil {
		return nil, fmt.Errorf("invalid index path: %w", err)
	}
	if err := cfg.expandLogFile(); err != nil {
		return nil, fmt.Errorf("invalid log file: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("PROMPTKEEP_ENV is required")
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

	if c.Logger.Format != "" && c.Logger.Format != "json" && c.Logger.Format != "pretty" {
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Storage.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if c.Storage.PromptsDir == "" {
		return errors.New("prompts dir cannot be empty after expansion")
	}

	if c.Server.Host == "" {
		return errors.New("server host cannot be empty")
	}

	if c.Watcher.SettleDelay <= 0 {
		return fmt.Errorf("settle delay must be positive, got %s", c.Watcher.SettleDelay)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataDir expands ~ and makes the path absolute.
func (c *Config) expandDataDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".promptkeep")

	expanded, err := expandPath(c.Storage.DataDir, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataDir = expanded
	return nil
}

// expandPromptsDir expands ~ and makes the path absolute.
func (c *Config) expandPromptsDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Documents", "PromptKeep")

	expanded, err := expandPath(c.Storage.PromptsDir, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.PromptsDir = expanded
	return nil
}

// expandDatabasePath expands ~ and makes the path absolute.
// Defaults to {data}/promptkeep.db if not specified.
func (c *Config) expandDatabasePath() error {
	defaultPath := filepath.Join(c.Storage.DataDir, "promptkeep.db")

	expanded, err := expandPath(c.Storage.DatabasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DatabasePath = expanded
	return nil
}

// expandIndexPath expands ~ and makes the path absolute.
// Defaults to {data}/search if not specified.
func (c *Config) expandIndexPath() error {
	defaultPath := filepath.Join(c.Storage.DataDir, "search")

	expanded, err := expandPath(c.Storage.IndexPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.IndexPath = expanded
	return nil
}

// expandLogFile expands ~ and makes the path absolute.
// An empty path stays empty: the file sink is opt-in.
func (c *Config) expandLogFile() error {
	if c.Logger.File == "" {
		return nil
	}

	expanded, err := expandPath(c.Logger.File, "")
	if err != nil {
		return err
	}
	c.Logger.File = expanded
	return nil
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
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
