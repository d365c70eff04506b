package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings storage backends
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging configuration
	LogLevel string

	// AWS configuration
	AWSRegion string

	// Settings persistence
	SettingsBackend   string
	SettingsFile      string
	SettingsTableName string

	// Admin API authentication
	AdminJWTSecret string

	// Outbound proxy used for every BigPanda call
	Proxy ProxySettings

	// Initial notifier settings, used when nothing has been persisted yet
	Seed NotifierSettings
}

// ProxySettings describes an optional corporate HTTP proxy
type ProxySettings struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Enabled reports whether a proxy host is configured
func (p ProxySettings) Enabled() bool {
	return strings.TrimSpace(p.Host) != ""
}

// HasCredentials reports whether both proxy user and password are set
func (p ProxySettings) HasCredentials() bool {
	return strings.TrimSpace(p.User) != "" && strings.TrimSpace(p.Password) != ""
}

// New creates a new Config instance by loading environment variables
// from .env file (if present) and OS environment.
// OS environment variables take precedence over .env file values.
// Panics if required configuration values are missing or invalid.
func New() *Config {
	envPath := filepath.Join(".", ".env")
	_ = godotenv.Load(envPath)

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "3001"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),

		AWSRegion: getEnvOrDefault("AWS_REGION", "us-east-1"),

		SettingsBackend:   strings.ToLower(getEnvOrDefault("SETTINGS_BACKEND", BackendFile)),
		SettingsFile:      getEnvOrDefault("SETTINGS_FILE", "bigpanda-settings.yaml"),
		SettingsTableName: getEnvOrDefault("DYNAMODB_SETTINGS_TABLE", "BigPandaSettings"),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		Proxy: ProxyFromEnv(),
		Seed:  SettingsFromEnv(),
	}

	cfg.validate()

	return cfg
}

// validate checks that all required configuration values are present and valid
func (c *Config) validate() {
	var missing []string

	if c.AdminJWTSecret == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}
	if c.SettingsBackend == BackendFile && c.SettingsFile == "" {
		missing = append(missing, "SETTINGS_FILE")
	}

	if len(missing) > 0 {
		panic(fmt.Sprintf("Missing required configuration values: %v", missing))
	}

	if c.SettingsBackend != BackendFile && c.SettingsBackend != BackendDynamoDB {
		panic(fmt.Sprintf("SETTINGS_BACKEND must be %q or %q (got '%s')", BackendFile, BackendDynamoDB, c.SettingsBackend))
	}

	if c.Proxy.Enabled() && (c.Proxy.Port <= 0 || c.Proxy.Port > 65535) {
		panic(fmt.Sprintf("BIGPANDA_PROXY_PORT must be a valid port (got %d)", c.Proxy.Port))
	}
}

// ProxyFromEnv reads the BIGPANDA_PROXY_* variables
func ProxyFromEnv() ProxySettings {
	port, _ := strconv.Atoi(os.Getenv("BIGPANDA_PROXY_PORT"))
	return ProxySettings{
		Host:     os.Getenv("BIGPANDA_PROXY_HOST"),
		Port:     port,
		User:     os.Getenv("BIGPANDA_PROXY_USER"),
		Password: os.Getenv("BIGPANDA_PROXY_PASSWORD"),
	}
}

// SettingsFromEnv reads notifier settings from BIGPANDA_* variables.
// Defaults are applied.
func SettingsFromEnv() NotifierSettings {
	useNodeName, _ := strconv.ParseBool(os.Getenv("BIGPANDA_USE_NODE_NAME"))
	s := NotifierSettings{
		APIKey:                     os.Getenv("BIGPANDA_API_KEY"),
		AppKey:                     os.Getenv("BIGPANDA_APP_KEY"),
		WebhookURL:                 os.Getenv("BIGPANDA_WEBHOOK_URL"),
		Token:                      os.Getenv("BIGPANDA_TOKEN"),
		BaseURL:                    os.Getenv("BIGPANDA_URL"),
		UseNodeNameInsteadOfLabels: useNodeName,
	}
	return s.WithDefaults()
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
