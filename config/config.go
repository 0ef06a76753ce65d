package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is built once at startup and not mutated afterwards.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Client    ClientConfig
	Shell     ShellConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// APIConfig points at the remote analysis service
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ClientConfig holds request defaults
type ClientConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// ShellConfig controls page visits in the web shell
type ShellConfig struct {
	VisitTTL        time.Duration `mapstructure:"visit_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
}

// RateLimitConfig holds rate limiting configuration for form submissions
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // submissions per minute
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from .env, an optional config file and environment variables
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/halalcheck/")

	v.SetEnvPrefix("HALALCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Deployments of the original frontend set API_BASE_URL without a prefix.
	_ = v.BindEnv("api.base_url", "HALALCHECK_API_BASE_URL", "API_BASE_URL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*", "http://127.0.0.1:*"})

	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout", "60s")

	v.SetDefault("client.confidence_threshold", 0.5)

	v.SetDefault("shell.visit_ttl", "30m")
	v.SetDefault("shell.cleanup_interval", "1m")
	v.SetDefault("shell.poll_interval", "2s")

	v.SetDefault("ratelimit.per_ip", 30)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	u, err := url.Parse(config.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API base URL must be an absolute http(s) URL, got: %q", config.API.BaseURL)
	}

	if config.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got: %s", config.API.Timeout)
	}

	if t := config.Client.ConfidenceThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("confidence threshold must be in (0,1], got: %v", t)
	}

	if config.Shell.VisitTTL <= 0 {
		return fmt.Errorf("visit TTL must be positive, got: %s", config.Shell.VisitTTL)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	switch config.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
