package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver   string `mapstructure:"db_driver"`
	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	// DBPath is only used by the sqlite driver.
	DBPath string `mapstructure:"db_path"`

	SessionStore  string `mapstructure:"session_store"`
	SessionSecret string `mapstructure:"session_secret"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisDB       string `mapstructure:"redis_db"`

	GinMode    string `mapstructure:"gin_mode"`
	ListenAddr string `mapstructure:"listen_addr"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// WeekStart is "monday" or "sunday" and drives both the monthly grid and the weekly window.
	WeekStart string `mapstructure:"week_start"`
	Timezone  string `mapstructure:"timezone"`

	MediaRoot string `mapstructure:"media_root"`

	DashboardCacheTTL time.Duration `mapstructure:"dashboard_cache_ttl"`
	SlowQuery         time.Duration `mapstructure:"slow_query"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
}

var defaults = map[string]any{
	"db_driver":           "sqlite",
	"db_host":             "localhost",
	"db_port":             "3306",
	"db_user":             "river",
	"db_password":         "riverpassword",
	"db_name":             "river_ops",
	"db_path":             "river_ops.db",
	"session_store":       "cookie",
	"session_secret":      "default-secret-key-change-me",
	"redis_host":          "localhost",
	"redis_port":          "6379",
	"redis_db":            "0",
	"gin_mode":            "debug",
	"listen_addr":         ":8080",
	"log_level":           "info",
	"log_format":          "json",
	"week_start":          "monday",
	"timezone":            "UTC",
	"media_root":          "media",
	"dashboard_cache_ttl": 30 * time.Second,
	"slow_query":          200 * time.Millisecond,
	"openai_api_key":      "",
}

// Init prepares the global viper instance: defaults, optional config.yaml and environment.
// A missing .env or config file is not an error.
func Init(configFile string) error {
	_ = godotenv.Load()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/river-ops/")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load unmarshals the current viper state into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported session_store %q", c.SessionStore)
	}
	switch strings.ToLower(c.WeekStart) {
	case "monday", "sunday":
	default:
		return fmt.Errorf("week_start must be monday or sunday, got %q", c.WeekStart)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
