package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/mberthou/satchel/internal/log"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging log.Config    `mapstructure:"logging"`
}

// ServerConfig holds portal proxy configuration
type ServerConfig struct {
	URL          string `mapstructure:"url"`           // Portal proxy base URL
	Username     string `mapstructure:"username"`      // Student login
	Token        string `mapstructure:"token"`         // Access token
	RefreshToken string `mapstructure:"refresh_token"` // Refresh token
}

// SyncConfig holds synchronizer tuning
type SyncConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`     // Minimum interval between remote fetches
	AbsencesTTL time.Duration `mapstructure:"absences_ttl"` // Cache validity for absences
	GradesTTL   time.Duration `mapstructure:"grades_ttl"`   // Cache validity for grades
	PlanningTTL time.Duration `mapstructure:"planning_ttl"` // Cache validity for planning
}

// CacheConfig holds local snapshot storage configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Snapshot store directory; empty = memory only
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			Debounce:    2 * time.Second,
			AbsencesTTL: time.Hour,
			GradesTTL:   time.Hour,
			PlanningTTL: 30 * time.Minute,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: log.Config{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "satchel", "satchel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "satchel", "satchel.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "satchel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "satchel")
	}
}

// defaultCachePath returns the default snapshot store directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "satchel", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "satchel", "cache")
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SATCHEL")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.username", cfg.Server.Username)
	viper.Set("server.token", cfg.Server.Token)
	viper.Set("server.refresh_token", cfg.Server.RefreshToken)

	viper.Set("sync.debounce", cfg.Sync.Debounce)
	viper.Set("sync.absences_ttl", cfg.Sync.AbsencesTTL)
	viper.Set("sync.grades_ttl", cfg.Sync.GradesTTL)
	viper.Set("sync.planning_ttl", cfg.Sync.PlanningTTL)

	viper.Set("cache.dir", cfg.Cache.Dir)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveTokens updates just the credentials in the configuration
func SaveTokens(token, refreshToken string) error {
	viper.Set("server.token", token)
	viper.Set("server.refresh_token", refreshToken)

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearServerConfig removes all server-related configuration while
// preserving other settings (sync tuning, cache, logging)
func ClearServerConfig() error {
	viper.Set("server.url", "")
	viper.Set("server.username", "")
	viper.Set("server.token", "")
	viper.Set("server.refresh_token", "")

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes all cached snapshot data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// IsConfigured returns true if the portal URL and token are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Token != ""
}

// TTLFor returns the cache validity window for a resource key.
func (c *Config) TTLFor(resource string) time.Duration {
	switch resource {
	case "grades":
		return c.Sync.GradesTTL
	case "planning":
		return c.Sync.PlanningTTL
	default:
		return c.Sync.AbsencesTTL
	}
}
