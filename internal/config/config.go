package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/spf13/viper"
)

// Config holds all Cost Manager configuration.
type Config struct {
	Storage    StorageConfig `mapstructure:"storage"`
	Server     ServerConfig  `mapstructure:"server"`
	Logging    LoggingConfig `mapstructure:"logging"`
	Categories []string      `mapstructure:"categories"`
}

// StorageConfig defines where the cost store lives and which schema version to open.
type StorageConfig struct {
	Dir     string `mapstructure:"dir"`
	Name    string `mapstructure:"name"`
	Version int    `mapstructure:"version"`
	Timeout string `mapstructure:"timeout"`
}

// ServerConfig defines HTTP API settings.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OpTimeout returns the per-operation storage timeout, or 0 if unset or invalid.
func (c StorageConfig) OpTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Load reads configuration from file, a .env file in the working directory,
// and environment variables.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".costmgr"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.dir", filepath.Join(home, ".costmgr"))
	v.SetDefault("storage.name", "CostManagerDB")
	v.SetDefault("storage.version", 1)
	v.SetDefault("storage.timeout", "5s")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("categories", model.DefaultCategories)

	// Environment variables
	v.SetEnvPrefix("COSTMGR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Storage.Version < 1 {
		return nil, fmt.Errorf("storage.version must be at least 1, got %d", cfg.Storage.Version)
	}

	return &cfg, nil
}
