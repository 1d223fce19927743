// Package config handles configuration loading for macropulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Data       DataConfig        `mapstructure:"data"       yaml:"data"`
	Providers  ProvidersConfig   `mapstructure:"providers"  yaml:"providers"`
	Run        RunConfig         `mapstructure:"run"        yaml:"run"`
	Logging    LoggingConfig     `mapstructure:"logging"    yaml:"logging"`
	Indicators []IndicatorConfig `mapstructure:"indicators" yaml:"indicators"`
}

// DataConfig holds the persisted series location and retention.
type DataConfig struct {
	File           string `mapstructure:"file"            yaml:"file"`
	RetentionYears int    `mapstructure:"retention_years" yaml:"retention_years"`
}

// ProvidersConfig holds per-provider connection settings.
type ProvidersConfig struct {
	FRED  FREDConfig  `mapstructure:"fred"  yaml:"fred"`
	Yahoo YahooConfig `mapstructure:"yahoo" yaml:"yahoo"`
}

// FREDConfig holds FRED API settings.
type FREDConfig struct {
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	CacheTTL   int    `mapstructure:"cache_ttl"   yaml:"cache_ttl"`   // seconds
	RateLimit  int    `mapstructure:"rate_limit"  yaml:"rate_limit"`  // requests per window
	RateWindow int    `mapstructure:"rate_window" yaml:"rate_window"` // seconds
}

// YahooConfig holds Yahoo Finance API settings. No credentials required.
type YahooConfig struct {
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	CacheTTL   int    `mapstructure:"cache_ttl"   yaml:"cache_ttl"`   // seconds
	RateLimit  int    `mapstructure:"rate_limit"  yaml:"rate_limit"`  // requests per window
	RateWindow int    `mapstructure:"rate_window" yaml:"rate_window"` // seconds
}

// RunConfig holds update-run settings.
type RunConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// IndicatorConfig overrides or extends the built-in indicator catalog.
type IndicatorConfig struct {
	ID        string   `mapstructure:"id"        yaml:"id"`
	Provider  string   `mapstructure:"provider"  yaml:"provider"`
	Symbol    string   `mapstructure:"symbol"    yaml:"symbol"`
	Fallbacks []string `mapstructure:"fallbacks" yaml:"fallbacks"`
	Scale     float64  `mapstructure:"scale"     yaml:"scale"`
	Transform string   `mapstructure:"transform" yaml:"transform"`
	Constant  float64  `mapstructure:"constant"  yaml:"constant"`
	Category  string   `mapstructure:"category"  yaml:"category"`
	Cadence   string   `mapstructure:"cadence"   yaml:"cadence"`
	Enabled   *bool    `mapstructure:"enabled"   yaml:"enabled"` // nil means enabled
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.macropulse/config.yaml (home directory)
//  3. /etc/macropulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: MACROPULSE_<SECTION>_<KEY>, e.g., MACROPULSE_PROVIDERS_FRED_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".macropulse"))
	v.AddConfigPath("/etc/macropulse")

	v.SetEnvPrefix("MACROPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MACROPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadDotEnv loads a .env file from the working directory or the nearest
// parent that has one, so runs from subdirectories still pick up
// credentials. A missing file is not an error.
func LoadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.file", "data/economic_data.yaml")
	v.SetDefault("data.retention_years", 5)

	// FRED defaults (documented limit is 120 requests/minute)
	v.SetDefault("providers.fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("providers.fred.cache_ttl", 600) // 10 minutes
	v.SetDefault("providers.fred.rate_limit", 10)
	v.SetDefault("providers.fred.rate_window", 1)

	// Yahoo defaults
	v.SetDefault("providers.yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("providers.yahoo.cache_ttl", 900) // 15 minutes
	v.SetDefault("providers.yahoo.rate_limit", 5)
	v.SetDefault("providers.yahoo.rate_window", 1)

	// Run defaults
	v.SetDefault("run.concurrency", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables. The bare FRED_API_KEY form is accepted because that is the
// name FRED's own documentation uses.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("MACROPULSE_PROVIDERS_FRED_API_KEY"); key != "" {
		cfg.Providers.FRED.APIKey = key
	} else if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Providers.FRED.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
