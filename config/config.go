// Package config carries the service configuration. Values come from
// defaults, an optional .env file, real environment variables, and
// optionally a YAML/JSON config file, in increasing precedence for the env
// sources.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" json:"server" yaml:"server"`
	Vendor  VendorConfig  `mapstructure:"vendor" json:"vendor" yaml:"vendor"`
	Cache   CacheConfig   `mapstructure:"cache" json:"cache" yaml:"cache"`
	Trading TradingConfig `mapstructure:"trading" json:"trading" yaml:"trading"`
	Ledger  LedgerConfig  `mapstructure:"ledger" json:"ledger" yaml:"ledger"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" json:"port" yaml:"port"`
}

type VendorConfig struct {
	BaseURL          string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	APIKey           string `mapstructure:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty"`
	TimeoutMS        int    `mapstructure:"timeout_ms" json:"timeout_ms" yaml:"timeout_ms"`
	RetryAttempts    int    `mapstructure:"retry_attempts" json:"retry_attempts" yaml:"retry_attempts"`
	RetryBaseDelayMS int    `mapstructure:"retry_base_delay_ms" json:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
}

// Timeout is the per-attempt request timeout.
func (v VendorConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutMS) * time.Millisecond
}

func (v VendorConfig) RetryBaseDelay() time.Duration {
	return time.Duration(v.RetryBaseDelayMS) * time.Millisecond
}

type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" json:"ttl_seconds" yaml:"ttl_seconds"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type TradingConfig struct {
	MaxDeviationPercent float64 `mapstructure:"max_deviation_percent" json:"max_deviation_percent" yaml:"max_deviation_percent"`
}

type LedgerConfig struct {
	Type   string `mapstructure:"type" json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath string `mapstructure:"db_path" json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns a configuration with sane defaults; only the vendor base
// URL and API key have no usable default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: ":8080"},
		Vendor: VendorConfig{
			TimeoutMS:        30000,
			RetryAttempts:    3,
			RetryBaseDelayMS: 1000,
		},
		Cache:   CacheConfig{TTLSeconds: 300},
		Trading: TradingConfig{MaxDeviationPercent: 2},
		Ledger:  LedgerConfig{Type: "memory"},
	}
}

// Load builds the configuration from defaults, a .env file if present, and
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Load .env into the real environment first so plain env vars and
	// .env entries are indistinguishable below.
	_ = godotenv.Load()

	def := Default()
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("vendor.base_url", "")
	v.SetDefault("vendor.api_key", "")
	v.SetDefault("vendor.timeout_ms", def.Vendor.TimeoutMS)
	v.SetDefault("vendor.retry_attempts", def.Vendor.RetryAttempts)
	v.SetDefault("vendor.retry_base_delay_ms", def.Vendor.RetryBaseDelayMS)
	v.SetDefault("cache.ttl_seconds", def.Cache.TTLSeconds)
	v.SetDefault("trading.max_deviation_percent", def.Trading.MaxDeviationPercent)
	v.SetDefault("ledger.type", def.Ledger.Type)
	v.SetDefault("ledger.db_path", "")

	// Keep the env names the deployment already uses.
	v.BindEnv("server.port", "PORT")
	v.BindEnv("vendor.base_url", "VENDOR_API_BASE_URL")
	v.BindEnv("vendor.api_key", "VENDOR_API_KEY")
	v.BindEnv("vendor.timeout_ms", "API_TIMEOUT")
	v.BindEnv("vendor.retry_attempts", "API_RETRY_ATTEMPTS")
	v.BindEnv("vendor.retry_base_delay_ms", "API_RETRY_BASE_DELAY")
	v.BindEnv("cache.ttl_seconds", "CACHE_TTL_SECONDS")
	v.BindEnv("trading.max_deviation_percent", "MAX_PRICE_DEVIATION_PERCENT")
	v.BindEnv("ledger.type", "LEDGER_TYPE")
	v.BindEnv("ledger.db_path", "LEDGER_DB_PATH")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration to a file, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Vendor.TimeoutMS <= 0 {
		return fmt.Errorf("vendor.timeout_ms must be positive")
	}
	if c.Vendor.RetryAttempts < 0 {
		return fmt.Errorf("vendor.retry_attempts must not be negative")
	}
	if c.Vendor.RetryBaseDelayMS <= 0 {
		return fmt.Errorf("vendor.retry_base_delay_ms must be positive")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	if c.Trading.MaxDeviationPercent <= 0 {
		return fmt.Errorf("trading.max_deviation_percent must be positive")
	}
	if c.Ledger.Type != "memory" && c.Ledger.Type != "sqlite" {
		return fmt.Errorf("ledger.type must be 'memory' or 'sqlite'")
	}
	return nil
}
