// Package config loads and validates client configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig locates the storefront backend.
type APIConfig struct {
	BaseOrigin          string `mapstructure:"base_origin"`
	FallbackOrigin      string `mapstructure:"fallback_origin"`
	AdminToken          string `mapstructure:"admin_token"`
	SeparateAssetUpload bool   `mapstructure:"separate_asset_upload"`
}

// HTTPConfig configures executor retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
}

// CacheConfig sets where the local category cache lives.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// UploadConfig bounds file ingestion.
type UploadConfig struct {
	MaxFiles      int    `mapstructure:"max_files"`
	MaxSizeBytes  int64  `mapstructure:"max_size_bytes"`
	AcceptPattern string `mapstructure:"accept_pattern"`
	PreviewDir    string `mapstructure:"preview_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.fallback_origin", "https://furniture-q3nb.onrender.com")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("cache.path", "catalog/categories.json")
	v.SetDefault("upload.max_files", 5)
	v.SetDefault("upload.max_size_bytes", 5<<20)
	v.SetDefault("upload.accept_pattern", "image/*")
	v.SetDefault("upload.preview_dir", "catalog/previews")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.API.BaseOrigin == "" && c.API.FallbackOrigin == "" {
		return fmt.Errorf("api.base_origin or api.fallback_origin must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.Upload.MaxFiles < 0 {
		return fmt.Errorf("upload.max_files must not be negative")
	}
	if c.Upload.MaxSizeBytes < 0 {
		return fmt.Errorf("upload.max_size_bytes must not be negative")
	}
	return nil
}

// AttemptTimeout converts the HTTP timeout into a duration.
func (c Config) AttemptTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffBase converts the backoff config into a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}
