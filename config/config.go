package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	Cache   CacheConfig
	Vocab   VocabConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SourcesConfig holds base URLs and credentials for the external catalogs.
type SourcesConfig struct {
	FoodBaseURL     string `mapstructure:"food_base_url"`
	BeautyBaseURL   string `mapstructure:"beauty_base_url"`
	ProductsBaseURL string `mapstructure:"products_base_url"`
	USDABaseURL     string `mapstructure:"usda_base_url"`
	USDAAPIKey      string `mapstructure:"usda_api_key"`
}

// CacheConfig holds the local product cache settings.
type CacheConfig struct {
	Path          string        `mapstructure:"path"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// VocabConfig points at an optional external vocabulary file; the embedded
// defaults are used when empty.
type VocabConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/smartlens/")

	v.SetEnvPrefix("SMARTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("sources.food_base_url", "https://world.openfoodfacts.org")
	v.SetDefault("sources.beauty_base_url", "https://world.openbeautyfacts.org")
	v.SetDefault("sources.products_base_url", "https://world.openproductsfacts.org")
	v.SetDefault("sources.usda_base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("sources.usda_api_key", "")

	v.SetDefault("cache.path", "smartlens.db")
	v.SetDefault("cache.ttl", "720h") // 30 days
	v.SetDefault("cache.sweep_interval", "12h")

	v.SetDefault("vocab.path", "")
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.Sources.USDAAPIKey == "" {
		return fmt.Errorf("USDA API key is required (set SMARTLENS_SOURCES_USDA_API_KEY)")
	}
	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}
	if config.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive, got: %s", config.Cache.SweepInterval)
	}
	return nil
}
