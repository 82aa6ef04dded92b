package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// placeholderAPIKey is the value shipped in the example config
const placeholderAPIKey = "your-api-key-here"

// envPrefix namespaces environment overrides, e.g. REELSCOUT_OMDB_TIMEOUT
const envPrefix = "REELSCOUT"

// Load loads the configuration from file and environment.
//
// A missing config file is not an error; the environment alone is enough.
// A missing API key is not an error either: it surfaces on the first request.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".reelscout"))
		}

		// Check /etc
		v.AddConfigPath("/etc/reelscout/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalize(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// OMDb defaults
	v.SetDefault("omdb.url", "https://www.omdbapi.com/")
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.timeout", "15s")
	v.SetDefault("omdb.user_agent", "reelscout")

	// Display defaults
	v.SetDefault("display.color", true)
	v.SetDefault("display.show_details", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// bindEnv wires environment overrides. OMDB_API_KEY is accepted as a
// shorthand for REELSCOUT_OMDB_API_KEY.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("omdb.api_key", envPrefix+"_OMDB_API_KEY", "OMDB_API_KEY")
}

func normalize(cfg *Config) {
	cfg.OMDb.URL = strings.TrimSpace(cfg.OMDb.URL)
	cfg.OMDb.APIKey = strings.TrimSpace(cfg.OMDb.APIKey)
	if cfg.OMDb.APIKey == placeholderAPIKey {
		cfg.OMDb.APIKey = ""
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.OMDb.URL == "" {
		return fmt.Errorf("omdb.url is required")
	}

	if cfg.OMDb.Timeout < 0 {
		return fmt.Errorf("omdb.timeout must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset '%s' has an empty expression", name)
		}
	}

	return nil
}
