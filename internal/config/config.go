package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// OAuthCredentials holds the OAuth2 client identity for one platform.
type OAuthCredentials struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// Defaults are the search parameters used when the corresponding flag is not
// given.
type Defaults struct {
	Min      string `mapstructure:"min"`
	Max      string `mapstructure:"max"`
	Window   string `mapstructure:"window"`
	Duration string `mapstructure:"duration"`
}

// Config is the top-level avail configuration.
type Config struct {
	Timezone  string           `mapstructure:"timezone"`
	Google    OAuthCredentials `mapstructure:"google"`
	Microsoft OAuthCredentials `mapstructure:"microsoft"`
	Defaults  Defaults         `mapstructure:"defaults"`
}

// Dir returns the avail configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	dir := filepath.Join(base, "avail")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return dir, nil
}

// Load reads config.yaml from the avail config directory. A missing file is
// not an error; defaults and AVAIL_* environment variables still apply.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return load(dir)
}

func load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("AVAIL")
	v.AutomaticEnv()

	v.SetDefault("timezone", "Local")
	v.SetDefault("defaults.min", "9:00am")
	v.SetDefault("defaults.max", "5:00pm")
	v.SetDefault("defaults.window", "1w")
	v.SetDefault("defaults.duration", "30m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
