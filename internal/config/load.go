package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CARDLINK_SERVER_PORT.
const EnvPrefix = "CARDLINK"

var defaults = map[string]interface{}{
	"server.port":              8080,
	"server.log_level":         "info",
	"server.log_format":        "json",
	"server.shutdown_timeout":  "10s",
	"scheme.base_url":          "http://localhost:8080",
	"scheme.timeout":           "15s",
	"scheme.client_token":      "",
	"sandbox.token_issuer":     "cardlink-sandbox",
	"sandbox.token_ttl":        "1h",
	"sandbox.otp_ttl":          "5m",
	"sandbox.otp_length":       6,
	"sandbox.max_otp_attempts": 3,
	"sandbox.bcrypt_cost":      10,
	"sandbox.purge_interval":   "1m",
	"sandbox.expose_otps":      true,
	"database.url":             "",
	"tasks.worker_count":       4,
	"tasks.queue_size":         100,
	"sdk.environment":          "sandbox",
}

// keys without defaults that must still be readable from the environment
var envOnly = []string{
	"sandbox.token_secret",
}

// Load reads config.yaml from the working directory if present, then
// environment variables. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return load(v)
}

// LoadFile is Load with an explicit YAML file instead of ./config.yaml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
