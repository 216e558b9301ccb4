// Package config loads component settings from the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pricofy/deepl-component/internal/translator"
)

// Setting keys.
const (
	KeyEnvironment  = "environment"
	KeyAPIKey       = "api_key"
	KeyServerURL    = "server_url"
	KeyHTTPTimeout  = "http_timeout"
	KeyLogLevel     = "log_level"
	KeyFunctionName = "function_name"
)

var envBindings = map[string]string{
	KeyEnvironment:  "ENVIRONMENT",
	KeyAPIKey:       "DEEPL_API_KEY",
	KeyServerURL:    "DEEPL_SERVER_URL",
	KeyHTTPTimeout:  "DEEPL_HTTP_TIMEOUT",
	KeyLogLevel:     "DEEPL_LOG_LEVEL",
	KeyFunctionName: "AWS_LAMBDA_FUNCTION_NAME",
}

// Config holds the settings shared by the Lambda and CLI hosts.
type Config struct {
	Environment  string
	APIKey       string
	ServerURL    string
	HTTPTimeout  time.Duration
	LogLevel     string
	FunctionName string
}

// NewViper returns a viper instance with defaults and environment bindings
// in place. Values already in the process environment win over .env.
func NewViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(KeyEnvironment, "dev")
	v.SetDefault(KeyHTTPTimeout, translator.DefaultTimeout)
	v.SetDefault(KeyLogLevel, "info")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// ReadFile merges a YAML, JSON or TOML config file into v. An empty path
// is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// FromViper extracts a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment:  v.GetString(KeyEnvironment),
		APIKey:       v.GetString(KeyAPIKey),
		ServerURL:    v.GetString(KeyServerURL),
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		LogLevel:     v.GetString(KeyLogLevel),
		FunctionName: v.GetString(KeyFunctionName),
	}
	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("%s must not be negative, got %s", KeyHTTPTimeout, cfg.HTTPTimeout)
	}
	return cfg, nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// TranslatorOptions returns the DeepL client options for cfg.
func (c *Config) TranslatorOptions() []translator.Option {
	return []translator.Option{
		translator.WithServerURL(c.ServerURL),
		translator.WithTimeout(c.HTTPTimeout),
	}
}
