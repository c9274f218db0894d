// Package config loads server settings from an optional config file plus
// SPEAKANCE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Parsing ParsingConfig `mapstructure:"parsing"`
	S3      S3Config      `mapstructure:"s3"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	SecretKey     string        `mapstructure:"secret_key"`
	TokenValidity time.Duration `mapstructure:"token_validity"`
}

type StorageConfig struct {
	// DatabaseDSN is the pgx DSN; empty selects the in-memory stores.
	DatabaseDSN string `mapstructure:"database_dsn"`
}

type ParsingConfig struct {
	// Provider selects the AI extractor: "openai", "anthropic" or "" for
	// rules only.
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`

	// AutoSaveThreshold gates automatic saving; drafts below it go to
	// review. Product-tuned, keep configurable.
	AutoSaveThreshold float64 `mapstructure:"auto_save_threshold"`

	// DailyVoiceLimit is the default per-account voice quota.
	DailyVoiceLimit int `mapstructure:"daily_voice_limit"`
}

type S3Config struct {
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	BaseEndpoint string `mapstructure:"base_endpoint"`
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("auth.secret_key", "dev-secret")
	viper.SetDefault("auth.token_validity", 15*time.Minute)
	viper.SetDefault("parsing.auto_save_threshold", 0.90)
	viper.SetDefault("parsing.daily_voice_limit", 20)
	viper.SetDefault("s3.bucket", "speakance-audio")
	viper.SetDefault("s3.region", "us-east-1")
}

// LoadConfig reads config.yaml from the working directory when present and
// applies SPEAKANCE_* environment overrides on top of the defaults.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SPEAKANCE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
