// Package config loads runtime configuration from a config file and the
// environment, environment winning.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	BotToken      string `mapstructure:"BOT_TOKEN"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DefaultLocale string `mapstructure:"DEFAULT_LOCALE"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	// AdminChatID receives forwarded guest questions; 0 disables forwarding.
	AdminChatID int64 `mapstructure:"ADMIN_CHAT_ID"`
}

// Load reads config.yaml (current directory or ./config) if present and
// overlays environment variables on top.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("DEFAULT_LOCALE", "en")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ADMIN_CHAT_ID", 0)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return &cfg, nil
}
