package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("log_level", "info")
	v.SetDefault("LISTEN_ADDR", ":10000")
	v.SetDefault("DB_PATH", "deeptracex.db")
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("IP_API_URL", "http://ip-api.com")

	// Define environment variables
	v.BindEnv("BOT_TOKEN")
	v.BindEnv("BOT_USERNAME")
	v.BindEnv("ADMIN_CHAT_IDS")
	v.BindEnv("SECRET_KEY")
	v.BindEnv("LISTEN_ADDR")
	v.BindEnv("DB_PATH")
	v.BindEnv("STATIC_DIR")
	v.BindEnv("IP_API_URL")

	// Create config instance
	cfg := &Config{
		LogLevel: v.GetString("log_level"),
		Telegram: TelegramConfig{
			Token:       v.GetString("BOT_TOKEN"),
			BotUsername: strings.TrimPrefix(v.GetString("BOT_USERNAME"), "@"),
		},
		Server: ServerConfig{
			ListenAddr: v.GetString("LISTEN_ADDR"),
			SecretKey:  v.GetString("SECRET_KEY"),
			DBPath:     v.GetString("DB_PATH"),
			StaticDir:  v.GetString("STATIC_DIR"),
		},
		Lookup: LookupConfig{
			IPAPIURL: strings.TrimRight(v.GetString("IP_API_URL"), "/"),
		},
	}

	// Parse admin IDs
	adminIDsStr := v.GetString("ADMIN_CHAT_IDS")
	if adminIDsStr != "" {
		adminIDsSlice := strings.Split(adminIDsStr, ",")
		adminIDs := make([]int64, 0, len(adminIDsSlice))
		for _, idStr := range adminIDsSlice {
			var id int64
			if _, err := fmt.Sscanf(strings.TrimSpace(idStr), "%d", &id); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
		cfg.Telegram.AdminIDs = adminIDs
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("BOT_TOKEN is required")
	}

	if len(cfg.Telegram.AdminIDs) == 0 {
		return errors.New("ADMIN_CHAT_IDS is required")
	}

	if cfg.Server.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}

	if cfg.Server.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}

	return nil
}
