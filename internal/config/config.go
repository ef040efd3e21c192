package config

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
	Lookup   LookupConfig   `mapstructure:"lookup"`
	LogLevel string         `mapstructure:"log_level"`
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token       string  `mapstructure:"token"`
	BotUsername string  `mapstructure:"bot_username"`
	AdminIDs    []int64 `mapstructure:"admin_ids"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	SecretKey  string `mapstructure:"secret_key"`
	DBPath     string `mapstructure:"db_path"`
	StaticDir  string `mapstructure:"static_dir"`
}

// LookupConfig holds the external provider configuration
type LookupConfig struct {
	IPAPIURL string `mapstructure:"ip_api_url"`
}
