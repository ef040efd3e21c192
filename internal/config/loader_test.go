package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_USERNAME", "@deeptracex_bot")
	t.Setenv("ADMIN_CHAT_IDS", "100, 200,notanumber,300")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("IP_API_URL", "http://ip-api.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "deeptracex_bot", cfg.Telegram.BotUsername)
	assert.Equal(t, []int64{100, 200, 300}, cfg.Telegram.AdminIDs)
	assert.Equal(t, "s3cret", cfg.Server.SecretKey)

	// Defaults.
	assert.Equal(t, ":10000", cfg.Server.ListenAddr)
	assert.Equal(t, "deeptracex.db", cfg.Server.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)

	// Trailing slash is stripped so URL joins stay clean.
	assert.Equal(t, "http://ip-api.com", cfg.Lookup.IPAPIURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_CHAT_IDS", "")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_MissingAdmins(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_IDS", "")
	t.Setenv("SECRET_KEY", "s3cret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_CHAT_IDS")
}
