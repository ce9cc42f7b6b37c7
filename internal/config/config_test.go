package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultLocalRoot, cfg.Media.LocalRoot)
	assert.True(t, cfg.Media.SpoolBinary)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9090"

[telegram]
bot_token = "123:abc"
default_chat_id = "-100200"
parse_mode = "Markdown"

[media]
spool_binary = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "-100200", cfg.Telegram.DefaultChatID)
	assert.Equal(t, "Markdown", cfg.Telegram.ParseMode)
	assert.False(t, cfg.Media.SpoolBinary)
	// untouched sections keep defaults
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Media.MaxUploadBytes)
}

func TestLoadInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\naddr="), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"TELEGRAM_BOT_TOKEN": " tok ",
		"DEFAULT_CHAT_ID":    "-42",
		"HTTP_ADDR":          "",
	}
	cfg := Defaults()
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, "-42", cfg.Telegram.DefaultChatID)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
}
