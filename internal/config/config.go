package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":8080"
	DefaultJWTExpiresIn   = "24h"
	DefaultLocalRoot      = "data/media"
	DefaultMaxUploadBytes = 50 * 1024 * 1024
	DefaultGreeting       = ""
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Telegram TelegramConfig `toml:"telegram"`
	Media    MediaConfig    `toml:"media"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig enables bearer-token auth on the HTTP API when JWTSecret is set.
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

type TelegramConfig struct {
	BotToken      string `toml:"bot_token"`
	DefaultChatID string `toml:"default_chat_id"`
	// ParseMode is passed through to Telegram ("", "Markdown", "MarkdownV2", "HTML").
	ParseMode   string `toml:"parse_mode"`
	PollUpdates bool   `toml:"poll_updates"`
	Greeting    string `toml:"greeting"`
	// APIEndpoint overrides the Bot API endpoint format, e.g. for a local bot server.
	APIEndpoint string `toml:"api_endpoint"`
}

type MediaConfig struct {
	// SpoolDir is the parent directory for transient decoded artifacts. Empty means os.TempDir().
	SpoolDir string `toml:"spool_dir"`
	// LocalRoot confines local file paths accepted by /sendPhoto and /api/getFolderFiles.
	LocalRoot      string `toml:"local_root"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	// SpoolBinary writes decoded data-URL media to spool files before sending.
	SpoolBinary bool `toml:"spool_binary"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Telegram: TelegramConfig{
			Greeting: DefaultGreeting,
		},
		Media: MediaConfig{
			LocalRoot:      DefaultLocalRoot,
			MaxUploadBytes: DefaultMaxUploadBytes,
			SpoolBinary:    true,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyEnv overrides secrets and the default chat from the given lookup (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup("TELEGRAM_BOT_TOKEN"); ok && strings.TrimSpace(v) != "" {
		c.Telegram.BotToken = strings.TrimSpace(v)
	}
	if v, ok := lookup("DEFAULT_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		c.Telegram.DefaultChatID = strings.TrimSpace(v)
	}
	if v, ok := lookup("HTTP_ADDR"); ok && strings.TrimSpace(v) != "" {
		c.Server.Addr = strings.TrimSpace(v)
	}
}
