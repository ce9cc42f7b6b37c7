// Package telegram implements the dispatch gateway and the update listener on the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/telepost/internal/dispatch"
	"github.com/memohai/telepost/internal/media"
)

var (
	// ErrEmptyText indicates a text send with nothing left to send after trimming.
	ErrEmptyText = errors.New("message text is empty")
	// ErrNoSource indicates a media item without bytes, path or url.
	ErrNoSource = errors.New("media item has no source")
)

// Bot is the part of *tgbotapi.BotAPI the gateway uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// NewBot creates a Bot API client. An empty endpoint uses the public Telegram API.
func NewBot(token, endpoint string) (*tgbotapi.BotAPI, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

// Gateway sends dispatch calls through a Telegram bot.
type Gateway struct {
	bot       Bot
	parseMode string
	logger    *slog.Logger
}

var _ dispatch.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway. parseMode is "", "markdown", "markdownv2" or "html".
func NewGateway(log *slog.Logger, bot Bot, parseMode string) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	gw := &Gateway{
		bot:       bot,
		parseMode: resolveParseMode(parseMode),
		logger:    log.With(slog.String("adapter", "telegram")),
	}
	sdkLoggerOnce.Do(func() {
		_ = tgbotapi.SetLogger(&slogBotLogger{log: gw.logger})
	})
	return gw
}

// SendText sends a plain message.
func (g *Gateway) SendText(ctx context.Context, target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = prepareMessage(strings.TrimSpace(text))
	if text == "" {
		return ErrEmptyText
	}
	chatID, channel, err := parseTarget(target)
	if err != nil {
		return err
	}
	var message tgbotapi.MessageConfig
	if channel != "" {
		message = tgbotapi.NewMessageToChannel(channel, text)
	} else {
		message = tgbotapi.NewMessage(chatID, text)
	}
	message.ParseMode = g.parseMode
	if _, err := g.bot.Send(message); err != nil {
		return err
	}
	g.logger.Debug("text sent", slog.String("target", target), slog.Int("length", len(text)))
	return nil
}

// SendMedia sends one photo or video.
func (g *Gateway) SendMedia(ctx context.Context, target string, item dispatch.MediaItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := requestFile(item)
	if err != nil {
		return err
	}
	chatID, channel, err := parseTarget(target)
	if err != nil {
		return err
	}
	caption := prepareCaption(item.Caption)
	var c tgbotapi.Chattable
	switch item.Kind {
	case media.MediaTypeVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.ChannelUsername = channel
		video.Caption = caption
		video.ParseMode = g.parseMode
		c = video
	default:
		var photo tgbotapi.PhotoConfig
		if channel != "" {
			photo = tgbotapi.NewPhotoToChannel(channel, file)
		} else {
			photo = tgbotapi.NewPhoto(chatID, file)
		}
		photo.Caption = caption
		photo.ParseMode = g.parseMode
		c = photo
	}
	if _, err := g.bot.Send(c); err != nil {
		return err
	}
	g.logger.Debug("media sent", slog.String("target", target), slog.String("kind", string(item.Kind)))
	return nil
}

// SendMediaGroup sends 2 to 10 items as an album. A single item is sent on its own
// since Telegram rejects one-item albums.
func (g *Gateway) SendMediaGroup(ctx context.Context, target string, items []dispatch.MediaItem) error {
	switch len(items) {
	case 0:
		return fmt.Errorf("media group is empty")
	case 1:
		return g.SendMedia(ctx, target, items[0])
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, channel, err := parseTarget(target)
	if err != nil {
		return err
	}
	files := make([]interface{}, 0, len(items))
	for i, item := range items {
		file, err := requestFile(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		caption := ""
		if i == 0 {
			caption = prepareCaption(item.Caption)
		}
		switch item.Kind {
		case media.MediaTypeVideo:
			m := tgbotapi.NewInputMediaVideo(file)
			m.Caption = caption
			m.ParseMode = g.parseMode
			files = append(files, m)
		default:
			m := tgbotapi.NewInputMediaPhoto(file)
			m.Caption = caption
			m.ParseMode = g.parseMode
			files = append(files, m)
		}
	}
	group := tgbotapi.NewMediaGroup(chatID, files)
	group.ChannelUsername = channel
	if _, err := g.bot.SendMediaGroup(group); err != nil {
		return err
	}
	g.logger.Debug("media group sent", slog.String("target", target), slog.Int("items", len(items)))
	return nil
}

// parseTarget splits "@channel" from a numeric chat id.
func parseTarget(target string) (int64, string, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "@") {
		return 0, target, nil
	}
	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("telegram target must be @username or chat_id")
	}
	return chatID, "", nil
}

func requestFile(item dispatch.MediaItem) (tgbotapi.RequestFileData, error) {
	switch {
	case len(item.Bytes) > 0:
		name := item.Name
		if name == "" {
			name = string(item.Kind)
		}
		return tgbotapi.FileBytes{Name: name, Bytes: item.Bytes}, nil
	case item.Path != "":
		return tgbotapi.FilePath(item.Path), nil
	case item.URL != "":
		return tgbotapi.FileURL(item.URL), nil
	default:
		return nil, ErrNoSource
	}
}

func resolveParseMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "markdown":
		return tgbotapi.ModeMarkdown
	case "markdownv2":
		return tgbotapi.ModeMarkdownV2
	case "html":
		return tgbotapi.ModeHTML
	default:
		return ""
	}
}

// sdkLoggerOnce guards the SDK's package-level logger.
var sdkLoggerOnce sync.Once

// slogBotLogger routes the SDK's internal logging into slog.
type slogBotLogger struct {
	log *slog.Logger
}

func (l *slogBotLogger) Println(v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l *slogBotLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
