package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	pollTimeoutSeconds = 30
	summaryRunes       = 120
)

// UpdateSource is the polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TextSender posts plain text to a chat.
type TextSender interface {
	SendText(ctx context.Context, target, text string) error
}

// Listener long-polls bot updates, logs inbound text messages and answers each one
// by posting the greeting to the greeting chat when both are configured.
type Listener struct {
	source    UpdateSource
	sender    TextSender
	greeting  string
	greetChat string
	logger    *slog.Logger

	mu      sync.Mutex
	updates tgbotapi.UpdatesChannel
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewListener creates a listener. An empty greeting or greetChat disables replies.
func NewListener(log *slog.Logger, source UpdateSource, sender TextSender, greeting, greetChat string) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{
		source:    source,
		sender:    sender,
		greeting:  strings.TrimSpace(greeting),
		greetChat: strings.TrimSpace(greetChat),
		logger:    log.With(slog.String("adapter", "telegram_listener")),
	}
}

// Start begins polling. The polling goroutine outlives ctx and runs until Stop.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updates != nil {
		return errors.New("listener already started")
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := l.source.GetUpdatesChan(cfg)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	l.updates = updates
	l.cancel = cancel
	l.done = done
	l.logger.Info("start", slog.Bool("greeting", l.greeting != "" && l.greetChat != ""))
	go l.loop(runCtx, updates, done)
	return nil
}

// Stop ends polling and drains pending updates so the SDK's poll goroutine can exit.
func (l *Listener) Stop(ctx context.Context) error {
	l.mu.Lock()
	updates, cancel, done := l.updates, l.cancel, l.done
	l.updates, l.cancel, l.done = nil, nil, nil
	l.mu.Unlock()
	if updates == nil {
		return nil
	}
	l.logger.Info("stop")
	l.source.StopReceivingUpdates()
	cancel()
	drained := make(chan struct{})
	go func() {
		for range updates {
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Listener) loop(ctx context.Context, updates tgbotapi.UpdatesChannel, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				l.logger.Info("updates channel closed")
				return
			}
			l.handle(ctx, update)
		}
	}
}

func (l *Listener) handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	chatID := ""
	if msg.Chat != nil {
		chatID = strconv.FormatInt(msg.Chat.ID, 10)
	}
	l.logger.Info("inbound received",
		slog.String("chat_id", chatID),
		slog.Int64("user_id", msg.From.ID),
		slog.String("username", msg.From.UserName),
		slog.String("first_name", msg.From.FirstName),
		slog.String("text", summarize(text)),
	)
	if l.greeting == "" || l.greetChat == "" {
		return
	}
	if err := l.sender.SendText(ctx, l.greetChat, l.greeting); err != nil {
		l.logger.Warn("greeting failed", slog.String("target", l.greetChat), slog.Any("error", err))
	}
}

func summarize(text string) string {
	if utf8.RuneCountInString(text) <= summaryRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:summaryRunes]) + "..."
}
