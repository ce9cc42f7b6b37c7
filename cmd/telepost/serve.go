package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/telepost/internal/config"
	"github.com/memohai/telepost/internal/dispatch"
	"github.com/memohai/telepost/internal/handlers"
	"github.com/memohai/telepost/internal/logger"
	"github.com/memohai/telepost/internal/media"
	"github.com/memohai/telepost/internal/media/providers/spool"
	"github.com/memohai/telepost/internal/server"
	"github.com/memohai/telepost/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when enabled, the bot update listener",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fx.New(
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideMediaService,
			provideBot,
			provideGateway,
			provideDispatchService,
			provideServerHandler(handlers.NewSystemHandler),
			provideServerHandler(handlers.NewSendHandler),
			provideServer,
		),
		fx.Invoke(
			startListener,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
	return nil
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideLogger() *slog.Logger {
	return logger.L
}

func provideMediaService(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*media.Service, error) {
	provider, err := spool.New(cfg.Media.SpoolDir)
	if err != nil {
		return nil, fmt.Errorf("init media provider: %w", err)
	}
	svc := media.NewService(log, provider, cfg.Media.LocalRoot, cfg.Media.MaxUploadBytes)
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return svc.Close() }})
	return svc, nil
}

func provideBot(cfg config.Config) (*tgbotapi.BotAPI, error) {
	return telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint)
}

func provideGateway(log *slog.Logger, bot *tgbotapi.BotAPI, cfg config.Config) *telegram.Gateway {
	return telegram.NewGateway(log, bot, cfg.Telegram.ParseMode)
}

func provideDispatchService(log *slog.Logger, gateway *telegram.Gateway, mediaService *media.Service, cfg config.Config) *dispatch.Service {
	return newDispatchService(log, gateway, mediaService, cfg)
}

func newDispatchService(log *slog.Logger, gateway dispatch.Gateway, mediaService *media.Service, cfg config.Config) *dispatch.Service {
	var spooler dispatch.Spooler
	if cfg.Media.SpoolBinary && mediaService != nil {
		spooler = mediaService
	}
	return dispatch.NewService(log, gateway, spooler, cfg.Telegram.DefaultChatID)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startListener(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, bot *tgbotapi.BotAPI, gateway *telegram.Gateway, dispatchService *dispatch.Service) {
	if !cfg.Telegram.PollUpdates {
		return
	}
	listener := telegram.NewListener(log, bot, gateway, cfg.Telegram.Greeting, dispatchService.DefaultChatID())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return listener.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return listener.Stop(ctx) },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting telepost", slog.String("version", Version), slog.String("addr", cfg.Server.Addr))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
