package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memohai/telepost/internal/logger"
	"github.com/memohai/telepost/internal/media"
	"github.com/memohai/telepost/internal/media/providers/spool"
	"github.com/memohai/telepost/internal/telegram"
)

var (
	sendChat string
	sendJSON bool
)

var sendCmd = &cobra.Command{
	Use:   "send [file]",
	Short: "Send rich text from a file or stdin",
	Long: "Send rich text from a file, or from stdin when no file is given.\n" +
		"Embedded videos and images decide how the message is sent, the same way /sendTextOnly does.",
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendChat, "chat", "", "target chat id or @channel (default from config)")
	sendCmd.Flags().BoolVar(&sendJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var input io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		input = f
	}
	rich, err := media.ReadRichText(input, cfg.Media.MaxUploadBytes)
	if err != nil {
		return err
	}

	bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint)
	if err != nil {
		return err
	}
	provider, err := spool.New(cfg.Media.SpoolDir)
	if err != nil {
		return fmt.Errorf("init media provider: %w", err)
	}
	mediaService := media.NewService(logger.L, provider, cfg.Media.LocalRoot, cfg.Media.MaxUploadBytes)
	defer mediaService.Close()

	gateway := telegram.NewGateway(logger.L, bot, cfg.Telegram.ParseMode)
	svc := newDispatchService(logger.L, gateway, mediaService, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, err := svc.SendRichText(ctx, sendChat, rich)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sendJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, res.Status())
	}
	if !res.OK() {
		return fmt.Errorf("dispatch failed: %w", res.Err)
	}
	return nil
}
