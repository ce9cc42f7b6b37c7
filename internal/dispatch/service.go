package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/memohai/telepost/internal/markup"
	"github.com/memohai/telepost/internal/media"
)

// Service turns rich text into Telegram sends for one chat per request.
type Service struct {
	defaultChatID string
	planner       Planner
	executor      *Executor
	logger        *slog.Logger
}

// NewService creates a dispatch service. defaultChatID is used whenever a request names no chat.
func NewService(log *slog.Logger, gateway Gateway, spooler Spooler, defaultChatID string) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		defaultChatID: strings.TrimSpace(defaultChatID),
		executor:      NewExecutor(log, gateway, spooler),
		logger:        log.With(slog.String("service", "dispatch")),
	}
}

// DefaultChatID returns the configured fallback chat.
func (s *Service) DefaultChatID() string {
	return s.defaultChatID
}

// ResolveTarget returns chat, or the default chat when chat is blank. The result
// must be an @channel username or a signed integer chat id.
func (s *Service) ResolveTarget(chat string) (string, error) {
	target := strings.TrimSpace(chat)
	if target == "" {
		target = s.defaultChatID
	}
	if target == "" {
		return "", fmt.Errorf("%w: no chat id given and no default configured", ErrInvalidTarget)
	}
	if strings.HasPrefix(target, "@") {
		if len(target) == 1 {
			return "", fmt.Errorf("%w: empty channel username", ErrInvalidTarget)
		}
		return target, nil
	}
	if _, err := strconv.ParseInt(target, 10, 64); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return target, nil
}

// SendRichText sends rich text, choosing between video, image and text sends by its content.
// The error is non-nil only when the target is invalid; send failures live in the Result.
func (s *Service) SendRichText(ctx context.Context, chat, rich string) (Result, error) {
	target, err := s.ResolveTarget(chat)
	if err != nil {
		return Result{}, err
	}
	caption := markup.Normalize(rich)
	extracted := markup.Extract(rich)
	s.logger.Debug("rich text received",
		slog.String("target", target),
		slog.Int("images", len(extracted.Images)),
		slog.Int("videos", len(extracted.Videos)),
	)
	plan := s.planner.Plan(caption, extracted.Videos, extracted.Images, target)
	return s.executor.Execute(ctx, plan), nil
}

// SendPhoto sends one photo from a data:image URL, an http(s) URL, or a local path
// that the caller has already confined to the media root.
func (s *Service) SendPhoto(ctx context.Context, chat, source, rich string) (Result, error) {
	target, err := s.ResolveTarget(chat)
	if err != nil {
		return Result{}, err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return Result{}, fmt.Errorf("%w: photo path", ErrMissingSource)
	}
	plan := s.planner.PlanPhoto(markup.Normalize(rich), source, target)
	return s.executor.Execute(ctx, plan), nil
}

// SendPhotoByURL sends one photo by URL.
func (s *Service) SendPhotoByURL(ctx context.Context, chat, url, rich string) (Result, error) {
	target, err := s.ResolveTarget(chat)
	if err != nil {
		return Result{}, err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, fmt.Errorf("%w: image url", ErrMissingSource)
	}
	plan := s.planner.PlanPhotoURL(markup.Normalize(rich), url, target)
	return s.executor.Execute(ctx, plan), nil
}

// SendGrid sends uploaded media: the video first, then the images as one group.
// The caller owns the artifacts and releases them afterwards.
func (s *Service) SendGrid(ctx context.Context, chat, rich string, video *media.Artifact, images []media.Artifact) (Result, error) {
	target, err := s.ResolveTarget(chat)
	if err != nil {
		return Result{}, err
	}
	plan := s.planner.PlanGrid(markup.Normalize(rich), target, video, images)
	return s.executor.Execute(ctx, plan), nil
}
