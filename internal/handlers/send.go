package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/memohai/telepost/internal/auth"
	"github.com/memohai/telepost/internal/dispatch"
	"github.com/memohai/telepost/internal/media"
)

// SendHandler exposes the dispatch operations over HTTP.
type SendHandler struct {
	dispatch *dispatch.Service
	media    *media.Service
	logger   *slog.Logger
}

type SendPhotoRequest struct {
	ChatID    string `json:"chatId"`
	PhotoPath string `json:"photoPath" validate:"required"`
	Caption   string `json:"caption"`
}

type SendPhotoByURLRequest struct {
	ChatID   string `json:"chatId"`
	ImageURL string `json:"imageUrl" validate:"required"`
	Caption  string `json:"caption"`
}

type SendTextRequest struct {
	ChatID  string `json:"chatId"`
	Caption string `json:"caption" validate:"required"`
}

func NewSendHandler(log *slog.Logger, dispatchService *dispatch.Service, mediaService *media.Service) *SendHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SendHandler{
		dispatch: dispatchService,
		media:    mediaService,
		logger:   log.With(slog.String("handler", "send")),
	}
}

func (h *SendHandler) Register(e *echo.Echo) {
	e.POST("/sendPhoto", h.SendPhoto)
	e.POST("/sendPhotoByUrl", h.SendPhotoByURL)
	e.POST("/sendTextOnly", h.SendTextOnly)
	e.POST("/sendGridContent", h.SendGridContent)
}

// SendPhoto godoc
// @Summary Send one photo
// @Description photoPath is a data:image URL, an http(s) URL, or a path under the local media root
// @Tags send
// @Param payload body SendPhotoRequest true "Photo payload"
// @Success 200 {string} string "status line"
// @Failure 400 {object} ErrorResponse
// @Failure 502 {string} string "status line"
// @Router /sendPhoto [post]
func (h *SendHandler) SendPhoto(c echo.Context) error {
	var req SendPhotoRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	source := strings.TrimSpace(req.PhotoPath)
	if media.IsDataURL(source) && !media.IsBinaryReference(source) {
		return echo.NewHTTPError(http.StatusBadRequest, "photoPath data URL must be data:image or data:video/")
	}
	if !media.IsBinaryReference(source) && !media.IsWebURL(source) {
		resolved, err := h.media.ResolveLocal(source)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		source = resolved
	}
	res, err := h.dispatch.SendPhoto(c.Request().Context(), req.ChatID, source, req.Caption)
	if err != nil {
		return dispatchError(err)
	}
	return h.respond(c, res)
}

// SendPhotoByURL godoc
// @Summary Send one photo by URL
// @Tags send
// @Param payload body SendPhotoByURLRequest true "Photo URL payload"
// @Success 200 {string} string "status line"
// @Failure 400 {object} ErrorResponse
// @Failure 502 {string} string "status line"
// @Router /sendPhotoByUrl [post]
func (h *SendHandler) SendPhotoByURL(c echo.Context) error {
	var req SendPhotoByURLRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	res, err := h.dispatch.SendPhotoByURL(c.Request().Context(), req.ChatID, req.ImageURL, req.Caption)
	if err != nil {
		return dispatchError(err)
	}
	return h.respond(c, res)
}

// SendTextOnly godoc
// @Summary Send rich text
// @Description Embedded videos and images in the caption decide how the message is sent
// @Tags send
// @Param payload body SendTextRequest true "Rich text payload"
// @Success 200 {string} string "status line"
// @Failure 400 {object} ErrorResponse
// @Failure 502 {string} string "status line"
// @Router /sendTextOnly [post]
func (h *SendHandler) SendTextOnly(c echo.Context) error {
	var req SendTextRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	res, err := h.dispatch.SendRichText(c.Request().Context(), req.ChatID, req.Caption)
	if err != nil {
		return dispatchError(err)
	}
	return h.respond(c, res)
}

// SendGridContent godoc
// @Summary Send uploaded media
// @Description The video goes first with the caption, then the images as one album
// @Tags send
// @Accept multipart/form-data
// @Param chatId formData string false "Target chat"
// @Param caption formData string false "Rich text caption"
// @Param images formData file false "Images"
// @Param video formData file false "Video"
// @Success 200 {string} string "status line"
// @Failure 400 {object} ErrorResponse
// @Failure 502 {string} string "status line"
// @Router /sendGridContent [post]
func (h *SendHandler) SendGridContent(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form is required")
	}
	chatID := firstValue(form.Value["chatId"])
	caption := firstValue(form.Value["caption"])
	ctx := c.Request().Context()
	if _, err := h.dispatch.ResolveTarget(chatID); err != nil {
		return dispatchError(err)
	}

	scope := uuid.NewString()
	var uploads []media.Artifact
	defer func() {
		h.media.Release(context.WithoutCancel(ctx), uploads...)
	}()

	var video *media.Artifact
	if files := nonEmpty(form.File["video"]); len(files) > 0 {
		art, err := h.spool(ctx, scope, media.MediaTypeVideo, files[0])
		if err != nil {
			return err
		}
		uploads = append(uploads, art)
		video = &art
	}
	var images []media.Artifact
	for _, file := range nonEmpty(form.File["images"]) {
		art, err := h.spool(ctx, scope, media.MediaTypeImage, file)
		if err != nil {
			return err
		}
		uploads = append(uploads, art)
		images = append(images, art)
	}

	res, err := h.dispatch.SendGrid(ctx, chatID, caption, video, images)
	if err != nil {
		return dispatchError(err)
	}
	return h.respond(c, res)
}

func (h *SendHandler) spool(ctx context.Context, scope string, mediaType media.MediaType, file *multipart.FileHeader) (media.Artifact, error) {
	if file.Size > h.media.MaxBytes() {
		return media.Artifact{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, media.ErrAssetTooLarge.Error())
	}
	src, err := file.Open()
	if err != nil {
		return media.Artifact{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()
	art, err := h.media.SpoolReader(ctx, scope, mediaType, file.Filename, src)
	if err != nil {
		if errors.Is(err, media.ErrAssetTooLarge) {
			return media.Artifact{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		}
		h.logger.Error("spool upload failed", slog.String("file", file.Filename), slog.Any("error", err))
		return media.Artifact{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return art, nil
}

func (h *SendHandler) respond(c echo.Context, res dispatch.Result) error {
	status := http.StatusOK
	attrs := []any{
		slog.String("target", res.Target),
		slog.String("strategy", string(res.Strategy)),
		slog.String("outcome", string(res.Outcome)),
	}
	if subject, err := auth.SubjectFromContext(c); err == nil {
		attrs = append(attrs, slog.String("caller", subject))
	}
	if res.OK() {
		h.logger.Info("dispatched", attrs...)
	} else {
		status = http.StatusBadGateway
		h.logger.Warn("dispatch failed", append(attrs, slog.Any("error", res.Err))...)
	}
	if wantsJSON(c) {
		return c.JSON(status, res)
	}
	return c.String(status, res.Status())
}

func bindRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func dispatchError(err error) error {
	switch {
	case errors.Is(err, dispatch.ErrInvalidTarget),
		errors.Is(err, dispatch.ErrMissingSource),
		errors.Is(err, media.ErrPathTraversal):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func nonEmpty(files []*multipart.FileHeader) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, len(files))
	for _, f := range files {
		if f != nil && f.Size > 0 {
			out = append(out, f)
		}
	}
	return out
}
