package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/telepost/internal/dispatch"
	"github.com/memohai/telepost/internal/media"
)

// ErrorResponse is the body echo writes for an *echo.HTTPError.
type ErrorResponse struct {
	Message string `json:"message"`
}

type DefaultsResponse struct {
	ChatID string `json:"chatId"`
}

// SystemHandler serves liveness, defaults and the local media folder listing.
type SystemHandler struct {
	dispatch *dispatch.Service
	media    *media.Service
	logger   *slog.Logger
}

func NewSystemHandler(log *slog.Logger, dispatchService *dispatch.Service, mediaService *media.Service) *SystemHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SystemHandler{
		dispatch: dispatchService,
		media:    mediaService,
		logger:   log.With(slog.String("handler", "system")),
	}
}

func (h *SystemHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.HEAD("/health", h.PingHead)
	e.GET("/api/defaults", h.Defaults)
	e.GET("/api/getFolderFiles", h.FolderFiles)
	e.POST("/api/getFolderFiles", h.FolderFiles)
}

func (h *SystemHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *SystemHandler) PingHead(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Defaults godoc
// @Summary Get the default target chat
// @Tags system
// @Success 200 {object} DefaultsResponse
// @Router /api/defaults [get]
func (h *SystemHandler) Defaults(c echo.Context) error {
	return c.JSON(http.StatusOK, DefaultsResponse{ChatID: h.dispatch.DefaultChatID()})
}

// FolderFiles godoc
// @Summary List image files in a local folder
// @Description folderPath is relative to, or inside, the local media root
// @Tags system
// @Param folderPath query string true "Folder path"
// @Success 200 {array} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/getFolderFiles [get]
func (h *SystemHandler) FolderFiles(c echo.Context) error {
	folder := c.QueryParam("folderPath")
	if folder == "" {
		folder = c.FormValue("folderPath")
	}
	names, err := h.media.ListImages(folder)
	if err != nil {
		if errors.Is(err, media.ErrPathTraversal) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("list folder failed", slog.String("folder", folder), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, names)
}
