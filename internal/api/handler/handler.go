package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"civictracker/backend/internal/complaint"
	"civictracker/backend/internal/feed"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/snapshot"

	"github.com/gin-gonic/gin"
)

// Snapshots is the read side the handlers filter and summarize.
type Snapshots interface {
	Get(ctx context.Context) (*snapshot.Snapshot, error)
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

// Handler serves the complaint API.
type Handler struct {
	Manager   *complaint.Manager
	Snapshots Snapshots
	Hub       *feed.Hub

	allowedOrigins []string
	logger         *slog.Logger
	now            func() time.Time
}

func NewHandler(m *complaint.Manager, snaps Snapshots, hub *feed.Hub, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		Manager:        m,
		Snapshots:      snaps,
		Hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With("component", "api"),
		now:            time.Now,
	}
}

// errorResponse pairs a generic notice with the specific diagnostic message.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrUpload):
		return http.StatusBadGateway, "image upload failed"
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, notice := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: notice, Detail: err.Error()})
}

func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &models.ValidationError{Field: "id", Value: raw}
	}
	return uint(id), nil
}

// Health reports whether the store answers.
func (h *Handler) Health(c *gin.Context) {
	if err := h.Manager.Storage.Ping(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
