package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/opengemeente/klantsync/internal/domain"
)

// Enqueuer publishes an accepted notification to the durable queue.
// Implementation lives in internal/kafka.
type Enqueuer interface {
	Enqueue(ctx context.Context, hash string, payload []byte) error
}

// Handler holds the webhook HTTP handlers.
type Handler struct {
	queue     Enqueuer
	zakenRoot string
}

// NewHandler creates a new Handler.
func NewHandler(queue Enqueuer, zakenRoot string) *Handler {
	return &Handler{queue: queue, zakenRoot: zakenRoot}
}

// Notificatie POST /api/v1/notificaties — the webhook endpoint called by the
// notificaties service. The caller retries any non-2xx response forever, so
// ineligible notifications are acknowledged with 200 and simply not enqueued;
// only a malformed body earns a 400.
func (h *Handler) Notificatie(c echo.Context) error {
	var n domain.Notificatie
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed notificatie body")
	}
	if n.Kanaal == "" || n.HoofdObject == "" || n.Resource == "" || n.Actie == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "notificatie misses required fields")
	}

	if issues := n.RegistrationIssues(h.zakenRoot); len(issues) > 0 {
		log.Debug().Strs("issues", issues).Str("resource", n.Resource).Msg("notificatie ignored")
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return echo.ErrInternalServerError
	}

	hash := n.ContentHash()
	if err := h.queue.Enqueue(c.Request().Context(), hash, payload); err != nil {
		log.Error().Err(err).Str("hash", hash).Msg("failed to enqueue notificatie")
		return echo.ErrInternalServerError
	}

	log.Info().Str("hash", hash).Str("rol", n.ResourceURL).Msg("notificatie accepted")
	return c.JSON(http.StatusOK, map[string]string{"status": "accepted"})
}

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
