package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/storage"
)

// AnalyticsHandler exposes the admin dashboard counters.
type AnalyticsHandler struct {
	store storage.Store
	log   zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(store storage.Store, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{store: store, log: log}
}

// Stats returns directory-wide business counts and view totals.
func (h *AnalyticsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.GetDirectoryStats(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute directory stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}
	return c.JSON(stats)
}
