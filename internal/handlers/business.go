package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/services"
	"github.com/asabsob/trustedlinks/internal/storage"
)

// BusinessHandler exposes activation and the public listing/search surface.
type BusinessHandler struct {
	activation *services.ActivationService
	store      storage.Store
	log        zerolog.Logger
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(activation *services.ActivationService, store storage.Store, log zerolog.Logger) *BusinessHandler {
	return &BusinessHandler{activation: activation, store: store, log: log}
}

// Activate applies a plan selection together with a verification proof,
// creating or updating the business bound to the verified number.
func (h *BusinessHandler) Activate(c *fiber.Ctx) error {
	var in services.ActivationInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if in.Proof == "" || in.Plan == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing proof or plan",
		})
	}

	business, err := h.activation.Activate(c.Context(), &in)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProof) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Verification proof is invalid or expired. Please verify your number again.",
			})
		}
		h.log.Error().Err(err).Msg("business activation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to activate plan",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"plan":     business.Plan,
		"business": business,
	})
}

// List returns all active businesses.
func (h *BusinessHandler) List(c *fiber.Ctx) error {
	businesses, err := h.store.ListActiveBusinesses(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list businesses")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load businesses",
		})
	}
	return c.JSON(businesses)
}

// Search filters active businesses by keyword and category.
func (h *BusinessHandler) Search(c *fiber.Ctx) error {
	results, err := h.store.SearchBusinesses(c.Context(), c.Query("query"), c.Query("category", "all"))
	if err != nil {
		h.log.Error().Err(err).Msg("search failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to perform search",
		})
	}
	return c.JSON(results)
}

// Get returns a single business by ID.
func (h *BusinessHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	business, err := h.store.GetBusiness(c.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business not found",
			})
		}
		h.log.Error().Err(err).Str("business_id", id).Msg("failed to load business")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
	// Best effort; a lost increment never blocks the page.
	if err := h.store.IncrementBusinessViews(c.Context(), id); err != nil {
		h.log.Warn().Err(err).Str("business_id", id).Msg("failed to count view")
	} else {
		business.Views++
	}
	return c.JSON(business)
}

// Plans returns the public subscription plan list.
func (h *BusinessHandler) Plans(c *fiber.Ctx) error {
	return c.JSON([]fiber.Map{
		{"id": "p1", "name": "Free", "price": 0, "period": "mo"},
		{"id": "p2", "name": "Pro", "price": 15, "period": "mo"},
		{"id": "p3", "name": "Enterprise", "price": 49, "period": "mo"},
	})
}
