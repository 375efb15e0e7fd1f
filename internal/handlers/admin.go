package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/asabsob/trustedlinks/internal/models"
	"github.com/asabsob/trustedlinks/internal/storage"
)

// AdminHandler handles the admin login and notification broadcast surface.
type AdminHandler struct {
	store         storage.Store
	jwtSecret     []byte
	adminEmail    string
	adminPassword string
	log           zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store storage.Store, jwtSecret, adminEmail, adminPassword string, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:         store,
		jwtSecret:     []byte(jwtSecret),
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		log:           log,
	}
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login issues a short-lived admin JWT. ADMIN_PASSWORD may be stored as a
// bcrypt hash; a plain value is compared directly.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email != h.adminEmail || h.adminPassword == "" || !h.passwordMatches(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"email": req.Email,
		"role":  "admin",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to sign admin token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}

	return c.JSON(fiber.Map{"token": token})
}

func (h *AdminHandler) passwordMatches(supplied string) bool {
	if strings.HasPrefix(h.adminPassword, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(h.adminPassword), []byte(supplied)) == nil
	}
	return supplied == h.adminPassword
}

type notificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CreateNotification stores a new admin announcement.
func (h *AdminHandler) CreateNotification(c *fiber.Ctx) error {
	var req notificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and message required",
		})
	}

	note, err := h.store.CreateNotification(c.Context(), &models.Notification{
		ID:      uuid.NewString(),
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create notification")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create notification",
		})
	}

	return c.JSON(fiber.Map{"ok": true, "note": note})
}

// ListNotifications returns all announcements, newest first.
func (h *AdminHandler) ListNotifications(c *fiber.Ctx) error {
	notes, err := h.store.ListNotifications(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list notifications")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load notifications",
		})
	}
	return c.JSON(notes)
}
