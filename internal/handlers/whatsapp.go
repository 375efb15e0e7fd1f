package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/gateway"
	"github.com/asabsob/trustedlinks/internal/models"
	"github.com/asabsob/trustedlinks/internal/phone"
	"github.com/asabsob/trustedlinks/internal/services"
)

// Stable machine-readable reason codes surfaced to the UI.
const (
	ReasonInvalidPhone      = "invalid_phone"
	ReasonMissingCode       = "missing_code"
	ReasonAlreadyRegistered = "phone_already_registered"
	ReasonSendFailed        = "send_failed"
	ReasonStorageError      = "storage_error"
)

// WhatsAppHandler exposes the OTP request/verify/resend endpoints.
type WhatsAppHandler struct {
	otp *services.OTPService
	log zerolog.Logger
}

// NewWhatsAppHandler creates a new WhatsApp OTP handler.
func NewWhatsAppHandler(otp *services.OTPService, log zerolog.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{otp: otp, log: log}
}

type otpRequest struct {
	Phone    string `json:"phone"`
	DialCode string `json:"dialCode"`
	Purpose  string `json:"purpose"`
	Locale   string `json:"locale"`
	Code     string `json:"code"`
}

// RequestOTP issues and sends a fresh verification code.
func (h *WhatsAppHandler) RequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	result, err := h.otp.RequestOTP(c.Context(), req.Phone, req.DialCode, req.Purpose, req.Locale)
	if err != nil {
		return h.sendError(c, err)
	}

	resp := fiber.Map{"success": true, "message": "OTP sent successfully."}
	if result.Code != "" {
		// Simulated mode only; never reached with a live provider.
		resp["code"] = result.Code
	}
	return c.JSON(resp)
}

// ResendOTP regenerates the code for an existing pending request.
func (h *WhatsAppHandler) ResendOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	result, err := h.otp.ResendOTP(c.Context(), req.Phone, req.DialCode, req.Purpose, req.Locale)
	if err != nil {
		if errors.Is(err, services.ErrNoPendingOTP) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "No OTP request found. Please request OTP first.",
				"reason":  string(models.VerifyReasonNoOTP),
			})
		}
		return h.sendError(c, err)
	}

	resp := fiber.Map{"success": true, "message": "OTP resent successfully."}
	if result.Code != "" {
		resp["code"] = result.Code
	}
	return c.JSON(resp)
}

// VerifyOTP consumes a pending code and returns the verification proof on
// success.
func (h *WhatsAppHandler) VerifyOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Verification code is required",
			"reason":  ReasonMissingCode,
		})
	}

	result, err := h.otp.VerifyOTP(c.Context(), req.Phone, req.DialCode, req.Purpose, req.Code)
	if err != nil {
		return h.sendError(c, err)
	}

	if !result.OK {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   verifyFailureMessage(result.Reason),
			"reason":  string(result.Reason),
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"verifiedPhone": result.Phone,
		"proof":         result.Proof,
	})
}

func verifyFailureMessage(reason models.VerifyReason) string {
	switch reason {
	case models.VerifyReasonNoOTP:
		return "No verification code is pending for this number. Please request a new code."
	case models.VerifyReasonBadCode:
		return "Incorrect code. Please try again."
	case models.VerifyReasonExpired:
		return "The code has expired. Please request a new one."
	default:
		return "Verification failed."
	}
}

// sendError converts service and gateway errors into the caller-facing
// contract. Provider payloads never reach the response body.
func (h *WhatsAppHandler) sendError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, phone.ErrInvalidPhone):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "A valid WhatsApp number is required",
			"reason":  ReasonInvalidPhone,
		})
	case errors.Is(err, services.ErrPhoneAlreadyRegistered):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "This WhatsApp number is already registered.",
			"reason":  ReasonAlreadyRegistered,
		})
	}

	var rejected *gateway.RejectedError
	var unreachable *gateway.UnreachableError
	if errors.Is(err, gateway.ErrUnconfigured) || errors.As(err, &rejected) || errors.As(err, &unreachable) {
		// Raw provider responses were already logged by the gateway.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send OTP message. Please try again.",
			"reason":  ReasonSendFailed,
		})
	}

	h.log.Error().Err(err).Msg("OTP operation failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Server error",
		"reason":  ReasonStorageError,
	})
}
