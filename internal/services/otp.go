package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/gateway"
	"github.com/asabsob/trustedlinks/internal/models"
	"github.com/asabsob/trustedlinks/internal/phone"
	"github.com/asabsob/trustedlinks/internal/storage"
	"github.com/asabsob/trustedlinks/internal/utils"
)

// ErrPhoneAlreadyRegistered means the number is already bound to a business;
// the UI routes the user to login instead of another OTP attempt.
var ErrPhoneAlreadyRegistered = errors.New("phone number already registered")

// ErrNoPendingOTP is returned by ResendOTP when there is nothing to resend.
var ErrNoPendingOTP = errors.New("no pending OTP request for this number")

// OTPService orchestrates the request/verify flow: phone normalization,
// duplicate-registration guard, code issuance and consumption.
type OTPService struct {
	store      storage.Store
	gw         gateway.Gateway
	proof      *ProofIssuer
	ttl        time.Duration
	codeLength int
	log        zerolog.Logger
}

// NewOTPService creates the OTP orchestrator.
func NewOTPService(store storage.Store, gw gateway.Gateway, proof *ProofIssuer, ttl time.Duration, codeLength int, log zerolog.Logger) *OTPService {
	return &OTPService{
		store:      store,
		gw:         gw,
		proof:      proof,
		ttl:        ttl,
		codeLength: codeLength,
		log:        log,
	}
}

// RequestResult reports a successful OTP request. Code is populated only
// when the configured gateway is the simulated sender.
type RequestResult struct {
	Phone string
	Code  string
}

// RequestOTP normalizes the number, rejects numbers already bound to a
// business, then issues and sends a fresh code. Issuing replaces any prior
// pending code for the same (phone, purpose) — latest code wins. A send
// failure is reported to the caller but does not roll back the stored code,
// so a retry path always exists.
func (s *OTPService) RequestOTP(ctx context.Context, rawPhone, dialCode, purpose, locale string) (*RequestResult, error) {
	canonical, err := phone.Normalize(rawPhone, dialCode)
	if err != nil {
		return nil, err
	}
	if purpose == "" {
		purpose = models.OTPPurposeBusinessSignup
	}

	if err := s.guardDuplicate(ctx, canonical); err != nil {
		return nil, err
	}

	code, err := utils.GenerateCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := time.Now()
	otp := &models.OTP{
		Phone:     canonical,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.UpsertOTP(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	res, err := s.gw.SendOTP(ctx, canonical, code, locale)
	if err != nil {
		// The stored code stays valid; the caller may resend or request
		// a fresh one.
		s.log.Error().Err(err).Str("phone", canonical).Str("purpose", purpose).Msg("OTP send failed")
		return nil, err
	}

	out := &RequestResult{Phone: canonical}
	if res.Simulated {
		out.Code = code
	}
	s.log.Info().Str("phone", canonical).Str("purpose", purpose).Bool("simulated", res.Simulated).Msg("OTP issued")
	return out, nil
}

// ResendOTP regenerates the code for an existing pending request and sends
// it again. Unlike RequestOTP it refuses when no request is pending.
func (s *OTPService) ResendOTP(ctx context.Context, rawPhone, dialCode, purpose, locale string) (*RequestResult, error) {
	canonical, err := phone.Normalize(rawPhone, dialCode)
	if err != nil {
		return nil, err
	}
	if purpose == "" {
		purpose = models.OTPPurposeBusinessSignup
	}

	if _, err := s.store.GetOTP(ctx, canonical, purpose); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoPendingOTP
		}
		return nil, fmt.Errorf("failed to look up OTP: %w", err)
	}

	code, err := utils.GenerateCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := time.Now()
	otp := &models.OTP{
		Phone:     canonical,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.UpsertOTP(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	res, err := s.gw.SendOTP(ctx, canonical, code, locale)
	if err != nil {
		s.log.Error().Err(err).Str("phone", canonical).Str("purpose", purpose).Msg("OTP resend failed")
		return nil, err
	}

	out := &RequestResult{Phone: canonical}
	if res.Simulated {
		out.Code = code
	}
	return out, nil
}

// VerifyResult is the caller-facing outcome of VerifyOTP.
type VerifyResult struct {
	OK     bool
	Reason models.VerifyReason
	Phone  string
	// Proof is a short-lived signed token handed to the business-creation
	// step as evidence of phone possession.
	Proof string
}

// VerifyOTP normalizes the number, re-checks the duplicate guard (a
// registration may have completed between request and verify), then
// consumes the pending code.
func (s *OTPService) VerifyOTP(ctx context.Context, rawPhone, dialCode, purpose, suppliedCode string) (*VerifyResult, error) {
	canonical, err := phone.Normalize(rawPhone, dialCode)
	if err != nil {
		return nil, err
	}
	if purpose == "" {
		purpose = models.OTPPurposeBusinessSignup
	}

	if err := s.guardDuplicate(ctx, canonical); err != nil {
		return nil, err
	}

	result, err := s.consume(ctx, canonical, purpose, suppliedCode)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return &VerifyResult{OK: false, Reason: result.Reason, Phone: canonical}, nil
	}

	proof, err := s.proof.Issue(canonical, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to issue proof token: %w", err)
	}

	s.log.Info().Str("phone", canonical).Str("purpose", purpose).Msg("OTP verified")
	return &VerifyResult{OK: true, Phone: canonical, Proof: proof}, nil
}

// consume applies the one-shot OTP semantics against the store:
//   - no record            → NO_OTP
//   - wrong code           → BAD_CODE, record kept for retry within TTL
//   - right code, expired  → EXPIRED, record deleted
//   - right code, in time  → ok, record deleted
func (s *OTPService) consume(ctx context.Context, canonicalPhone, purpose, suppliedCode string) (*models.VerificationResult, error) {
	rec, err := s.store.GetOTP(ctx, canonicalPhone, purpose)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.VerificationResult{OK: false, Reason: models.VerifyReasonNoOTP}, nil
		}
		return nil, fmt.Errorf("failed to look up OTP: %w", err)
	}

	if rec.Code != suppliedCode {
		return &models.VerificationResult{OK: false, Reason: models.VerifyReasonBadCode}, nil
	}

	if rec.Expired(time.Now()) {
		if err := s.store.DeleteOTP(ctx, canonicalPhone, purpose); err != nil {
			return nil, fmt.Errorf("failed to delete expired OTP: %w", err)
		}
		return &models.VerificationResult{OK: false, Reason: models.VerifyReasonExpired}, nil
	}

	if err := s.store.DeleteOTP(ctx, canonicalPhone, purpose); err != nil {
		return nil, fmt.Errorf("failed to consume OTP: %w", err)
	}
	return &models.VerificationResult{OK: true, Phone: canonicalPhone}, nil
}

func (s *OTPService) guardDuplicate(ctx context.Context, canonicalPhone string) error {
	_, err := s.store.GetBusinessByPhone(ctx, canonicalPhone)
	if err == nil {
		return ErrPhoneAlreadyRegistered
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check existing registration: %w", err)
}
