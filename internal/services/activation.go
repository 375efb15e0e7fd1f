package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/models"
	"github.com/asabsob/trustedlinks/internal/storage"
)

// ActivationService turns a successful OTP verification into a live (or
// review-pending) business record. It is the only code path that sets
// otpVerified and the post-verification status.
type ActivationService struct {
	store storage.Store
	proof *ProofIssuer
	// requireMetaReview is a deployment policy switch: when set, newly
	// activated businesses land in PendingMeta until the platform-level
	// review passes, instead of going straight to Active.
	requireMetaReview bool
	log               zerolog.Logger
}

// NewActivationService creates the activation service.
func NewActivationService(store storage.Store, proof *ProofIssuer, requireMetaReview bool, log zerolog.Logger) *ActivationService {
	return &ActivationService{
		store:             store,
		proof:             proof,
		requireMetaReview: requireMetaReview,
		log:               log,
	}
}

// ActivationInput is the business draft submitted together with the
// verification proof after plan selection.
type ActivationInput struct {
	Proof string `json:"proof"`
	Plan  string `json:"plan"`

	NameEn        string   `json:"nameEn"`
	NameAr        string   `json:"nameAr"`
	DescriptionEn string   `json:"descEn"`
	DescriptionAr string   `json:"descAr"`
	AddressEn     string   `json:"addressEn"`
	AddressAr     string   `json:"addressAr"`
	Category      []string `json:"category"`
	MediaLink     string   `json:"mediaLink"`
	MapLink       string   `json:"mapLink"`
}

// Activate validates the proof, then creates the business bound to the
// verified phone or converges an existing record for that phone to the same
// verified state. Calling it again with the same proof phone is not an
// error.
func (s *ActivationService) Activate(ctx context.Context, in *ActivationInput) (*models.Business, error) {
	canonical, err := s.proof.Verify(in.Proof)
	if err != nil {
		return nil, err
	}
	if in.Plan == "" {
		return nil, fmt.Errorf("plan is required")
	}

	existing, err := s.store.GetBusinessByPhone(ctx, canonical)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up business: %w", err)
	}

	if existing != nil {
		s.applyVerifiedPhone(existing, canonical)
		s.applyDraft(existing, in)
		if err := s.store.UpdateBusiness(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update business: %w", err)
		}
		s.log.Info().Str("business_id", existing.ID).Str("phone", canonical).Msg("business re-activated")
		return existing, nil
	}

	now := time.Now()
	b := &models.Business{
		ID:              uuid.NewString(),
		Plan:            in.Plan,
		PlanActivatedAt: &now,
	}
	s.applyVerifiedPhone(b, canonical)
	s.applyDraft(b, in)

	created, err := s.store.CreateBusiness(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}
	s.log.Info().Str("business_id", created.ID).Str("phone", canonical).Str("status", string(created.Status)).Msg("business activated")
	return created, nil
}

// applyVerifiedPhone attaches the verified contact metadata and the
// resulting status. Idempotent: a second application with the same phone
// converges to the same state.
func (s *ActivationService) applyVerifiedPhone(b *models.Business, canonicalPhone string) {
	b.Whatsapp = canonicalPhone
	b.WhatsappLink = models.WhatsAppLink(canonicalPhone)
	b.OTPVerified = true
	if s.requireMetaReview && !b.MetaVerified {
		b.Status = models.StatusPendingMeta
	} else {
		b.Status = models.StatusActive
	}
}

func (s *ActivationService) applyDraft(b *models.Business, in *ActivationInput) {
	nameEn := strings.TrimSpace(in.NameEn)
	nameAr := strings.TrimSpace(in.NameAr)

	if nameEn != "" || nameAr != "" || b.Name == "" {
		b.Name = firstNonEmpty(nameEn, nameAr, b.Name, "My Business")
		b.NameAr = nameAr
	}
	if in.DescriptionEn != "" {
		b.Description = in.DescriptionEn
	}
	if in.DescriptionAr != "" {
		b.DescriptionAr = in.DescriptionAr
	}
	if in.AddressEn != "" {
		b.Address = in.AddressEn
	}
	if in.AddressAr != "" {
		b.AddressAr = in.AddressAr
	}
	if len(in.Category) > 0 {
		b.Category = in.Category
	} else if len(b.Category) == 0 {
		b.Category = []string{"General"}
	}
	if in.MediaLink != "" {
		b.MediaLink = strings.TrimSpace(in.MediaLink)
	}
	if link := strings.TrimSpace(in.MapLink); strings.HasPrefix(link, "http") {
		b.MapLink = link
	}
	if in.Plan != "" {
		if b.Plan != in.Plan {
			now := time.Now()
			b.PlanActivatedAt = &now
		}
		b.Plan = in.Plan
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
