package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/models"
	"github.com/asabsob/trustedlinks/internal/storage"
)

func newTestActivation(store storage.Store, requireMetaReview bool) (*ActivationService, *ProofIssuer) {
	issuer := NewProofIssuer("test_secret")
	return NewActivationService(store, issuer, requireMetaReview, zerolog.Nop()), issuer
}

func TestActivateCreatesBusiness(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, issuer := newTestActivation(store, false)

	proof, err := issuer.Issue("962791234567", models.OTPPurposeBusinessSignup)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	b, err := svc.Activate(ctx, &ActivationInput{
		Proof:    proof,
		Plan:     "p2",
		NameEn:   "Amman Bakery",
		NameAr:   "مخبز عمان",
		Category: []string{"Food"},
	})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if b.ID == "" {
		t.Error("expected generated business ID")
	}
	if b.Whatsapp != "962791234567" {
		t.Errorf("expected verified phone bound, got %s", b.Whatsapp)
	}
	if b.WhatsappLink != "https://wa.me/962791234567" {
		t.Errorf("unexpected wa.me link %s", b.WhatsappLink)
	}
	if !b.OTPVerified {
		t.Error("expected otpVerified set by activation")
	}
	if b.Status != models.StatusActive {
		t.Errorf("expected Active status, got %s", b.Status)
	}
	if b.Plan != "p2" || b.PlanActivatedAt == nil {
		t.Errorf("expected plan p2 with activation time, got %s %v", b.Plan, b.PlanActivatedAt)
	}
}

func TestActivateIsIdempotentPerPhone(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, issuer := newTestActivation(store, false)

	proof, err := issuer.Issue("962791234567", models.OTPPurposeBusinessSignup)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	first, err := svc.Activate(ctx, &ActivationInput{Proof: proof, Plan: "p1", NameEn: "Amman Bakery"})
	if err != nil {
		t.Fatalf("first Activate failed: %v", err)
	}
	second, err := svc.Activate(ctx, &ActivationInput{Proof: proof, Plan: "p1", DescriptionEn: "Fresh bread daily"})
	if err != nil {
		t.Fatalf("second Activate failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-activation must converge on the same record, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Amman Bakery" {
		t.Errorf("existing name should survive a draft without one, got %q", second.Name)
	}
	if second.Description != "Fresh bread daily" {
		t.Errorf("draft description should merge in, got %q", second.Description)
	}

	all, err := store.ListActiveBusinesses(ctx)
	if err != nil {
		t.Fatalf("ListActiveBusinesses failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly one business for the phone, got %d", len(all))
	}
}

func TestActivateRejectsBadProof(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestActivation(storage.NewMemoryStore(), false)

	_, err := svc.Activate(ctx, &ActivationInput{Proof: "forged.token.value", Plan: "p1"})
	if !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("expected ErrInvalidProof, got %v", err)
	}

	// A token signed with another key is just as invalid.
	foreign, err := NewProofIssuer("attacker_secret").Issue("962791234567", models.OTPPurposeBusinessSignup)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	_, err = svc.Activate(ctx, &ActivationInput{Proof: foreign, Plan: "p1"})
	if !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("expected ErrInvalidProof for foreign signature, got %v", err)
	}
}

func TestActivateRequiresPlan(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newTestActivation(storage.NewMemoryStore(), false)

	proof, err := issuer.Issue("962791234567", models.OTPPurposeBusinessSignup)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.Activate(ctx, &ActivationInput{Proof: proof}); err == nil {
		t.Fatal("expected error for missing plan")
	}
}

func TestActivateMetaReviewPolicy(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, issuer := newTestActivation(store, true)

	proof, err := issuer.Issue("962791234567", models.OTPPurposeBusinessSignup)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	b, err := svc.Activate(ctx, &ActivationInput{Proof: proof, Plan: "p1", NameEn: "Amman Bakery"})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if b.Status != models.StatusPendingMeta {
		t.Fatalf("expected PendingMeta under review policy, got %s", b.Status)
	}

	// Once the platform review passes, re-activation promotes to Active.
	b.MetaVerified = true
	if err := store.UpdateBusiness(ctx, b); err != nil {
		t.Fatalf("UpdateBusiness failed: %v", err)
	}
	again, err := svc.Activate(ctx, &ActivationInput{Proof: proof, Plan: "p1"})
	if err != nil {
		t.Fatalf("re-Activate failed: %v", err)
	}
	if again.Status != models.StatusActive {
		t.Errorf("expected Active after meta review, got %s", again.Status)
	}
}

func TestActivateDraftDefaults(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newTestActivation(storage.NewMemoryStore(), false)

	proof, err := issuer.Issue("962791234567", models.OTPPurposeBusinessSignup)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	b, err := svc.Activate(ctx, &ActivationInput{Proof: proof, Plan: "p1", MapLink: "javascript:alert(1)"})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if b.Name != "My Business" {
		t.Errorf("expected placeholder name, got %q", b.Name)
	}
	if len(b.Category) != 1 || b.Category[0] != "General" {
		t.Errorf("expected General category default, got %v", b.Category)
	}
	if b.MapLink != "" {
		t.Errorf("non-http map link must be dropped, got %q", b.MapLink)
	}
}
