package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asabsob/trustedlinks/internal/models"
)

func newOTP(phone, purpose, code string, ttl time.Duration) *models.OTP {
	now := time.Now()
	return &models.OTP{
		Phone:     phone,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryStoreUpsertReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.UpsertOTP(ctx, newOTP("962791234567", "business_signup", "111111", time.Minute)); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.UpsertOTP(ctx, newOTP("962791234567", "business_signup", "222222", time.Minute)); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	rec, err := store.GetOTP(ctx, "962791234567", "business_signup")
	if err != nil {
		t.Fatalf("GetOTP failed: %v", err)
	}
	if rec.Code != "222222" {
		t.Errorf("expected latest code 222222, got %s", rec.Code)
	}
}

func TestMemoryStorePurposesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.UpsertOTP(ctx, newOTP("962791234567", "business_signup", "111111", time.Minute)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.UpsertOTP(ctx, newOTP("962791234567", "password_reset", "222222", time.Minute)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	signup, err := store.GetOTP(ctx, "962791234567", "business_signup")
	if err != nil {
		t.Fatalf("GetOTP failed: %v", err)
	}
	if signup.Code != "111111" {
		t.Errorf("signup purpose overwritten, got %s", signup.Code)
	}
}

func TestMemoryStoreDeleteOTP(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.UpsertOTP(ctx, newOTP("962791234567", "business_signup", "111111", time.Minute)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.DeleteOTP(ctx, "962791234567", "business_signup"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := store.GetOTP(ctx, "962791234567", "business_signup"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing record is not an error.
	if err := store.DeleteOTP(ctx, "962791234567", "business_signup"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestMemoryStoreDeleteExpiredOTPs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.UpsertOTP(ctx, newOTP("962791111111", "business_signup", "111111", -time.Minute)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.UpsertOTP(ctx, newOTP("962792222222", "business_signup", "222222", time.Minute)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	removed, err := store.DeleteExpiredOTPs(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpiredOTPs failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	if _, err := store.GetOTP(ctx, "962791111111", "business_signup"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired record should be gone, got %v", err)
	}
	if _, err := store.GetOTP(ctx, "962792222222", "business_signup"); err != nil {
		t.Errorf("live record should survive the sweep: %v", err)
	}
}

func TestMemoryStoreViewsAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seed := []*models.Business{
		{ID: "b1", Name: "Amman Bakery", Whatsapp: "962791111111", Status: models.StatusActive},
		{ID: "b2", Name: "Petra Tours", Whatsapp: "962792222222", Status: models.StatusPendingMeta},
		{ID: "b3", Name: "Hidden Shop", Whatsapp: "962793333333", Status: models.StatusSuspended},
	}
	for _, b := range seed {
		if _, err := store.CreateBusiness(ctx, b); err != nil {
			t.Fatalf("CreateBusiness failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		if err := store.IncrementBusinessViews(ctx, "b1"); err != nil {
			t.Fatalf("IncrementBusinessViews failed: %v", err)
		}
	}
	if err := store.IncrementBusinessViews(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown business, got %v", err)
	}

	stats, err := store.GetDirectoryStats(ctx)
	if err != nil {
		t.Fatalf("GetDirectoryStats failed: %v", err)
	}
	if stats.TotalBusinesses != 3 || stats.ActiveBusinesses != 1 || stats.PendingReview != 1 || stats.Suspended != 1 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.TotalViews != 3 {
		t.Errorf("expected 3 total views, got %d", stats.TotalViews)
	}
}

func TestMemoryStoreBusinessByPhone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.CreateBusiness(ctx, &models.Business{
		ID:       "b1",
		Name:     "Amman Bakery",
		Whatsapp: "962791234567",
		Status:   models.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateBusiness failed: %v", err)
	}

	b, err := store.GetBusinessByPhone(ctx, "962791234567")
	if err != nil {
		t.Fatalf("GetBusinessByPhone failed: %v", err)
	}
	if b.ID != "b1" {
		t.Errorf("expected business b1, got %s", b.ID)
	}

	if _, err := store.GetBusinessByPhone(ctx, "962799999999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown phone, got %v", err)
	}
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seed := []*models.Business{
		{ID: "b1", Name: "Amman Bakery", NameAr: "مخبز عمان", Category: []string{"Food"}, Whatsapp: "962791111111", Status: models.StatusActive},
		{ID: "b2", Name: "Petra Tours", Category: []string{"Travel"}, Whatsapp: "962792222222", Status: models.StatusActive},
		{ID: "b3", Name: "Hidden Shop", Category: []string{"Food"}, Whatsapp: "962793333333", Status: models.StatusSuspended},
	}
	for _, b := range seed {
		if _, err := store.CreateBusiness(ctx, b); err != nil {
			t.Fatalf("CreateBusiness failed: %v", err)
		}
	}

	results, err := store.SearchBusinesses(ctx, "bakery", "all")
	if err != nil {
		t.Fatalf("SearchBusinesses failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b1" {
		t.Errorf("keyword search: expected [b1], got %v", ids(results))
	}

	results, err = store.SearchBusinesses(ctx, "", "food")
	if err != nil {
		t.Fatalf("SearchBusinesses failed: %v", err)
	}
	// Suspended businesses never appear.
	if len(results) != 1 || results[0].ID != "b1" {
		t.Errorf("category search: expected [b1], got %v", ids(results))
	}

	active, err := store.ListActiveBusinesses(ctx)
	if err != nil {
		t.Fatalf("ListActiveBusinesses failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active businesses, got %d", len(active))
	}
}

func ids(bs []*models.Business) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}
