package storage

import (
	"context"
	"errors"
	"time"

	"github.com/asabsob/trustedlinks/internal/models"
)

// ErrNotFound is returned when a lookup matches no record. Callers compare
// with errors.Is so every backend maps its driver-specific miss onto it.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the service layer depends on.
// Backends: in-memory (tests/dev), MongoDB (document store) and PostgreSQL.
type Store interface {
	// Business operations
	CreateBusiness(ctx context.Context, b *models.Business) (*models.Business, error)
	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error)
	UpdateBusiness(ctx context.Context, b *models.Business) error
	ListActiveBusinesses(ctx context.Context) ([]*models.Business, error)
	SearchBusinesses(ctx context.Context, query, category string) ([]*models.Business, error)
	IncrementBusinessViews(ctx context.Context, id string) error
	GetDirectoryStats(ctx context.Context) (*models.DirectoryStats, error)

	// OTP operations. UpsertOTP atomically replaces any existing record
	// for (phone, purpose) so at most one live code exists per key.
	UpsertOTP(ctx context.Context, otp *models.OTP) error
	GetOTP(ctx context.Context, phone, purpose string) (*models.OTP, error)
	DeleteOTP(ctx context.Context, phone, purpose string) error
	// DeleteExpiredOTPs removes records whose expiry is before the cutoff.
	// MongoDB also enforces this via a TTL index; the other backends rely
	// on the periodic cleanup job.
	DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error)

	// Notification operations
	CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListNotifications(ctx context.Context) ([]*models.Notification, error)
}
