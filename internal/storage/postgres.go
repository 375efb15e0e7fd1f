package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/asabsob/trustedlinks/internal/models"
)

// DatabaseStore backs the Store interface with PostgreSQL via GORM.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a PostgreSQL-backed store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Business operations

func (s *DatabaseStore) CreateBusiness(ctx context.Context, b *models.Business) (*models.Business, error) {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DatabaseStore) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	var b models.Business
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *DatabaseStore) GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error) {
	var b models.Business
	err := s.db.WithContext(ctx).First(&b, "whatsapp = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *DatabaseStore) UpdateBusiness(ctx context.Context, b *models.Business) error {
	b.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).Save(b)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) ListActiveBusinesses(ctx context.Context) ([]*models.Business, error) {
	var out []*models.Business
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

func (s *DatabaseStore) SearchBusinesses(ctx context.Context, query, category string) ([]*models.Business, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.StatusActive)

	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where(
			"lower(name) LIKE ? OR lower(name_ar) LIKE ? OR lower(description) LIKE ? OR lower(description_ar) LIKE ? OR lower(category::text) LIKE ?",
			like, like, like, like, like,
		)
	}
	if category != "" && category != "all" {
		q = q.Where("lower(category::text) LIKE ?", "%"+strings.ToLower(category)+"%")
	}

	var out []*models.Business
	err := q.Order("created_at asc").Find(&out).Error
	return out, err
}

func (s *DatabaseStore) IncrementBusinessViews(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) GetDirectoryStats(ctx context.Context) (*models.DirectoryStats, error) {
	var rows []struct {
		Status models.BusinessStatus
		Count  int64
		Views  int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Business{}).
		Select("status, count(*) as count, coalesce(sum(views), 0) as views").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &models.DirectoryStats{}
	for _, r := range rows {
		stats.TotalBusinesses += r.Count
		stats.TotalViews += r.Views
		switch r.Status {
		case models.StatusActive:
			stats.ActiveBusinesses = r.Count
		case models.StatusPendingMeta:
			stats.PendingReview = r.Count
		case models.StatusSuspended:
			stats.Suspended = r.Count
		}
	}
	return stats, nil
}

// OTP operations

func (s *DatabaseStore) UpsertOTP(ctx context.Context, otp *models.OTP) error {
	// Delete-then-insert runs inside a transaction so a failed upsert
	// cannot leave two live records for the same key.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone = ? AND purpose = ?", otp.Phone, otp.Purpose).
			Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		otp.ID = 0
		return tx.Create(otp).Error
	})
}

func (s *DatabaseStore) GetOTP(ctx context.Context, phone, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.WithContext(ctx).
		First(&otp, "phone = ? AND purpose = ?", phone, purpose).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

func (s *DatabaseStore) DeleteOTP(ctx context.Context, phone, purpose string) error {
	return s.db.WithContext(ctx).
		Where("phone = ? AND purpose = ?", phone, purpose).
		Delete(&models.OTP{}).Error
}

func (s *DatabaseStore) DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}

// Notification operations

func (s *DatabaseStore) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (s *DatabaseStore) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	var out []*models.Notification
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}
