package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/asabsob/trustedlinks/internal/models"
)

// MemoryStore holds all data in memory. Used by tests and as the
// zero-dependency development backend.
type MemoryStore struct {
	businesses    map[string]*models.Business
	otps          map[string]*models.OTP
	notifications []*models.Notification

	businessMu sync.RWMutex
	otpMu      sync.RWMutex
	noteMu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		businesses: make(map[string]*models.Business),
		otps:       make(map[string]*models.OTP),
	}
}

func otpKey(phone, purpose string) string {
	return phone + "|" + purpose
}

// Business operations

func (m *MemoryStore) CreateBusiness(_ context.Context, b *models.Business) (*models.Business, error) {
	m.businessMu.Lock()
	defer m.businessMu.Unlock()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	cp := *b
	m.businesses[b.ID] = &cp
	return b, nil
}

func (m *MemoryStore) GetBusiness(_ context.Context, id string) (*models.Business, error) {
	m.businessMu.RLock()
	defer m.businessMu.RUnlock()

	b, exists := m.businesses[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryStore) GetBusinessByPhone(_ context.Context, phone string) (*models.Business, error) {
	m.businessMu.RLock()
	defer m.businessMu.RUnlock()

	for _, b := range m.businesses {
		if b.Whatsapp == phone {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateBusiness(_ context.Context, b *models.Business) error {
	m.businessMu.Lock()
	defer m.businessMu.Unlock()

	if _, exists := m.businesses[b.ID]; !exists {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	cp := *b
	m.businesses[b.ID] = &cp
	return nil
}

func (m *MemoryStore) ListActiveBusinesses(_ context.Context) ([]*models.Business, error) {
	m.businessMu.RLock()
	defer m.businessMu.RUnlock()

	var out []*models.Business
	for _, b := range m.businesses {
		if b.Status == models.StatusActive {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) SearchBusinesses(_ context.Context, query, category string) ([]*models.Business, error) {
	m.businessMu.RLock()
	defer m.businessMu.RUnlock()

	q := strings.ToLower(query)
	cat := strings.ToLower(category)

	var out []*models.Business
	for _, b := range m.businesses {
		if b.Status != models.StatusActive {
			continue
		}
		if q != "" && !matchesQuery(b, q) {
			continue
		}
		if cat != "" && cat != "all" && !matchesCategory(b, cat) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) IncrementBusinessViews(_ context.Context, id string) error {
	m.businessMu.Lock()
	defer m.businessMu.Unlock()

	b, exists := m.businesses[id]
	if !exists {
		return ErrNotFound
	}
	b.Views++
	return nil
}

func (m *MemoryStore) GetDirectoryStats(_ context.Context) (*models.DirectoryStats, error) {
	m.businessMu.RLock()
	defer m.businessMu.RUnlock()

	stats := &models.DirectoryStats{}
	for _, b := range m.businesses {
		stats.TotalBusinesses++
		stats.TotalViews += b.Views
		switch b.Status {
		case models.StatusActive:
			stats.ActiveBusinesses++
		case models.StatusPendingMeta:
			stats.PendingReview++
		case models.StatusSuspended:
			stats.Suspended++
		}
	}
	return stats, nil
}

func matchesQuery(b *models.Business, q string) bool {
	if strings.Contains(strings.ToLower(b.Name), q) ||
		strings.Contains(strings.ToLower(b.NameAr), q) ||
		strings.Contains(strings.ToLower(b.Description), q) ||
		strings.Contains(strings.ToLower(b.DescriptionAr), q) {
		return true
	}
	return matchesCategory(b, q)
}

func matchesCategory(b *models.Business, cat string) bool {
	for _, c := range b.Category {
		if strings.Contains(strings.ToLower(c), cat) {
			return true
		}
	}
	return false
}

// OTP operations

func (m *MemoryStore) UpsertOTP(_ context.Context, otp *models.OTP) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	// Replacing under the lock keeps the single-live-record invariant:
	// the old code is gone before the new one becomes visible.
	cp := *otp
	m.otps[otpKey(otp.Phone, otp.Purpose)] = &cp
	return nil
}

func (m *MemoryStore) GetOTP(_ context.Context, phone, purpose string) (*models.OTP, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	otp, exists := m.otps[otpKey(phone, purpose)]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *otp
	return &cp, nil
}

func (m *MemoryStore) DeleteOTP(_ context.Context, phone, purpose string) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	delete(m.otps, otpKey(phone, purpose))
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs(_ context.Context, before time.Time) (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	var removed int64
	for key, otp := range m.otps {
		if otp.ExpiresAt.Before(before) {
			delete(m.otps, key)
			removed++
		}
	}
	return removed, nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) (*models.Notification, error) {
	m.noteMu.Lock()
	defer m.noteMu.Unlock()

	n.CreatedAt = time.Now()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return n, nil
}

func (m *MemoryStore) ListNotifications(_ context.Context) ([]*models.Notification, error) {
	m.noteMu.RLock()
	defer m.noteMu.RUnlock()

	out := make([]*models.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}
