package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asabsob/trustedlinks/internal/models"
)

// MongoStore backs the Store interface with a document database, the
// production backend of the original deployment.
type MongoStore struct {
	businesses    *mongo.Collection
	otps          *mongo.Collection
	notifications *mongo.Collection
}

// NewMongoStore wraps the given database and ensures the indexes the
// service layer relies on.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		businesses:    db.Collection("businesses"),
		otps:          db.Collection("otps"),
		notifications: db.Collection("notifications"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.businesses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "whatsapp", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.otps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}, {Key: "purpose", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Background sweep of stale codes. The lazy expiry check at
			// consume time remains authoritative; this only reclaims space.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// Business operations

func (s *MongoStore) CreateBusiness(ctx context.Context, b *models.Business) (*models.Business, error) {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.businesses.InsertOne(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *MongoStore) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	var b models.Business
	err := s.businesses.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error) {
	var b models.Business
	err := s.businesses.FindOne(ctx, bson.M{"whatsapp": phone}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) UpdateBusiness(ctx context.Context, b *models.Business) error {
	b.UpdatedAt = time.Now()
	res, err := s.businesses.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListActiveBusinesses(ctx context.Context) ([]*models.Business, error) {
	return s.findBusinesses(ctx, bson.M{"status": models.StatusActive})
}

func (s *MongoStore) SearchBusinesses(ctx context.Context, query, category string) ([]*models.Business, error) {
	filter := bson.M{"status": models.StatusActive}

	if query != "" {
		re := bson.M{"$regex": query, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"name_ar": re},
			bson.M{"description": re},
			bson.M{"description_ar": re},
			bson.M{"category": re},
		}
	}
	if category != "" && category != "all" {
		filter["category"] = bson.M{"$regex": category, "$options": "i"}
	}

	return s.findBusinesses(ctx, filter)
}

func (s *MongoStore) findBusinesses(ctx context.Context, filter bson.M) ([]*models.Business, error) {
	cur, err := s.businesses.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Business
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) IncrementBusinessViews(ctx context.Context, id string) error {
	res, err := s.businesses.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetDirectoryStats(ctx context.Context) (*models.DirectoryStats, error) {
	cur, err := s.businesses.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"views": bson.M{"$sum": "$views"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []struct {
		Status models.BusinessStatus `bson:"_id"`
		Count  int64                 `bson:"count"`
		Views  int64                 `bson:"views"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}

	stats := &models.DirectoryStats{}
	for _, g := range groups {
		stats.TotalBusinesses += g.Count
		stats.TotalViews += g.Views
		switch g.Status {
		case models.StatusActive:
			stats.ActiveBusinesses = g.Count
		case models.StatusPendingMeta:
			stats.PendingReview = g.Count
		case models.StatusSuspended:
			stats.Suspended = g.Count
		}
	}
	return stats, nil
}

// OTP operations

func (s *MongoStore) UpsertOTP(ctx context.Context, otp *models.OTP) error {
	// ReplaceOne with upsert is atomic per key, so a failed write can
	// never leave two live records for the same (phone, purpose).
	_, err := s.otps.ReplaceOne(ctx,
		bson.M{"phone": otp.Phone, "purpose": otp.Purpose},
		otp,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) GetOTP(ctx context.Context, phone, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := s.otps.FindOne(ctx, bson.M{"phone": phone, "purpose": purpose}).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

func (s *MongoStore) DeleteOTP(ctx context.Context, phone, purpose string) error {
	_, err := s.otps.DeleteOne(ctx, bson.M{"phone": phone, "purpose": purpose})
	return err
}

func (s *MongoStore) DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	// The TTL index already covers this; kept for interface parity and for
	// deployments where TTL monitors are disabled.
	res, err := s.otps.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Notification operations

func (s *MongoStore) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.CreatedAt = time.Now()
	if _, err := s.notifications.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *MongoStore) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	cur, err := s.notifications.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
