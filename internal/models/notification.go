package models

import "time"

// Notification is an admin-authored announcement shown to business owners.
type Notification struct {
	ID        string    `gorm:"primaryKey" bson:"_id" json:"id"`
	Title     string    `gorm:"not null" bson:"title" json:"title"`
	Message   string    `gorm:"not null" bson:"message" json:"message"`
	CreatedAt time.Time `bson:"created_at" json:"date"`
}
