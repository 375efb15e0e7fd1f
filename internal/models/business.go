package models

import (
	"time"
)

// BusinessStatus is the lifecycle state of a directory listing.
type BusinessStatus string

const (
	// StatusActive businesses appear in public listing and search.
	StatusActive BusinessStatus = "Active"
	// StatusPendingMeta means the WhatsApp number passed OTP verification
	// but still awaits the platform-level (Meta) review before going live.
	StatusPendingMeta BusinessStatus = "PendingMeta"
	// StatusSuspended listings are hidden until reactivated by an admin.
	StatusSuspended BusinessStatus = "Suspended"
)

// Business is a directory listing. The bilingual fields mirror the public
// card shown in the English/Arabic UI.
type Business struct {
	ID            string   `gorm:"primaryKey" bson:"_id" json:"id"`
	Name          string   `gorm:"not null" bson:"name" json:"name"`
	NameAr        string   `bson:"name_ar" json:"nameAr"`
	Description   string   `bson:"description" json:"description"`
	DescriptionAr string   `bson:"description_ar" json:"descriptionAr"`
	Address       string   `bson:"address" json:"address"`
	AddressAr     string   `bson:"address_ar" json:"addressAr"`
	Category      []string `gorm:"serializer:json" bson:"category" json:"category"`

	// Whatsapp holds the canonical digits-only number; WhatsappLink is
	// always derived from it and never accepted from client input.
	Whatsapp     string `gorm:"uniqueIndex" bson:"whatsapp" json:"whatsapp"`
	WhatsappLink string `bson:"whatsapp_link" json:"whatsappLink"`

	MediaLink string `bson:"media_link" json:"mediaLink"`
	MapLink   string `bson:"map_link" json:"mapLink"`

	Plan            string     `bson:"plan" json:"plan"`
	PlanActivatedAt *time.Time `bson:"plan_activated_at" json:"planActivatedAt,omitempty"`

	// OTPVerified is set exclusively by the activation service after a
	// successful WhatsApp OTP verification.
	OTPVerified  bool           `bson:"otp_verified" json:"otpVerified"`
	MetaVerified bool           `bson:"meta_verified" json:"metaVerified"`
	Status       BusinessStatus `gorm:"index" bson:"status" json:"status"`

	Views     int64     `bson:"views" json:"views"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// WhatsAppLink derives the wa.me deep link for a canonical phone.
func WhatsAppLink(canonicalPhone string) string {
	return "https://wa.me/" + canonicalPhone
}
