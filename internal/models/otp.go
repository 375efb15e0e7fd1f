package models

import (
	"time"
)

// OTP purposes. The purpose namespaces concurrent OTP flows so the same
// phone can hold independent pending codes for different use-cases.
const (
	OTPPurposeBusinessSignup = "business_signup"
	OTPPurposePasswordReset  = "password_reset"
)

// OTP is a pending one-time code for a (phone, purpose) key. At most one
// live record per key exists at a time; issuing a new code replaces the
// previous one.
type OTP struct {
	ID        uint      `gorm:"primaryKey" bson:"-" json:"-"`
	Phone     string    `gorm:"not null;uniqueIndex:idx_otp_key,priority:1" bson:"phone" json:"phone"`
	Purpose   string    `gorm:"not null;uniqueIndex:idx_otp_key,priority:2" bson:"purpose" json:"purpose"`
	Code      string    `gorm:"not null" bson:"code" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null;index" bson:"expires_at" json:"expiresAt"`
}

// Expired reports whether the code is no longer valid at the given instant.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// VerifyReason is a stable machine-readable failure code for verification.
type VerifyReason string

const (
	VerifyReasonNone    VerifyReason = ""
	VerifyReasonNoOTP   VerifyReason = "no_otp"
	VerifyReasonBadCode VerifyReason = "bad_code"
	VerifyReasonExpired VerifyReason = "expired"
)

// VerificationResult is the transient outcome of consuming an OTP.
type VerificationResult struct {
	OK     bool         `json:"ok"`
	Reason VerifyReason `json:"reason,omitempty"`
	Phone  string       `json:"phone,omitempty"`
}
