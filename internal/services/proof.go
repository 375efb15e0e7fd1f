package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const proofScope = "whatsapp_proof"

// proofTTL bounds the window between OTP verification and business
// activation.
const proofTTL = 10 * time.Minute

// ErrInvalidProof means the verification proof is missing, malformed,
// expired, or signed with the wrong key.
var ErrInvalidProof = errors.New("invalid or expired verification proof")

// ProofIssuer signs and validates the short-lived tokens that carry a
// verified phone from the OTP step to the activation step. The token is the
// only accepted evidence of verification; the client never asserts it.
type ProofIssuer struct {
	secret []byte
}

// NewProofIssuer creates a proof issuer with the given HMAC secret.
func NewProofIssuer(secret string) *ProofIssuer {
	return &ProofIssuer{secret: []byte(secret)}
}

// Issue signs a proof for a canonical phone and OTP purpose.
func (p *ProofIssuer) Issue(canonicalPhone, purpose string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     canonicalPhone,
		"purpose": purpose,
		"scope":   proofScope,
		"iat":     now.Unix(),
		"exp":     now.Add(proofTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify validates a proof and returns the canonical phone it certifies.
func (p *ProofIssuer) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidProof
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidProof
	}
	if scope, _ := claims["scope"].(string); scope != proofScope {
		return "", ErrInvalidProof
	}
	phone, _ := claims["sub"].(string)
	if phone == "" {
		return "", ErrInvalidProof
	}
	return phone, nil
}
