// Package otp holds one-time codes used to authorize sensitive actions:
// signup verification, password reset, application verification, PIN set
// and card unblock.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrOTPNotFound is returned when no matching unconsumed code exists.
	ErrOTPNotFound = errors.New("otp not found")
	// ErrOTPExpired is returned when the code's validity window has passed.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPMismatch is returned when the supplied code does not match.
	ErrOTPMismatch = errors.New("otp does not match")
	// ErrOTPConsumed is returned when a code is verified a second time.
	ErrOTPConsumed = errors.New("otp already used")
	// ErrInvalidPurpose is returned for unknown OTP purposes.
	ErrInvalidPurpose = errors.New("invalid otp purpose")
)

// Purpose binds a code to the action it authorizes. Issuing a new code
// invalidates all prior unconsumed codes of the same (user, purpose).
type Purpose string

const (
	PurposeSignupVerify      Purpose = "signup_verify"
	PurposePasswordReset     Purpose = "password_reset"
	PurposeApplicationVerify Purpose = "application_verify"
	PurposePINSet            Purpose = "pin_set"
	PurposeCardUnblock       Purpose = "card_unblock"
)

var purposes = map[Purpose]bool{
	PurposeSignupVerify:      true,
	PurposePasswordReset:     true,
	PurposeApplicationVerify: true,
	PurposePINSet:            true,
	PurposeCardUnblock:       true,
}

// OTP is a single-use 6-digit code with an expiry timestamp.
type OTP struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   Purpose
	Code      string
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}

// New issues a fresh code for the user and purpose, valid for ttl.
func New(userID uuid.UUID, purpose Purpose, ttl time.Duration) (*OTP, error) {
	if !purposes[purpose] {
		return nil, ErrInvalidPurpose
	}
	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &OTP{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n), nil
}

// Validate checks the supplied code against this OTP at the given time.
// It does not mark the code consumed; the store does that with a
// conditional update so a code verifies exactly once.
func (o *OTP) Validate(code string, now time.Time) error {
	if o.Consumed {
		return ErrOTPConsumed
	}
	if now.After(o.ExpiresAt) {
		return ErrOTPExpired
	}
	if o.Code != code {
		return ErrOTPMismatch
	}
	return nil
}
