package otp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeFormat(t *testing.T) {
	assert := assert.New(t)

	o, err := New(uuid.New(), PurposeSignupVerify, 5*time.Minute)
	require.NoError(t, err)
	assert.Len(o.Code, 6)
	for _, r := range o.Code {
		assert.True(r >= '0' && r <= '9', "Codes are all digits")
	}
	assert.False(o.Consumed)
	assert.True(o.ExpiresAt.After(o.CreatedAt))
}

func TestNewRejectsUnknownPurpose(t *testing.T) {
	_, err := New(uuid.New(), Purpose("magic_link"), time.Minute)
	assert.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	o, err := New(uuid.New(), PurposePINSet, 5*time.Minute)
	require.NoError(t, err)
	now := o.CreatedAt

	assert.NoError(o.Validate(o.Code, now))
	assert.ErrorIs(o.Validate("000000", now), ErrOTPMismatch)
	assert.ErrorIs(o.Validate(o.Code, now.Add(6*time.Minute)), ErrOTPExpired)
}

func TestValidateConsumedWinsOverExpiry(t *testing.T) {
	o, err := New(uuid.New(), PurposeCardUnblock, 5*time.Minute)
	require.NoError(t, err)
	o.Consumed = true

	// Consumed is checked before expiry and before the code itself.
	assert.ErrorIs(t, o.Validate("000000", o.CreatedAt.Add(time.Hour)), ErrOTPConsumed)
}
