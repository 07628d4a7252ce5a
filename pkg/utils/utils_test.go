package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	assert := assert.New(t)

	hash, err := HashPassword("secret1")
	assert.NoError(err)
	assert.True(CheckPasswordHash("secret1", hash))
	assert.False(CheckPasswordHash("secret2", hash))
}

func TestPINHashRoundTrip(t *testing.T) {
	assert := assert.New(t)

	hash, err := HashPIN("1234")
	assert.NoError(err)
	assert.True(CheckPINHash("1234", hash))
	assert.False(CheckPINHash("4321", hash))
}

func TestIsEmail(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsEmail("user@example.com"))
	assert.False(IsEmail("user"))
	assert.False(IsEmail(""))
}

func TestMaskNumber(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("************3456", MaskNumber("4000111122223456"))
	assert.Equal("1234", MaskNumber("1234"), "Short values pass through")
}
