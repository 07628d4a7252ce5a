package card

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewCard(t *testing.T) {
	assert := assert.New(t)

	c := NewCard(uuid.New(), uuid.New())
	assert.Equal(StatusRequested, c.Status, "A new card waits for approval")
	assert.Len(c.Number, 16)
	assert.Empty(c.PINHash)
	assert.Zero(c.RetryCount)
}

func TestGenerateNumberFormat(t *testing.T) {
	assert := assert.New(t)

	n := GenerateNumber()
	assert.Len(n, 16)
	assert.Equal(byte('4'), n[0])
	for _, r := range n {
		assert.True(r >= '0' && r <= '9', "Card numbers are all digits")
	}
}

func TestUsable(t *testing.T) {
	assert := assert.New(t)

	c := NewCard(uuid.New(), uuid.New())
	assert.ErrorIs(c.Usable(), ErrCardNotActive)

	c.Status = StatusActive
	assert.ErrorIs(c.Usable(), ErrPINNotSet)

	c.PINHash = "hash"
	assert.NoError(c.Usable())

	c.Blocked = true
	assert.ErrorIs(c.Usable(), ErrCardBlocked)
}

func TestRegisterFailureBlocksAfterMaxRetries(t *testing.T) {
	assert := assert.New(t)

	c := NewCard(uuid.New(), uuid.New())
	c.Status = StatusActive
	c.PINHash = "hash"

	assert.False(c.RegisterFailure(), "First failure does not block")
	assert.False(c.RegisterFailure(), "Second failure does not block")
	assert.True(c.RegisterFailure(), "Third failure blocks the card")
	assert.Equal(MaxPINRetries, c.RetryCount)
	assert.Equal(BlockTemporary, c.BlockType, "Retry exhaustion is a temporary block")
}

func TestUnblockResetsRetries(t *testing.T) {
	assert := assert.New(t)

	c := NewCard(uuid.New(), uuid.New())
	c.Status = StatusActive
	c.PINHash = "hash"
	for i := 0; i < MaxPINRetries; i++ {
		c.RegisterFailure()
	}

	c.Unblock()
	assert.False(c.Blocked)
	assert.Equal(BlockNone, c.BlockType)
	assert.Zero(c.RetryCount)
	assert.NoError(c.Usable())
}

func TestBlockPermanent(t *testing.T) {
	assert := assert.New(t)

	c := NewCard(uuid.New(), uuid.New())
	c.Status = StatusActive
	c.PINHash = "hash"

	c.Block(BlockPermanent)
	assert.True(c.Blocked)
	assert.Equal(BlockPermanent, c.BlockType)
}
