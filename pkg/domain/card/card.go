// Package card holds the card aggregate and the PIN retry/lockout rules
// shared by transfers and ATM operations.
package card

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCardNotFound is returned when a card cannot be found.
	ErrCardNotFound = errors.New("card not found")
	// ErrCardNotActive is returned for cards that are still awaiting approval
	// or have been cancelled.
	ErrCardNotActive = errors.New("card not active")
	// ErrCardBlocked is returned when a PIN operation hits a blocked card.
	ErrCardBlocked = errors.New("card is blocked")
	// ErrPINNotSet is returned when a PIN operation hits a card without a PIN.
	ErrPINNotSet = errors.New("card PIN not set")
	// ErrPINMismatch is returned when the supplied PIN does not match.
	ErrPINMismatch = errors.New("incorrect PIN")
	// ErrRetryConflict is returned when the retry counter changed under a
	// concurrent request and the conditional update matched no row.
	ErrRetryConflict = errors.New("concurrent PIN attempt detected")
	// ErrNotCardOwner is returned when a user acts on a card they do not own.
	ErrNotCardOwner = errors.New("not card owner")
	// ErrCardAlreadyIssued is returned when the account already has a card.
	ErrCardAlreadyIssued = errors.New("card already issued for account")
	// ErrPermanentBlock is returned when an unblock is attempted on a
	// permanently blocked card through a flow that only clears temporary blocks.
	ErrPermanentBlock = errors.New("card is permanently blocked")
)

// MaxPINRetries is the number of consecutive PIN failures that blocks a card.
const MaxPINRetries = 3

// Status is the card lifecycle status.
type Status string

const (
	StatusRequested Status = "requested"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// BlockType distinguishes user-recoverable blocks from permanent ones.
type BlockType string

const (
	BlockNone      BlockType = ""
	BlockTemporary BlockType = "temporary"
	BlockPermanent BlockType = "permanent"
)

// Card links a user's account to a PIN-protected payment card.
//
// Retry invariant: RetryCount resets to 0 on any successful PIN check and
// reaching MaxPINRetries sets Blocked.
type Card struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	AccountID  uuid.UUID
	Number     string
	PINHash    string // empty until the OTP-gated PIN-set flow runs
	RetryCount int
	Blocked    bool
	BlockType  BlockType
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCard creates a card request for the given account. The number is
// assigned immediately; the card becomes usable once approved.
func NewCard(userID, accountID uuid.UUID) *Card {
	return &Card{
		ID:        uuid.New(),
		UserID:    userID,
		AccountID: accountID,
		Number:    GenerateNumber(),
		Status:    StatusRequested,
		CreatedAt: time.Now(),
	}
}

// GenerateNumber returns a 16-digit card number starting with 4. Uniqueness
// is enforced by the store.
func GenerateNumber() string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(fmt.Sprintf("card number generation: %v", err))
	}
	return fmt.Sprintf("4%015d", n)
}

// Usable checks that the card can take part in a PIN operation.
func (c *Card) Usable() error {
	if c.Status != StatusActive {
		return ErrCardNotActive
	}
	if c.Blocked {
		return ErrCardBlocked
	}
	if c.PINHash == "" {
		return ErrPINNotSet
	}
	return nil
}

// RegisterFailure advances the retry counter for a failed PIN check and
// reports whether the card is now blocked. The caller persists the change
// with a conditional update keyed on the previous counter value.
func (c *Card) RegisterFailure() (blocked bool) {
	c.RetryCount++
	if c.RetryCount >= MaxPINRetries {
		c.Blocked = true
		c.BlockType = BlockTemporary
	}
	c.UpdatedAt = time.Now()
	return c.Blocked
}

// Block blocks the card with the given block type.
func (c *Card) Block(t BlockType) {
	c.Blocked = true
	c.BlockType = t
	c.UpdatedAt = time.Now()
}

// Unblock clears the block and resets the retry counter.
func (c *Card) Unblock() {
	c.Blocked = false
	c.BlockType = BlockNone
	c.RetryCount = 0
	c.UpdatedAt = time.Now()
}
