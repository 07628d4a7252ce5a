package card

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/card"
	"github.com/mhasanin/digibank/pkg/utils"
)

// RequestCardRequest asks for a card on one of the caller's accounts.
type RequestCardRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// SetPINRequest carries the emailed code and the new PIN.
type SetPINRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
	PIN  string `json:"pin" validate:"required,len=4,numeric"`
}

// BlockRequest blocks the caller's card.
type BlockRequest struct {
	BlockType string `json:"block_type" validate:"omitempty,oneof=temporary permanent"`
}

// UnblockRequest carries the emailed unblock code.
type UnblockRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// CardDTO is the card representation returned by the API. The number is
// masked and the PIN hash never leaves the service layer.
type CardDTO struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Number    string    `json:"number"`
	Status    string    `json:"status"`
	Blocked   bool      `json:"blocked"`
	BlockType string    `json:"block_type,omitempty"`
	PINSet    bool      `json:"pin_set"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCardDTO maps a domain card to its API representation.
func ToCardDTO(c *domain.Card) *CardDTO {
	return &CardDTO{
		ID:        c.ID,
		AccountID: c.AccountID,
		Number:    utils.MaskNumber(c.Number),
		Status:    string(c.Status),
		Blocked:   c.Blocked,
		BlockType: string(c.BlockType),
		PINSet:    c.PINHash != "",
		CreatedAt: c.CreatedAt,
	}
}
