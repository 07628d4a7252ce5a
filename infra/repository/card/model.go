package card

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/card"
)

// Card is the cards table row.
type Card struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	AccountID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Number     string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	PINHash    string    `gorm:"type:varchar(100)"`
	RetryCount int       `gorm:"not null;default:0"`
	Blocked    bool      `gorm:"not null;default:false"`
	BlockType  string    `gorm:"type:varchar(10);not null;default:''"`
	Status     string    `gorm:"type:varchar(10);index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the Card model.
func (Card) TableName() string {
	return "cards"
}

func toModel(c *domain.Card) *Card {
	return &Card{
		ID:         c.ID,
		UserID:     c.UserID,
		AccountID:  c.AccountID,
		Number:     c.Number,
		PINHash:    c.PINHash,
		RetryCount: c.RetryCount,
		Blocked:    c.Blocked,
		BlockType:  string(c.BlockType),
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toDomain(m *Card) *domain.Card {
	return &domain.Card{
		ID:         m.ID,
		UserID:     m.UserID,
		AccountID:  m.AccountID,
		Number:     m.Number,
		PINHash:    m.PINHash,
		RetryCount: m.RetryCount,
		Blocked:    m.Blocked,
		BlockType:  domain.BlockType(m.BlockType),
		Status:     domain.Status(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
