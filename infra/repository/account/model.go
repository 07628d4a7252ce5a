package account

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
)

// Account is the accounts table row. The partial index uniq_active_user_type
// backs the one-active-account-per-(user, type) rule at the store level.
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:uniq_active_user_type,where:status = 'active'"`
	Number         string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Type           string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_active_user_type,where:status = 'active'"`
	Status         string    `gorm:"type:varchar(10);not null;default:'active'"`
	Balance        int64     `gorm:"not null;default:0"`
	MinBalance     int64     `gorm:"not null;default:0"`
	MonthlyTxLimit int       `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

func toModel(a *domain.Account) *Account {
	return &Account{
		ID:             a.ID,
		UserID:         a.UserID,
		Number:         a.Number,
		Type:           string(a.Type),
		Status:         string(a.Status),
		Balance:        a.Balance,
		MinBalance:     a.MinBalance,
		MonthlyTxLimit: a.MonthlyTxLimit,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toDomain(m *Account) *domain.Account {
	return &domain.Account{
		ID:             m.ID,
		UserID:         m.UserID,
		Number:         m.Number,
		Type:           domain.Type(m.Type),
		Status:         domain.Status(m.Status),
		Balance:        m.Balance,
		MinBalance:     m.MinBalance,
		MonthlyTxLimit: m.MonthlyTxLimit,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
