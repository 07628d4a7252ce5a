package transaction

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
)

// Transaction is the transactions table row. Rows are append-only.
type Transaction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FromAccountID *uuid.UUID `gorm:"type:uuid;index"`
	ToAccountID   *uuid.UUID `gorm:"type:uuid;index"`
	Amount        int64      `gorm:"not null"`
	Type          string     `gorm:"type:varchar(10);not null;index"`
	Status        string     `gorm:"type:varchar(10);not null"`
	BalanceAfter  int64      `gorm:"not null"`
	Description   string     `gorm:"type:varchar(255)"`
	CreatedAt     time.Time  `gorm:"index"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

func toModel(t *domain.Transaction) *Transaction {
	return &Transaction{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Status:        string(t.Status),
		BalanceAfter:  t.BalanceAfter,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

func toDomain(m *Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            m.ID,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        m.Amount,
		Type:          domain.TxType(m.Type),
		Status:        domain.TxStatus(m.Status),
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}
