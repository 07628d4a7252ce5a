package account

import (
	"time"

	"github.com/google/uuid"
)

// TxType classifies a ledger row. Transfers write a debit row for the sender
// and a credit row for the receiver; cash operations write deposit/withdraw.
type TxType string

const (
	TxDeposit  TxType = "deposit"
	TxWithdraw TxType = "withdraw"
	TxDebit    TxType = "debit"
	TxCredit   TxType = "credit"
)

// TxStatus records whether the movement was applied.
type TxStatus string

const (
	TxSuccess TxStatus = "success"
	TxFailed  TxStatus = "failed"
)

// Transaction is one append-only ledger row: a single money movement leg
// with a balance snapshot of the affected account after the movement.
// Rows are never updated or deleted.
type Transaction struct {
	ID            uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        int64
	Type          TxType
	Status        TxStatus
	BalanceAfter  int64
	Description   string
	CreatedAt     time.Time
}

// NewTransaction builds a success ledger row for the given movement.
func NewTransaction(
	txType TxType,
	from, to *uuid.UUID,
	amount, balanceAfter int64,
	description string,
) *Transaction {
	return &Transaction{
		ID:            uuid.New(),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Type:          txType,
		Status:        TxSuccess,
		BalanceAfter:  balanceAfter,
		Description:   description,
		CreatedAt:     time.Now(),
	}
}
