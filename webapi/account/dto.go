package account

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
)

// ApplicationRequest starts the account-opening workflow.
type ApplicationRequest struct {
	AccountType string `json:"account_type" validate:"required,oneof=saving current"`
	NationalID  string `json:"national_id" validate:"required,min=5,max=30"`
}

// VerifyApplicationRequest carries the emailed application code.
type VerifyApplicationRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TransferRequest moves funds to the account with the given number.
type TransferRequest struct {
	ReceiverNumber string `json:"receiver_number" validate:"required,min=10,max=20"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	PIN            string `json:"pin" validate:"required,len=4,numeric"`
}

// AccountDTO is the account representation returned by the API.
type AccountDTO struct {
	ID             uuid.UUID `json:"id"`
	Number         string    `json:"number"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Balance        int64     `json:"balance"`
	MinBalance     int64     `json:"min_balance"`
	MonthlyTxLimit int       `json:"monthly_tx_limit,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToAccountDTO maps a domain account to its API representation.
func ToAccountDTO(a *domain.Account) *AccountDTO {
	return &AccountDTO{
		ID:             a.ID,
		Number:         a.Number,
		Type:           string(a.Type),
		Status:         string(a.Status),
		Balance:        a.Balance,
		MinBalance:     a.MinBalance,
		MonthlyTxLimit: a.MonthlyTxLimit,
		CreatedAt:      a.CreatedAt,
	}
}

// ApplicationDTO is the application representation returned by the API.
type ApplicationDTO struct {
	ID          uuid.UUID `json:"id"`
	AccountType string    `json:"account_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToApplicationDTO maps a domain application to its API representation.
// The national ID stays server-side.
func ToApplicationDTO(ap *domain.Application) *ApplicationDTO {
	return &ApplicationDTO{
		ID:          ap.ID,
		AccountType: string(ap.AccountType),
		Status:      string(ap.Status),
		CreatedAt:   ap.CreatedAt,
	}
}

// TransactionDTO is the ledger row representation returned by the API.
type TransactionDTO struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Amount       int64      `json:"amount"`
	BalanceAfter int64      `json:"balance_after"`
	Description  string     `json:"description,omitempty"`
	FromAccount  *uuid.UUID `json:"from_account_id,omitempty"`
	ToAccount    *uuid.UUID `json:"to_account_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToTransactionDTO maps a ledger row to its API representation.
func ToTransactionDTO(t *domain.Transaction) *TransactionDTO {
	return &TransactionDTO{
		ID:           t.ID,
		Type:         string(t.Type),
		Status:       string(t.Status),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		FromAccount:  t.FromAccountID,
		ToAccount:    t.ToAccountID,
		CreatedAt:    t.CreatedAt,
	}
}

// TransferResponse echoes the transfer outcome: both post-transfer
// accounts, the two ledger rows, and the sender's remaining daily headroom.
type TransferResponse struct {
	Sender         *AccountDTO     `json:"sender"`
	Receiver       *AccountDTO     `json:"receiver"`
	Debit          *TransactionDTO `json:"debit"`
	Credit         *TransactionDTO `json:"credit"`
	DailyRemaining int64           `json:"daily_remaining"`
}
