package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/domain/card"
	"github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/domain/user"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// GetForUpdate reads the account with a row lock; only meaningful inside
	// a UnitOfWork.Do transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	// GetActiveByUserAndType returns the user's active account of the given
	// type, or account.ErrAccountNotFound.
	GetActiveByUserAndType(ctx context.Context, userID uuid.UUID, t account.Type) (*account.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status account.Status) error
}

// TransactionRepository defines data access for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx *account.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*account.Transaction, error)
	// SumDebitsSince totals the amounts of success outflow rows (transfer
	// debits and cash withdrawals) written from the account at or after since.
	SumDebitsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error)
	// CountDebitsSince counts success outflow rows written from the account
	// at or after since.
	CountDebitsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	List(ctx context.Context, limit, offset int) ([]*user.User, error)
}

// CardRepository defines data access for cards.
type CardRepository interface {
	Create(ctx context.Context, c *card.Card) error
	Get(ctx context.Context, id uuid.UUID) (*card.Card, error)
	GetByNumber(ctx context.Context, number string) (*card.Card, error)
	// GetActiveByUser returns the user's active card, or card.ErrCardNotFound.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*card.Card, error)
	ListRequested(ctx context.Context) ([]*card.Card, error)
	Update(ctx context.Context, c *card.Card) error
	// UpdateRetry persists a retry-counter transition with a conditional
	// update (WHERE retry_count = from). Returns card.ErrRetryConflict when
	// no row matched, meaning a concurrent attempt already moved the counter.
	UpdateRetry(ctx context.Context, id uuid.UUID, from, to int, blocked bool, blockType card.BlockType) error
	// ResetRetry clears the counter after a successful PIN check.
	ResetRetry(ctx context.Context, id uuid.UUID) error
}

// OTPRepository defines data access for one-time codes.
type OTPRepository interface {
	Create(ctx context.Context, o *otp.OTP) error
	// GetLatest returns the newest unconsumed code for (user, purpose), or
	// otp.ErrOTPNotFound.
	GetLatest(ctx context.Context, userID uuid.UUID, purpose otp.Purpose) (*otp.OTP, error)
	// InvalidateAll consumes every outstanding code for (user, purpose).
	InvalidateAll(ctx context.Context, userID uuid.UUID, purpose otp.Purpose) error
	// Consume marks the code used with a conditional update
	// (WHERE consumed = false). Returns otp.ErrOTPConsumed when no row
	// matched, so a code verifies exactly once under concurrent requests.
	Consume(ctx context.Context, id uuid.UUID) error
}

// ApplicationRepository defines data access for account applications.
type ApplicationRepository interface {
	Create(ctx context.Context, ap *account.Application) error
	Get(ctx context.Context, id uuid.UUID) (*account.Application, error)
	ListByStatus(ctx context.Context, status account.ApplicationStatus) ([]*account.Application, error)
	Update(ctx context.Context, ap *account.Application) error
}
