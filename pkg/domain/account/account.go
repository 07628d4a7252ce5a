// Package account holds the account aggregate and the business rules for
// balance mutations: deposits, withdrawals and transfer preconditions.
package account

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNotActive is returned when an operation targets an account
	// that is not in the active state.
	ErrAccountNotActive = errors.New("account not active")
	// ErrNotOwner is returned when a user acts on an account they do not own.
	ErrNotOwner = errors.New("not owner")
	// ErrDuplicateAccount is returned when a user already has an active
	// account of the requested type.
	ErrDuplicateAccount = errors.New("active account of this type already exists")
	// ErrDuplicateNumber is returned when a generated account number is
	// already taken.
	ErrDuplicateNumber = errors.New("account number already taken")
	// ErrAmountMustBePositive is returned when a transaction amount is not positive.
	ErrAmountMustBePositive = errors.New("transaction amount must be positive")
	// ErrAmountBelowMinimum is returned when a transfer is below the minimum amount.
	ErrAmountBelowMinimum = errors.New("amount below minimum transfer amount")
	// ErrInsufficientBalance is returned when the balance cannot cover a debit.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBelowMinimumBalance is returned when a debit would push a current
	// account under its minimum balance.
	ErrBelowMinimumBalance = errors.New("balance would fall below minimum balance")
	// ErrDailyLimitExceeded is returned when today's debits plus the requested
	// amount exceed the account's daily limit.
	ErrDailyLimitExceeded = errors.New("daily transaction limit exceeded")
	// ErrMonthlyLimitExceeded is returned when a savings account has used up
	// its monthly debit transactions.
	ErrMonthlyLimitExceeded = errors.New("monthly transaction limit exceeded")
	// ErrSameAccount is returned when a transfer targets the sending account.
	ErrSameAccount = errors.New("cannot transfer to the same account")
	// ErrInvalidAccountType is returned for unknown account types.
	ErrInvalidAccountType = errors.New("invalid account type")
	// ErrInvalidStatus is returned for unknown account statuses.
	ErrInvalidStatus = errors.New("invalid account status")
)

// Type is the account type: saving or current.
type Type string

const (
	TypeSaving  Type = "saving"
	TypeCurrent Type = "current"
)

// Status is the account lifecycle status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Business limits. Amounts are whole currency units.
const (
	// MinTransferAmount is the smallest amount accepted by a transfer or
	// ATM withdrawal.
	MinTransferAmount int64 = 100
	// MinBalanceCurrent is the balance floor for current accounts.
	MinBalanceCurrent int64 = 10_000
	// DailyDebitLimitSaving caps the total debited per day from a savings account.
	DailyDebitLimitSaving int64 = 100_000
	// DailyDebitLimitCurrent caps the total debited per day from a current account.
	DailyDebitLimitCurrent int64 = 200_000
	// DefaultMonthlyTxLimit is the debit-transaction count cap per month for
	// savings accounts. Current accounts are uncapped.
	DefaultMonthlyTxLimit = 20

	// numberPrefix is the bank prefix of every account number.
	numberPrefix = "6010"
	// numberRandomDigits is the number of generated digits after the prefix.
	numberRandomDigits = 10
)

// Account is a user's bank account. Balance is kept in whole currency units.
//
// Invariants:
//   - A valid owner (UserID) and a unique, system-generated Number.
//   - At most one active account per (user, type); enforced at the store.
//   - Current accounts never end a successful debit below MinBalance.
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Number         string
	Type           Type
	Status         Status
	Balance        int64
	MinBalance     int64
	MonthlyTxLimit int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Builder constructs Account values, applying type defaults on Build.
type Builder struct {
	id      uuid.UUID
	userID  uuid.UUID
	number  string
	accType Type
	status  Status
	balance int64
}

// New returns a Builder with a fresh ID and a generated account number.
func New() *Builder {
	return &Builder{
		id:      uuid.New(),
		number:  GenerateNumber(),
		accType: TypeSaving,
		status:  StatusActive,
	}
}

func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

func (b *Builder) WithType(t Type) *Builder {
	b.accType = t
	return b
}

func (b *Builder) WithStatus(s Status) *Builder {
	b.status = s
	return b
}

// WithNumber overrides the generated number. Used when retrying after a
// uniqueness collision and when hydrating from the store.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithBalance sets the starting balance. Only for hydration and test setup.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

// Build validates invariants and returns the account with type defaults
// (minimum balance, monthly limit) applied.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	a := &Account{
		ID:        b.id,
		UserID:    b.userID,
		Number:    b.number,
		Type:      b.accType,
		Status:    b.status,
		Balance:   b.balance,
		CreatedAt: time.Now(),
	}
	switch b.accType {
	case TypeSaving:
		a.MinBalance = 0
		a.MonthlyTxLimit = DefaultMonthlyTxLimit
	case TypeCurrent:
		a.MinBalance = MinBalanceCurrent
		a.MonthlyTxLimit = 0
	default:
		return nil, ErrInvalidAccountType
	}
	return a, nil
}

// GenerateNumber returns a new account number: the bank prefix followed by
// ten random digits. Uniqueness is enforced by the store; callers retry on
// collision.
func GenerateNumber() string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(numberRandomDigits), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic(fmt.Sprintf("account number generation: %v", err))
	}
	return fmt.Sprintf("%s%0*d", numberPrefix, numberRandomDigits, n)
}

// DailyDebitLimit returns the per-day debit cap for the account type.
func (a *Account) DailyDebitLimit() int64 {
	if a.Type == TypeCurrent {
		return DailyDebitLimitCurrent
	}
	return DailyDebitLimitSaving
}

// ValidateOwner checks that the account belongs to the given user.
func (a *Account) ValidateOwner(userID uuid.UUID) error {
	if a.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// ValidateDeposit checks the invariants for crediting cash to the account.
func (a *Account) ValidateDeposit(amount int64) error {
	if a.Status != StatusActive {
		return ErrAccountNotActive
	}
	if amount <= 0 {
		return ErrAmountMustBePositive
	}
	return nil
}

// CanCover reports whether the account balance covers a debit of amount.
// Current accounts must stay at or above their minimum balance; savings
// accounts only need the funds themselves.
func (a *Account) CanCover(amount int64) bool {
	if a.Type == TypeCurrent {
		return a.Balance-a.MinBalance >= amount
	}
	return a.Balance >= amount
}

// ValidateDebit checks the invariants for debiting the account: active
// status, positive amount and sufficient balance for the account type.
func (a *Account) ValidateDebit(amount int64) error {
	if a.Status != StatusActive {
		return ErrAccountNotActive
	}
	if amount <= 0 {
		return ErrAmountMustBePositive
	}
	if !a.CanCover(amount) {
		if a.Type == TypeCurrent && a.Balance >= amount {
			return ErrBelowMinimumBalance
		}
		return ErrInsufficientBalance
	}
	return nil
}

// Debit reduces the balance after re-validating the debit invariants.
func (a *Account) Debit(amount int64) error {
	if err := a.ValidateDebit(amount); err != nil {
		return err
	}
	a.Balance -= amount
	a.UpdatedAt = time.Now()
	return nil
}

// Credit increases the balance after validating the deposit invariants.
func (a *Account) Credit(amount int64) error {
	if err := a.ValidateDeposit(amount); err != nil {
		return err
	}
	a.Balance += amount
	a.UpdatedAt = time.Now()
	return nil
}
