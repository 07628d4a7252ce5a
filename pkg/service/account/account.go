// Package account provides the account-opening workflow, cash movements and
// the inter-account transfer operation.
package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/account"
	otpdomain "github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/eventbus"
	"github.com/mhasanin/digibank/pkg/repository"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
)

// numberRetries bounds account-number regeneration on uniqueness collisions.
const numberRetries = 5

// Service provides business logic for accounts and the ledger.
type Service struct {
	uow    repository.UnitOfWork
	cards  *cardsvc.Service
	otps   *otpsvc.Service
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates an account service.
func New(
	uow repository.UnitOfWork,
	cards *cardsvc.Service,
	otps *otpsvc.Service,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cards: cards, otps: otps, bus: bus, logger: logger}
}

// SubmitApplication starts the account-opening workflow and emails the
// applicant a verification code.
func (s *Service) SubmitApplication(
	ctx context.Context,
	userID uuid.UUID,
	accType account.Type,
	nationalID string,
) (ap *account.Application, err error) {
	log := s.logger.With("context", "SubmitApplication", "userID", userID, "type", accType)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if existing, _ := accounts.GetActiveByUserAndType(ctx, userID, accType); existing != nil {
			return account.ErrDuplicateAccount
		}
		ap, err = account.NewApplication(userID, accType, nationalID)
		if err != nil {
			return err
		}
		apps, err := uow.ApplicationRepository()
		if err != nil {
			return err
		}
		return apps.Create(ctx, ap)
	})
	if err != nil {
		log.Error("SubmitApplication failed", "error", err)
		return nil, err
	}
	email, eerr := s.applicantEmail(ctx, userID)
	if eerr == nil {
		if _, err := s.otps.Issue(ctx, userID, email, otpdomain.PurposeApplicationVerify); err != nil {
			log.Warn("Application verification code not issued", "error", err)
		}
	}
	log.Info("Application submitted", "applicationID", ap.ID)
	return ap, nil
}

// VerifyApplication consumes the applicant's code and moves the application
// to verified, making it eligible for admin approval.
func (s *Service) VerifyApplication(
	ctx context.Context,
	userID, applicationID uuid.UUID,
	code string,
) error {
	log := s.logger.With("context", "VerifyApplication", "applicationID", applicationID)
	apps, err := s.uow.ApplicationRepository()
	if err != nil {
		return err
	}
	ap, err := apps.Get(ctx, applicationID)
	if err != nil {
		return account.ErrApplicationNotFound
	}
	if ap.UserID != userID {
		return account.ErrNotOwner
	}
	if err := s.otps.Verify(ctx, userID, otpdomain.PurposeApplicationVerify, code); err != nil {
		return err
	}
	if err := ap.Verify(); err != nil {
		return err
	}
	if err := apps.Update(ctx, ap); err != nil {
		log.Error("VerifyApplication failed on update", "error", err)
		return err
	}
	log.Info("Application verified")
	return nil
}

// ApproveApplication approves a verified application and opens the account.
func (s *Service) ApproveApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) (a *account.Account, err error) {
	log := s.logger.With("context", "ApproveApplication", "applicationID", applicationID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		apps, err := uow.ApplicationRepository()
		if err != nil {
			return err
		}
		ap, err := apps.Get(ctx, applicationID)
		if err != nil {
			return account.ErrApplicationNotFound
		}
		if err := ap.Approve(); err != nil {
			return err
		}
		if err := apps.Update(ctx, ap); err != nil {
			return err
		}
		a, err = s.openAccount(ctx, uow, ap.UserID, ap.AccountType)
		return err
	})
	if err != nil {
		log.Error("ApproveApplication failed", "error", err)
		return nil, err
	}
	log.Info("Application approved", "accountID", a.ID, "number", a.Number)
	return a, nil
}

// RejectApplication closes an open application.
func (s *Service) RejectApplication(ctx context.Context, applicationID uuid.UUID) error {
	apps, err := s.uow.ApplicationRepository()
	if err != nil {
		return err
	}
	ap, err := apps.Get(ctx, applicationID)
	if err != nil {
		return account.ErrApplicationNotFound
	}
	if err := ap.Reject(); err != nil {
		return err
	}
	return apps.Update(ctx, ap)
}

// ListApplications returns applications in the given status, for review.
func (s *Service) ListApplications(
	ctx context.Context,
	status account.ApplicationStatus,
) ([]*account.Application, error) {
	apps, err := s.uow.ApplicationRepository()
	if err != nil {
		return nil, err
	}
	return apps.ListByStatus(ctx, status)
}

// OpenAccount opens an active account directly, bypassing the application
// workflow. Used by the teller and admin surfaces.
func (s *Service) OpenAccount(
	ctx context.Context,
	userID uuid.UUID,
	accType account.Type,
) (a *account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		a, err = s.openAccount(ctx, uow, userID, accType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// openAccount enforces the one-active-account-per-(user,type) invariant and
// retries number generation on uniqueness collisions.
func (s *Service) openAccount(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
	accType account.Type,
) (*account.Account, error) {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if existing, _ := accounts.GetActiveByUserAndType(ctx, userID, accType); existing != nil {
		return nil, account.ErrDuplicateAccount
	}
	var lastErr error
	for range numberRetries {
		a, err := account.New().WithUserID(userID).WithType(accType).Build()
		if err != nil {
			return nil, err
		}
		lastErr = accounts.Create(ctx, a)
		if lastErr == nil {
			return a, nil
		}
		// Only a number collision warrants a fresh number. Anything else,
		// including a concurrent open tripping the active-account index,
		// is returned as is.
		if !errors.Is(lastErr, account.ErrDuplicateNumber) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Deposit credits cash to an account identified by number and appends a
// deposit ledger row. Used by tellers and by ATM cash-in.
func (s *Service) Deposit(
	ctx context.Context,
	accountNumber string,
	amount int64,
	description string,
) (tx *account.Transaction, err error) {
	log := s.logger.With("context", "Deposit", "amount", amount)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.GetByNumber(ctx, accountNumber)
		if err != nil {
			return account.ErrAccountNotFound
		}
		if err := a.Credit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx = account.NewTransaction(account.TxDeposit, nil, &a.ID, amount, a.Balance, description)
		return ledger.Create(ctx, tx)
	})
	if err != nil {
		log.Error("Deposit failed", "error", err)
		return nil, err
	}
	log.Info("Deposit successful", "transactionID", tx.ID)
	return tx, nil
}

// Withdraw debits cash from an account and appends a withdraw ledger row.
// The account-type balance rules apply; tellers land here.
func (s *Service) Withdraw(
	ctx context.Context,
	accountID uuid.UUID,
	amount int64,
	description string,
) (tx *account.Transaction, err error) {
	log := s.logger.With("context", "Withdraw", "accountID", accountID, "amount", amount)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.GetForUpdate(ctx, accountID)
		if err != nil {
			return account.ErrAccountNotFound
		}
		if err := a.Debit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx = account.NewTransaction(account.TxWithdraw, &a.ID, nil, amount, a.Balance, description)
		return ledger.Create(ctx, tx)
	})
	if err != nil {
		log.Error("Withdraw failed", "error", err)
		return nil, err
	}
	log.Info("Withdraw successful", "transactionID", tx.ID)
	return tx, nil
}

// WithdrawWithDailyLimit debits cash like Withdraw and additionally enforces
// the account's daily debit limit. The limit sum and the debit run in one
// transaction against the locked account row, so concurrent withdrawals
// cannot jointly exceed the cap. The ATM lands here.
func (s *Service) WithdrawWithDailyLimit(
	ctx context.Context,
	accountID uuid.UUID,
	amount int64,
	description string,
) (tx *account.Transaction, err error) {
	log := s.logger.With("context", "WithdrawWithDailyLimit", "accountID", accountID, "amount", amount)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.GetForUpdate(ctx, accountID)
		if err != nil {
			return account.ErrAccountNotFound
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		debitedToday, err := ledger.SumDebitsSince(ctx, a.ID, startOfDay(time.Now()))
		if err != nil {
			return err
		}
		if debitedToday+amount > a.DailyDebitLimit() {
			return account.ErrDailyLimitExceeded
		}
		if err := a.Debit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		tx = account.NewTransaction(account.TxWithdraw, &a.ID, nil, amount, a.Balance, description)
		return ledger.Create(ctx, tx)
	})
	if err != nil {
		log.Error("Withdraw failed", "error", err)
		return nil, err
	}
	log.Info("Withdraw successful", "transactionID", tx.ID)
	return tx, nil
}

// SetStatus changes an account's lifecycle status, for the admin surface.
func (s *Service) SetStatus(ctx context.Context, accountID uuid.UUID, status account.Status) error {
	switch status {
	case account.StatusActive, account.StatusInactive, account.StatusSuspended:
	default:
		return account.ErrInvalidStatus
	}
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return err
	}
	if _, err := accounts.Get(ctx, accountID); err != nil {
		return account.ErrAccountNotFound
	}
	s.logger.Info("Account status changed", "accountID", accountID, "status", status)
	return accounts.UpdateStatus(ctx, accountID, status)
}

// GetAccount returns one of the caller's accounts.
func (s *Service) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*account.Account, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	a, err := accounts.Get(ctx, accountID)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	if err := a.ValidateOwner(userID); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByNumber returns an account by number without an ownership check, for
// the teller surface.
func (s *Service) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	a, err := accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	return a, nil
}

// ListAccounts returns the caller's accounts.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return accounts.ListByUser(ctx, userID)
}

// GetBalance returns the balance of one of the caller's accounts.
func (s *Service) GetBalance(ctx context.Context, userID, accountID uuid.UUID) (int64, error) {
	a, err := s.GetAccount(ctx, userID, accountID)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// GetTransactions returns a page of the account's ledger rows, newest first.
func (s *Service) GetTransactions(
	ctx context.Context,
	userID, accountID uuid.UUID,
	limit, offset int,
) ([]*account.Transaction, error) {
	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	ledger, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return ledger.ListByAccount(ctx, accountID, limit, offset)
}

func (s *Service) applicantEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return "", err
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}
