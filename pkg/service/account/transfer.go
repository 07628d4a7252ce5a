package account

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/eventbus"
	"github.com/mhasanin/digibank/pkg/repository"
)

// TransferInput carries the four transfer inputs. Presence is validated at
// the API boundary; the service validates everything else.
type TransferInput struct {
	UserID         uuid.UUID
	SenderID       uuid.UUID
	ReceiverNumber string
	Amount         int64
	PIN            string
}

// TransferResult echoes both accounts after the transfer, the two ledger
// rows, and the sender's remaining daily-limit headroom.
type TransferResult struct {
	Sender         *account.Account
	Receiver       *account.Account
	Debit          *account.Transaction
	Credit         *account.Transaction
	DailyRemaining int64
}

// Transfer moves funds between two accounts.
//
// Preconditions run in a fixed order and each failure returns its own error
// with no state change, except the PIN retry counter: that is written on the
// base session before the transfer transaction opens, so a failed PIN
// attempt is counted even though the transfer itself never starts.
//
// The mutation itself runs in one database transaction: both account rows
// are locked in ID order, the balance rules are re-checked against the
// locked rows, then the debit, the credit and the two ledger rows commit
// together or not at all.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	log := s.logger.With(
		"context", "Transfer",
		"senderID", in.SenderID,
		"amount", in.Amount,
	)

	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}

	// Sender must exist, belong to the caller and be active.
	sender, err := accounts.Get(ctx, in.SenderID)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	if err := sender.ValidateOwner(in.UserID); err != nil {
		return nil, err
	}
	if sender.Status != account.StatusActive {
		return nil, account.ErrAccountNotActive
	}

	// First-pass balance check, before the PIN is even looked at.
	if !sender.CanCover(in.Amount) {
		if sender.Type == account.TypeCurrent && sender.Balance >= in.Amount {
			return nil, account.ErrBelowMinimumBalance
		}
		return nil, account.ErrInsufficientBalance
	}

	// PIN check with the shared retry/lockout rules. Counter updates commit
	// immediately; they must not be undone by a later rollback.
	if _, err := s.cards.VerifyUserPIN(ctx, in.UserID, in.PIN); err != nil {
		log.Warn("Transfer PIN check failed", "error", err)
		return nil, err
	}

	receiver, err := accounts.GetByNumber(ctx, in.ReceiverNumber)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	if receiver.Status != account.StatusActive {
		return nil, account.ErrAccountNotActive
	}
	if receiver.ID == sender.ID {
		return nil, account.ErrSameAccount
	}
	if in.Amount < account.MinTransferAmount {
		return nil, account.ErrAmountBelowMinimum
	}

	var result *TransferResult
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txAccounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		// Lock both rows in ID order so opposite transfers cannot deadlock,
		// then work with the locked state only.
		sender, receiver, err = lockPair(ctx, txAccounts, sender.ID, receiver.ID)
		if err != nil {
			return err
		}

		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		now := time.Now()
		debitedToday, err := ledger.SumDebitsSince(ctx, sender.ID, startOfDay(now))
		if err != nil {
			return err
		}
		if debitedToday+in.Amount > sender.DailyDebitLimit() {
			return account.ErrDailyLimitExceeded
		}
		if sender.Type == account.TypeSaving {
			count, err := ledger.CountDebitsSince(ctx, sender.ID, startOfMonth(now))
			if err != nil {
				return err
			}
			if count >= int64(sender.MonthlyTxLimit) {
				return account.ErrMonthlyLimitExceeded
			}
		}

		// Re-check balance rules on the locked row; Debit enforces both the
		// sufficient-funds and the minimum-balance floor.
		if err := sender.Debit(in.Amount); err != nil {
			return err
		}
		if err := receiver.Credit(in.Amount); err != nil {
			return err
		}
		if err := txAccounts.UpdateBalance(ctx, sender.ID, sender.Balance); err != nil {
			return err
		}
		if err := txAccounts.UpdateBalance(ctx, receiver.ID, receiver.Balance); err != nil {
			return err
		}

		desc := fmt.Sprintf("transfer to %s", in.ReceiverNumber)
		debit := account.NewTransaction(
			account.TxDebit, &sender.ID, &receiver.ID, in.Amount, sender.Balance, desc)
		if err := ledger.Create(ctx, debit); err != nil {
			return err
		}
		credit := account.NewTransaction(
			account.TxCredit, &sender.ID, &receiver.ID, in.Amount,
			receiver.Balance, fmt.Sprintf("transfer from %s", sender.Number))
		if err := ledger.Create(ctx, credit); err != nil {
			return err
		}

		result = &TransferResult{
			Sender:         sender,
			Receiver:       receiver,
			Debit:          debit,
			Credit:         credit,
			DailyRemaining: sender.DailyDebitLimit() - debitedToday - in.Amount,
		}
		return nil
	})
	if err != nil {
		log.Error("Transfer failed", "error", err)
		return nil, err
	}

	if err := s.bus.Publish(ctx, eventbus.TransferCompleted{
		SenderAccountID:   result.Sender.ID,
		ReceiverAccountID: result.Receiver.ID,
		Amount:            in.Amount,
	}); err != nil {
		log.Warn("TransferCompleted event publish failed", "error", err)
	}
	log.Info("Transfer successful",
		"debitID", result.Debit.ID,
		"creditID", result.Credit.ID,
		"dailyRemaining", result.DailyRemaining,
	)
	return result, nil
}

// lockPair locks the two account rows in ID order and returns them as
// (first=senderID's row, second=receiverID's row).
func lockPair(
	ctx context.Context,
	accounts repository.AccountRepository,
	senderID, receiverID uuid.UUID,
) (*account.Account, *account.Account, error) {
	first, second := senderID, receiverID
	if bytes.Compare(receiverID[:], senderID[:]) < 0 {
		first, second = receiverID, senderID
	}
	a, err := accounts.GetForUpdate(ctx, first)
	if err != nil {
		return nil, nil, account.ErrAccountNotFound
	}
	b, err := accounts.GetForUpdate(ctx, second)
	if err != nil {
		return nil, nil, account.ErrAccountNotFound
	}
	if a.ID == senderID {
		return a, b, nil
	}
	return b, a, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
