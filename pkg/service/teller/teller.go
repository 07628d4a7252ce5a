// Package teller provides the cashier surface: counter deposits and
// withdrawals, card unblocking and application review.
package teller

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/account"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
)

// Service provides teller operations. Authorization (the teller role) is
// enforced at the API layer.
type Service struct {
	accounts *accountsvc.Service
	cards    *cardsvc.Service
	logger   *slog.Logger
}

// New creates a teller service.
func New(accounts *accountsvc.Service, cards *cardsvc.Service, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, cards: cards, logger: logger}
}

// DepositCash credits counter cash to the account with the given number.
func (s *Service) DepositCash(
	ctx context.Context,
	accountNumber string,
	amount int64,
) (*account.Transaction, error) {
	return s.accounts.Deposit(ctx, accountNumber, amount, "teller cash deposit")
}

// WithdrawCash debits counter cash from the account with the given number.
// The account-type balance rules apply.
func (s *Service) WithdrawCash(
	ctx context.Context,
	accountNumber string,
	amount int64,
) (*account.Transaction, error) {
	a, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return s.accounts.Withdraw(ctx, a.ID, amount, "teller cash withdrawal")
}

// UnblockCard clears a temporary block on a card.
func (s *Service) UnblockCard(ctx context.Context, cardID uuid.UUID) error {
	return s.cards.TellerUnblock(ctx, cardID)
}

// PendingApplications returns applications awaiting applicant verification
// or admin approval.
func (s *Service) PendingApplications(ctx context.Context) ([]*account.Application, error) {
	verified, err := s.accounts.ListApplications(ctx, account.ApplicationVerified)
	if err != nil {
		return nil, err
	}
	pending, err := s.accounts.ListApplications(ctx, account.ApplicationPending)
	if err != nil {
		return nil, err
	}
	return append(verified, pending...), nil
}
