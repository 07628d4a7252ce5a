// Package atm provides the ATM surface: card+PIN login, cash withdrawal and
// balance check. All operations use the shared PIN retry/lockout rules.
package atm

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/domain/card"
	"github.com/mhasanin/digibank/pkg/repository"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
)

// Service provides ATM operations on top of the card and account services.
type Service struct {
	uow      repository.UnitOfWork
	cards    *cardsvc.Service
	accounts *accountsvc.Service
	logger   *slog.Logger
}

// New creates an ATM service.
func New(
	uow repository.UnitOfWork,
	cards *cardsvc.Service,
	accounts *accountsvc.Service,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cards: cards, accounts: accounts, logger: logger}
}

// Login verifies a card number and PIN and returns the card, for the API
// layer to mint an ATM session token.
func (s *Service) Login(ctx context.Context, cardNumber, pin string) (*card.Card, error) {
	log := s.logger.With("context", "Login")
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	c, err := repo.GetByNumber(ctx, cardNumber)
	if err != nil {
		return nil, card.ErrCardNotFound
	}
	if err := s.cards.VerifyPIN(ctx, c, pin); err != nil {
		log.Warn("ATM login PIN check failed", "error", err)
		return nil, err
	}
	log.Info("ATM login successful", "cardID", c.ID)
	return c, nil
}

// Withdraw dispenses cash from the card's account after a PIN check. The
// minimum amount and the daily debit limit both apply.
func (s *Service) Withdraw(
	ctx context.Context,
	cardID uuid.UUID,
	pin string,
	amount int64,
) (*account.Transaction, error) {
	log := s.logger.With("context", "Withdraw", "cardID", cardID, "amount", amount)
	c, err := s.verifiedCard(ctx, cardID, pin)
	if err != nil {
		return nil, err
	}
	if amount < account.MinTransferAmount {
		return nil, account.ErrAmountBelowMinimum
	}
	a, err := s.accountFor(ctx, c)
	if err != nil {
		return nil, err
	}
	tx, err := s.accounts.WithdrawWithDailyLimit(ctx, a.ID, amount, "ATM withdrawal")
	if err != nil {
		log.Error("ATM withdrawal failed", "error", err)
		return nil, err
	}
	log.Info("ATM withdrawal successful", "transactionID", tx.ID)
	return tx, nil
}

// Balance returns the card account's balance after a PIN check.
func (s *Service) Balance(ctx context.Context, cardID uuid.UUID, pin string) (int64, error) {
	c, err := s.verifiedCard(ctx, cardID, pin)
	if err != nil {
		return 0, err
	}
	a, err := s.accountFor(ctx, c)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

func (s *Service) verifiedCard(ctx context.Context, cardID uuid.UUID, pin string) (*card.Card, error) {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	c, err := repo.Get(ctx, cardID)
	if err != nil {
		return nil, card.ErrCardNotFound
	}
	if err := s.cards.VerifyPIN(ctx, c, pin); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) accountFor(ctx context.Context, c *card.Card) (*account.Account, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	a, err := accounts.Get(ctx, c.AccountID)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	if a.Status != account.StatusActive {
		return nil, account.ErrAccountNotActive
	}
	return a, nil
}
