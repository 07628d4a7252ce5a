// Package card provides card issuance, the OTP-gated PIN lifecycle and the
// PIN verification shared by transfers and ATM operations.
package card

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/domain/card"
	otpdomain "github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/eventbus"
	"github.com/mhasanin/digibank/pkg/repository"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	"github.com/mhasanin/digibank/pkg/utils"
)

// Service provides business logic for cards and PIN checks.
type Service struct {
	uow    repository.UnitOfWork
	otps   *otpsvc.Service
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a card service.
func New(uow repository.UnitOfWork, otps *otpsvc.Service, bus eventbus.Bus, logger *slog.Logger) *Service {
	return &Service{uow: uow, otps: otps, bus: bus, logger: logger}
}

// Request creates a card request for one of the caller's active accounts.
// The card number is assigned now; the card activates on admin approval.
func (s *Service) Request(ctx context.Context, userID, accountID uuid.UUID) (c *card.Card, err error) {
	log := s.logger.With("context", "Request", "userID", userID, "accountID", accountID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.Get(ctx, accountID)
		if err != nil {
			return account.ErrAccountNotFound
		}
		if err := a.ValidateOwner(userID); err != nil {
			return err
		}
		if a.Status != account.StatusActive {
			return account.ErrAccountNotActive
		}
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		if existing, _ := cards.GetActiveByUser(ctx, userID); existing != nil && existing.AccountID == accountID {
			return card.ErrCardAlreadyIssued
		}
		c = card.NewCard(userID, accountID)
		return cards.Create(ctx, c)
	})
	if err != nil {
		log.Error("Request failed", "error", err)
		return nil, err
	}
	log.Info("Card requested", "cardID", c.ID, "number", utils.MaskNumber(c.Number))
	return c, nil
}

// Approve activates a requested card.
func (s *Service) Approve(ctx context.Context, cardID uuid.UUID) (*card.Card, error) {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	c, err := repo.Get(ctx, cardID)
	if err != nil {
		return nil, card.ErrCardNotFound
	}
	if c.Status != card.StatusRequested {
		return nil, card.ErrCardNotActive
	}
	c.Status = card.StatusActive
	if err := repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Card approved", "cardID", c.ID)
	return c, nil
}

// ListRequested returns cards awaiting approval.
func (s *Service) ListRequested(ctx context.Context) ([]*card.Card, error) {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListRequested(ctx)
}

// RequestPINSet emails a code authorizing a PIN change on the card.
func (s *Service) RequestPINSet(ctx context.Context, userID, cardID uuid.UUID) error {
	c, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	email, err := s.userEmail(ctx, c.UserID)
	if err != nil {
		return err
	}
	_, err = s.otps.Issue(ctx, userID, email, otpdomain.PurposePINSet)
	return err
}

// SetPIN consumes a pin_set code and stores the new PIN hash.
func (s *Service) SetPIN(ctx context.Context, userID, cardID uuid.UUID, code, pin string) error {
	log := s.logger.With("context", "SetPIN", "cardID", cardID)
	if !validPIN(pin) {
		return card.ErrPINMismatch
	}
	c, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if c.Status != card.StatusActive {
		return card.ErrCardNotActive
	}
	if err := s.otps.Verify(ctx, userID, otpdomain.PurposePINSet, code); err != nil {
		return err
	}
	hash, err := utils.HashPIN(pin)
	if err != nil {
		return err
	}
	c.PINHash = hash
	repo, err := s.uow.CardRepository()
	if err != nil {
		return err
	}
	if err := repo.Update(ctx, c); err != nil {
		log.Error("SetPIN failed on update", "error", err)
		return err
	}
	log.Info("PIN set")
	return nil
}

// VerifyPIN runs the shared PIN check on a card. On mismatch the retry
// counter advances with a conditional update that survives the caller's
// rollback; the third consecutive failure blocks the card. On match the
// counter resets to zero unconditionally.
func (s *Service) VerifyPIN(ctx context.Context, c *card.Card, pin string) error {
	log := s.logger.With("context", "VerifyPIN", "cardID", c.ID)
	if err := c.Usable(); err != nil {
		return err
	}
	repo, err := s.uow.CardRepository()
	if err != nil {
		return err
	}
	if utils.CheckPINHash(pin, c.PINHash) {
		if c.RetryCount != 0 {
			if err := repo.ResetRetry(ctx, c.ID); err != nil {
				log.Warn("Retry counter reset failed", "error", err)
			}
			c.RetryCount = 0
		}
		return nil
	}

	from := c.RetryCount
	blocked := c.RegisterFailure()
	if err := repo.UpdateRetry(ctx, c.ID, from, c.RetryCount, c.Blocked, c.BlockType); err != nil {
		log.Error("Retry counter update failed", "error", err)
		return err
	}
	if blocked {
		log.Warn("Card blocked after PIN failures")
		s.publishBlocked(ctx, c)
		return card.ErrCardBlocked
	}
	log.Warn("PIN mismatch", "retryCount", c.RetryCount)
	return card.ErrPINMismatch
}

// VerifyUserPIN finds the user's active card and runs the PIN check.
// Used by the transfer flow, which identifies the card by its owner.
func (s *Service) VerifyUserPIN(ctx context.Context, userID uuid.UUID, pin string) (*card.Card, error) {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	c, err := repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, card.ErrCardNotFound
	}
	if err := s.VerifyPIN(ctx, c, pin); err != nil {
		return nil, err
	}
	return c, nil
}

// Block blocks the caller's card.
func (s *Service) Block(ctx context.Context, userID, cardID uuid.UUID, blockType card.BlockType) error {
	c, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if blockType != card.BlockTemporary && blockType != card.BlockPermanent {
		blockType = card.BlockTemporary
	}
	c.Block(blockType)
	repo, err := s.uow.CardRepository()
	if err != nil {
		return err
	}
	return repo.Update(ctx, c)
}

// RequestUnblock emails a code authorizing an unblock of the card.
func (s *Service) RequestUnblock(ctx context.Context, userID, cardID uuid.UUID) error {
	c, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if !c.Blocked {
		return card.ErrCardNotFound
	}
	email, err := s.userEmail(ctx, c.UserID)
	if err != nil {
		return err
	}
	_, err = s.otps.Issue(ctx, userID, email, otpdomain.PurposeCardUnblock)
	return err
}

// Unblock consumes a card_unblock code, clears the block and resets the
// retry counter.
func (s *Service) Unblock(ctx context.Context, userID, cardID uuid.UUID, code string) error {
	c, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if err := s.otps.Verify(ctx, userID, otpdomain.PurposeCardUnblock, code); err != nil {
		return err
	}
	c.Unblock()
	repo, err := s.uow.CardRepository()
	if err != nil {
		return err
	}
	if err := repo.Update(ctx, c); err != nil {
		return err
	}
	s.logger.Info("Card unblocked", "cardID", c.ID)
	return nil
}

// TellerUnblock clears a temporary block without an OTP. Permanent blocks
// stay in place.
func (s *Service) TellerUnblock(ctx context.Context, cardID uuid.UUID) error {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return err
	}
	c, err := repo.Get(ctx, cardID)
	if err != nil {
		return card.ErrCardNotFound
	}
	if c.BlockType == card.BlockPermanent {
		return card.ErrPermanentBlock
	}
	c.Unblock()
	return repo.Update(ctx, c)
}

// ListByUser returns the caller's cards.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) (*card.Card, error) {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	return repo.GetActiveByUser(ctx, userID)
}

func (s *Service) ownedCard(ctx context.Context, userID, cardID uuid.UUID) (*card.Card, error) {
	repo, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	c, err := repo.Get(ctx, cardID)
	if err != nil {
		return nil, card.ErrCardNotFound
	}
	if c.UserID != userID {
		return nil, card.ErrNotCardOwner
	}
	return c, nil
}

func (s *Service) userEmail(ctx context.Context, userID uuid.UUID) (string, error) {
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

func (s *Service) publishBlocked(ctx context.Context, c *card.Card) {
	email, err := s.userEmail(ctx, c.UserID)
	if err != nil {
		email = ""
	}
	if err := s.bus.Publish(ctx, eventbus.CardBlocked{
		UserID:     c.UserID,
		CardID:     c.ID,
		Email:      email,
		CardNumber: utils.MaskNumber(c.Number),
	}); err != nil {
		s.logger.Warn("CardBlocked event publish failed", "error", err)
	}
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
