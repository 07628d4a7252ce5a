// Package otp issues and verifies one-time codes. Each issue invalidates all
// prior unconsumed codes of the same (user, purpose) and publishes an
// otp.issued event for out-of-band delivery.
package otp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/eventbus"
	"github.com/mhasanin/digibank/pkg/repository"
)

// Service issues and verifies one-time codes.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	ttl    time.Duration
	logger *slog.Logger
}

// New creates an OTP service with the given code validity window.
func New(uow repository.UnitOfWork, bus eventbus.Bus, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, ttl: ttl, logger: logger}
}

// Issue creates a fresh code for (user, purpose), invalidating any prior
// codes, and publishes it for email delivery. Delivery failure never fails
// the request.
func (s *Service) Issue(
	ctx context.Context,
	userID uuid.UUID,
	email string,
	purpose otp.Purpose,
) (o *otp.OTP, err error) {
	log := s.logger.With("context", "Issue", "userID", userID, "purpose", purpose)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.OTPRepository()
		if err != nil {
			return err
		}
		if err := repo.InvalidateAll(ctx, userID, purpose); err != nil {
			return err
		}
		o, err = otp.New(userID, purpose, s.ttl)
		if err != nil {
			return err
		}
		return repo.Create(ctx, o)
	})
	if err != nil {
		log.Error("Issue failed", "error", err)
		return nil, err
	}
	if err := s.bus.Publish(ctx, eventbus.OTPIssued{
		UserID:  userID,
		Email:   email,
		Code:    o.Code,
		Purpose: string(purpose),
	}); err != nil {
		log.Warn("OTP event publish failed", "error", err)
	}
	log.Info("OTP issued", "expiresAt", o.ExpiresAt)
	return o, nil
}

// Verify checks the supplied code for (user, purpose) and consumes it. The
// consume is a conditional update, so the same code cannot verify twice.
func (s *Service) Verify(
	ctx context.Context,
	userID uuid.UUID,
	purpose otp.Purpose,
	code string,
) error {
	log := s.logger.With("context", "Verify", "userID", userID, "purpose", purpose)
	repo, err := s.uow.OTPRepository()
	if err != nil {
		return err
	}
	o, err := repo.GetLatest(ctx, userID, purpose)
	if err != nil {
		log.Error("Verify failed", "error", err)
		return err
	}
	if err := o.Validate(code, time.Now()); err != nil {
		log.Error("Verify failed", "error", err)
		return err
	}
	if err := repo.Consume(ctx, o.ID); err != nil {
		log.Error("Verify failed on consume", "error", err)
		return err
	}
	log.Info("OTP verified")
	return nil
}
