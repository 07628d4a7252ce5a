// Package user provides signup, email verification and password recovery.
package user

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	otpdomain "github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/domain/user"
	"github.com/mhasanin/digibank/pkg/repository"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	"github.com/mhasanin/digibank/pkg/utils"
)

// Service provides business logic for user onboarding and recovery.
type Service struct {
	uow    repository.UnitOfWork
	otps   *otpsvc.Service
	logger *slog.Logger
}

// New creates a user service.
func New(uow repository.UnitOfWork, otps *otpsvc.Service, logger *slog.Logger) *Service {
	return &Service{uow: uow, otps: otps, logger: logger}
}

// Signup registers an unverified customer and emails a verification code.
func (s *Service) Signup(
	ctx context.Context,
	username, email, password string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Signup", "username", username)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if existing, _ := repo.GetByUsername(ctx, username); existing != nil {
			return user.ErrUserExists
		}
		if existing, _ := repo.GetByEmail(ctx, email); existing != nil {
			return user.ErrUserExists
		}
		u, err = user.New(username, email, password)
		if err != nil {
			return err
		}
		return repo.Create(ctx, u)
	})
	if err != nil {
		log.Error("Signup failed", "error", err)
		return nil, err
	}
	if _, err := s.otps.Issue(ctx, u.ID, u.Email, otpdomain.PurposeSignupVerify); err != nil {
		// The user can request a fresh code; signup itself stands.
		log.Warn("Signup verification code not issued", "error", err)
	}
	log.Info("Signup successful", "userID", u.ID)
	return u, nil
}

// VerifySignup consumes a signup code and marks the user verified.
func (s *Service) VerifySignup(ctx context.Context, email, code string) error {
	log := s.logger.With("context", "VerifySignup")
	repo, err := s.uow.UserRepository()
	if err != nil {
		return err
	}
	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("VerifySignup failed", "error", err)
		return user.ErrUserNotFound
	}
	if err := s.otps.Verify(ctx, u.ID, otpdomain.PurposeSignupVerify, code); err != nil {
		return err
	}
	u.Verified = true
	if err := repo.Update(ctx, u); err != nil {
		log.Error("VerifySignup failed on update", "error", err)
		return err
	}
	log.Info("User verified", "userID", u.ID)
	return nil
}

// RequestPasswordReset emails a reset code if the address is registered.
// An unknown address is not an error, to avoid account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	log := s.logger.With("context", "RequestPasswordReset")
	repo, err := s.uow.UserRepository()
	if err != nil {
		return err
	}
	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		log.Info("Password reset requested for unknown email")
		return nil
	}
	_, err = s.otps.Issue(ctx, u.ID, u.Email, otpdomain.PurposePasswordReset)
	return err
}

// ResetPassword consumes a reset code and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	log := s.logger.With("context", "ResetPassword")
	repo, err := s.uow.UserRepository()
	if err != nil {
		return err
	}
	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return user.ErrUserNotFound
	}
	if err := s.otps.Verify(ctx, u.ID, otpdomain.PurposePasswordReset, code); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.HashedPassword = hashed
	if err := repo.Update(ctx, u); err != nil {
		log.Error("ResetPassword failed on update", "error", err)
		return err
	}
	log.Info("Password reset", "userID", u.ID)
	return nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// List returns a page of users, for the admin support surface.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, limit, offset)
}
