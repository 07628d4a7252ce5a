// Package auth provides login, token issuance and token introspection.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/domain/user"
	"github.com/mhasanin/digibank/pkg/repository"
	"github.com/mhasanin/digibank/pkg/utils"
)

// Service authenticates users and issues HS256 JWTs.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

// New creates an auth service.
func New(uow repository.UnitOfWork, cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// dummyHash is compared against when the identity is unknown, so login
// latency does not reveal whether a user exists.
const dummyHash = "$2a$14$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Login authenticates by username or email plus password. Unverified users
// are rejected with user.ErrUserNotVerified.
func (s *Service) Login(ctx context.Context, identity, password string) (*user.User, error) {
	log := s.logger.With("context", "Login")
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	var u *user.User
	if utils.IsEmail(identity) {
		u, err = repo.GetByEmail(ctx, identity)
	} else {
		u, err = repo.GetByUsername(ctx, identity)
	}
	if err != nil || u == nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		log.Error("Login failed", "error", user.ErrUserUnauthorized)
		return nil, user.ErrUserUnauthorized
	}
	if !utils.CheckPasswordHash(password, u.HashedPassword) {
		log.Error("Login failed", "userID", u.ID, "error", user.ErrUserUnauthorized)
		return nil, user.ErrUserUnauthorized
	}
	if !u.Verified {
		log.Warn("Login rejected for unverified user", "userID", u.ID)
		return nil, user.ErrUserNotVerified
	}
	log.Info("Login successful", "userID", u.ID, "role", u.Role)
	return u, nil
}

// GenerateToken issues a JWT for an authenticated user.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"email":    u.Email,
		"role":     string(u.Role),
		"exp":      time.Now().Add(s.cfg.Expiry).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("GenerateToken failed", "userID", u.ID, "error", err)
		return "", err
	}
	return tokenString, nil
}

// GenerateATMToken issues a short-lived session for a card holder after a
// successful ATM login. The token carries the card and account identities.
func (s *Service) GenerateATMToken(userID, cardID, accountID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID.String(),
		"card_id":    cardID.String(),
		"account_id": accountID.String(),
		"role":       "atm",
		"exp":        time.Now().Add(s.cfg.ATMExpiry).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Secret))
}

// GetCurrentUserID extracts the user ID from a verified token.
func (s *Service) GetCurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return id, nil
}

// GetRole extracts the role claim from a verified token.
func (s *Service) GetRole(token *jwt.Token) (user.Role, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", user.ErrUserUnauthorized
	}
	role, ok := claims["role"].(string)
	if !ok {
		return "", user.ErrUserUnauthorized
	}
	return user.Role(role), nil
}

// ClaimUUID reads a UUID claim such as card_id or account_id from a token.
func ClaimUUID(token *jwt.Token, claim string) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid token claims")
	}
	raw, ok := claims[claim].(string)
	if !ok {
		return uuid.Nil, errors.New("missing claim: " + claim)
	}
	return uuid.Parse(raw)
}
