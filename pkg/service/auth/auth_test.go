package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhasanin/digibank/pkg/config"
	userdomain "github.com/mhasanin/digibank/pkg/domain/user"
	authsvc "github.com/mhasanin/digibank/pkg/service/auth"
	"github.com/mhasanin/digibank/pkg/testutils"
)

func newAuthService(t *testing.T) (*authsvc.Service, *testutils.FakeUoW, *userdomain.User) {
	t.Helper()
	uow := testutils.NewFakeUoW()
	cfg := &config.Jwt{Secret: "test-secret", Expiry: time.Hour, ATMExpiry: 10 * time.Minute}
	svc := authsvc.New(uow, cfg, testutils.DiscardLogger())

	u, err := userdomain.NewWithRole("login", "login@example.com", "secret1", userdomain.RoleCustomer)
	require.NoError(t, err)
	uow.SeedUser(u)
	return svc, uow, u
}

func parseToken(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestLogin(t *testing.T) {
	assert := assert.New(t)
	svc, _, u := newAuthService(t)
	ctx := context.Background()

	got, err := svc.Login(ctx, "login", "secret1")
	require.NoError(t, err)
	assert.Equal(u.ID, got.ID)

	// Email works as the identity too.
	got, err = svc.Login(ctx, "login@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(u.ID, got.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "login", "wrong")
	assert.ErrorIs(t, err, userdomain.ErrUserUnauthorized)
}

func TestLoginUnknownIdentity(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "nobody", "secret1")
	assert.ErrorIs(t, err, userdomain.ErrUserUnauthorized)
}

func TestLoginUnverifiedUser(t *testing.T) {
	svc, uow, _ := newAuthService(t)

	pending, err := userdomain.New("pending", "pending@example.com", "secret1")
	require.NoError(t, err)
	uow.SeedUser(pending)

	_, err = svc.Login(context.Background(), "pending", "secret1")
	assert.ErrorIs(t, err, userdomain.ErrUserNotVerified)
}

func TestGenerateTokenClaims(t *testing.T) {
	assert := assert.New(t)
	svc, _, u := newAuthService(t)

	tokenString, err := svc.GenerateToken(u)
	require.NoError(t, err)

	claims := parseToken(t, tokenString)
	assert.Equal(u.ID.String(), claims["user_id"])
	assert.Equal("login", claims["username"])
	assert.Equal("customer", claims["role"])
}

func TestGenerateATMTokenClaims(t *testing.T) {
	assert := assert.New(t)
	svc, _, u := newAuthService(t)
	cardID := uuid.New()
	accountID := uuid.New()

	tokenString, err := svc.GenerateATMToken(u.ID, cardID, accountID)
	require.NoError(t, err)

	claims := parseToken(t, tokenString)
	assert.Equal("atm", claims["role"])
	assert.Equal(cardID.String(), claims["card_id"])
	assert.Equal(accountID.String(), claims["account_id"])
}

func TestClaimUUID(t *testing.T) {
	svc, _, u := newAuthService(t)
	cardID := uuid.New()

	tokenString, err := svc.GenerateATMToken(u.ID, cardID, uuid.New())
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	got, err := authsvc.ClaimUUID(token, "card_id")
	require.NoError(t, err)
	assert.Equal(t, cardID, got)

	_, err = authsvc.ClaimUUID(token, "missing")
	assert.Error(t, err)
}
