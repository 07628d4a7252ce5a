package teller_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrabus "github.com/mhasanin/digibank/infra/eventbus"
	"github.com/mhasanin/digibank/pkg/domain/account"
	userdomain "github.com/mhasanin/digibank/pkg/domain/user"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	tellersvc "github.com/mhasanin/digibank/pkg/service/teller"
	"github.com/mhasanin/digibank/pkg/testutils"
)

func newTellerService(t *testing.T) (*tellersvc.Service, *accountsvc.Service, *testutils.FakeUoW, *userdomain.User) {
	t.Helper()
	uow := testutils.NewFakeUoW()
	logger := testutils.DiscardLogger()
	bus := infrabus.NewMemoryBus(logger)
	otps := otpsvc.New(uow, bus, 5*time.Minute, logger)
	cards := cardsvc.New(uow, otps, bus, logger)
	accounts := accountsvc.New(uow, cards, otps, bus, logger)
	teller := tellersvc.New(accounts, cards, logger)

	u, err := userdomain.NewWithRole("holder", "holder@example.com", "secret1", userdomain.RoleCustomer)
	require.NoError(t, err)
	uow.SeedUser(u)
	return teller, accounts, uow, u
}

func TestCashRoundTrip(t *testing.T) {
	assert := assert.New(t)
	teller, accounts, uow, u := newTellerService(t)
	ctx := context.Background()

	a, err := accounts.OpenAccount(ctx, u.ID, account.TypeSaving)
	require.NoError(t, err)

	dep, err := teller.DepositCash(ctx, a.Number, 20_000)
	require.NoError(t, err)
	assert.Equal(account.TxDeposit, dep.Type)
	assert.Equal(int64(20_000), uow.Account(a.ID).Balance)

	wd, err := teller.WithdrawCash(ctx, a.Number, 8_000)
	require.NoError(t, err)
	assert.Equal(account.TxWithdraw, wd.Type)
	assert.Equal(int64(12_000), uow.Account(a.ID).Balance)
}

func TestWithdrawCashRespectsCurrentFloor(t *testing.T) {
	teller, accounts, _, u := newTellerService(t)
	ctx := context.Background()

	a, err := accounts.OpenAccount(ctx, u.ID, account.TypeCurrent)
	require.NoError(t, err)
	_, err = teller.DepositCash(ctx, a.Number, 15_000)
	require.NoError(t, err)

	_, err = teller.WithdrawCash(ctx, a.Number, 6_000)
	assert.ErrorIs(t, err, account.ErrBelowMinimumBalance)
}

func TestPendingApplications(t *testing.T) {
	teller, accounts, uow, u := newTellerService(t)
	ctx := context.Background()

	ap, err := accounts.SubmitApplication(ctx, u.ID, account.TypeSaving, "A1234567")
	require.NoError(t, err)
	require.NoError(t, ap.Verify())
	uow.SeedApplication(ap)

	other, err := account.NewApplication(u.ID, account.TypeCurrent, "A1234567")
	require.NoError(t, err)
	uow.SeedApplication(other)

	apps, err := teller.PendingApplications(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 2, "Both verified and pending applications show up")
}
