package atm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrabus "github.com/mhasanin/digibank/infra/eventbus"
	"github.com/mhasanin/digibank/pkg/domain/account"
	carddomain "github.com/mhasanin/digibank/pkg/domain/card"
	userdomain "github.com/mhasanin/digibank/pkg/domain/user"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	atmsvc "github.com/mhasanin/digibank/pkg/service/atm"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	"github.com/mhasanin/digibank/pkg/testutils"
	"github.com/mhasanin/digibank/pkg/utils"
)

const atmPIN = "1234"

type atmFixture struct {
	uow     *testutils.FakeUoW
	svc     *atmsvc.Service
	card    *carddomain.Card
	account *account.Account
}

func newATMFixture(t *testing.T, balance int64) *atmFixture {
	t.Helper()
	uow := testutils.NewFakeUoW()
	logger := testutils.DiscardLogger()
	bus := infrabus.NewMemoryBus(logger)
	otps := otpsvc.New(uow, bus, 5*time.Minute, logger)
	cards := cardsvc.New(uow, otps, bus, logger)
	accounts := accountsvc.New(uow, cards, otps, bus, logger)
	svc := atmsvc.New(uow, cards, accounts, logger)

	u, err := userdomain.NewWithRole("holder", "holder@example.com", "secret1", userdomain.RoleCustomer)
	require.NoError(t, err)
	uow.SeedUser(u)

	a, err := account.New().WithUserID(u.ID).WithBalance(balance).Build()
	require.NoError(t, err)
	uow.SeedAccount(a)

	c := carddomain.NewCard(u.ID, a.ID)
	c.Status = carddomain.StatusActive
	hash, err := utils.HashPIN(atmPIN)
	require.NoError(t, err)
	c.PINHash = hash
	uow.SeedCard(c)

	return &atmFixture{uow: uow, svc: svc, card: c, account: a}
}

func TestATMLogin(t *testing.T) {
	assert := assert.New(t)
	f := newATMFixture(t, 50_000)
	ctx := context.Background()

	c, err := f.svc.Login(ctx, f.card.Number, atmPIN)
	require.NoError(t, err)
	assert.Equal(f.card.ID, c.ID)

	_, err = f.svc.Login(ctx, "4000000000000000", atmPIN)
	assert.ErrorIs(err, carddomain.ErrCardNotFound)
}

func TestATMLoginWrongPINCountsRetry(t *testing.T) {
	assert := assert.New(t)
	f := newATMFixture(t, 50_000)

	_, err := f.svc.Login(context.Background(), f.card.Number, "0000")
	assert.ErrorIs(err, carddomain.ErrPINMismatch)
	assert.Equal(1, f.uow.Card(f.card.ID).RetryCount)
}

func TestATMWithdraw(t *testing.T) {
	assert := assert.New(t)
	f := newATMFixture(t, 50_000)

	tx, err := f.svc.Withdraw(context.Background(), f.card.ID, atmPIN, 5_000)
	require.NoError(t, err)
	assert.Equal(account.TxWithdraw, tx.Type)
	assert.Equal(int64(45_000), tx.BalanceAfter)
	assert.Equal(int64(45_000), f.uow.Account(f.account.ID).Balance)
}

func TestATMWithdrawBelowMinimum(t *testing.T) {
	f := newATMFixture(t, 50_000)

	_, err := f.svc.Withdraw(context.Background(), f.card.ID, atmPIN, account.MinTransferAmount-1)
	assert.ErrorIs(t, err, account.ErrAmountBelowMinimum)
}

func TestATMWithdrawDailyLimit(t *testing.T) {
	f := newATMFixture(t, 500_000)

	prior := account.NewTransaction(
		account.TxWithdraw, &f.account.ID, nil, 98_000, 402_000, "ATM withdrawal")
	f.uow.SeedTransaction(prior)

	_, err := f.svc.Withdraw(context.Background(), f.card.ID, atmPIN, 5_000)
	assert.ErrorIs(t, err, account.ErrDailyLimitExceeded)
}

// The daily-limit sum runs inside the withdrawal transaction, so each
// withdrawal sees the rows the previous ones wrote.
func TestATMWithdrawSequentialDailyCap(t *testing.T) {
	assert := assert.New(t)
	f := newATMFixture(t, 500_000)
	ctx := context.Background()

	_, err := f.svc.Withdraw(ctx, f.card.ID, atmPIN, 60_000)
	require.NoError(t, err)

	// 60_000 of the 100_000 savings cap is spent, 50_000 no longer fits.
	_, err = f.svc.Withdraw(ctx, f.card.ID, atmPIN, 50_000)
	assert.ErrorIs(err, account.ErrDailyLimitExceeded)

	_, err = f.svc.Withdraw(ctx, f.card.ID, atmPIN, 40_000)
	require.NoError(t, err)

	assert.EqualValues(400_000, f.uow.Account(f.account.ID).Balance)
	assert.Len(f.uow.Transactions(), 2)
}

func TestATMWithdrawInactiveAccount(t *testing.T) {
	f := newATMFixture(t, 50_000)
	f.account.Status = account.StatusSuspended
	f.uow.SeedAccount(f.account)

	_, err := f.svc.Withdraw(context.Background(), f.card.ID, atmPIN, 5_000)
	assert.ErrorIs(t, err, account.ErrAccountNotActive)
}

func TestATMBalance(t *testing.T) {
	f := newATMFixture(t, 50_000)

	balance, err := f.svc.Balance(context.Background(), f.card.ID, atmPIN)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), balance)

	_, err = f.svc.Balance(context.Background(), f.card.ID, "0000")
	assert.ErrorIs(t, err, carddomain.ErrPINMismatch)
}
