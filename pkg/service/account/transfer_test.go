package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrabus "github.com/mhasanin/digibank/infra/eventbus"
	"github.com/mhasanin/digibank/pkg/domain/account"
	carddomain "github.com/mhasanin/digibank/pkg/domain/card"
	userdomain "github.com/mhasanin/digibank/pkg/domain/user"
	"github.com/mhasanin/digibank/pkg/eventbus"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	"github.com/mhasanin/digibank/pkg/testutils"
	"github.com/mhasanin/digibank/pkg/utils"
)

const testPIN = "1234"

type transferFixture struct {
	uow      *testutils.FakeUoW
	bus      *infrabus.MemoryBus
	svc      *accountsvc.Service
	sender   *userdomain.User
	senderAc *account.Account
	card     *carddomain.Card
	receiver *account.Account
}

func newTransferFixture(t *testing.T, senderType account.Type, senderBalance int64) *transferFixture {
	t.Helper()
	uow := testutils.NewFakeUoW()
	logger := testutils.DiscardLogger()
	bus := infrabus.NewMemoryBus(logger)
	otps := otpsvc.New(uow, bus, 5*time.Minute, logger)
	cards := cardsvc.New(uow, otps, bus, logger)
	svc := accountsvc.New(uow, cards, otps, bus, logger)

	sender, err := userdomain.NewWithRole("sender", "sender@example.com", "secret1", userdomain.RoleCustomer)
	require.NoError(t, err)
	uow.SeedUser(sender)

	senderAc, err := account.New().
		WithUserID(sender.ID).
		WithType(senderType).
		WithBalance(senderBalance).
		Build()
	require.NoError(t, err)
	uow.SeedAccount(senderAc)

	c := carddomain.NewCard(sender.ID, senderAc.ID)
	c.Status = carddomain.StatusActive
	hash, err := utils.HashPIN(testPIN)
	require.NoError(t, err)
	c.PINHash = hash
	uow.SeedCard(c)

	receiver, err := account.New().WithUserID(uuid.New()).WithBalance(1_000).Build()
	require.NoError(t, err)
	uow.SeedAccount(receiver)

	return &transferFixture{
		uow: uow, bus: bus, svc: svc,
		sender: sender, senderAc: senderAc, card: c, receiver: receiver,
	}
}

func (f *transferFixture) input(amount int64) accountsvc.TransferInput {
	return accountsvc.TransferInput{
		UserID:         f.sender.ID,
		SenderID:       f.senderAc.ID,
		ReceiverNumber: f.receiver.Number,
		Amount:         amount,
		PIN:            testPIN,
	}
}

func TestTransferSuccess(t *testing.T) {
	assert := assert.New(t)
	f := newTransferFixture(t, account.TypeSaving, 50_000)

	res, err := f.svc.Transfer(context.Background(), f.input(5_000))
	require.NoError(t, err)

	assert.Equal(int64(45_000), res.Sender.Balance)
	assert.Equal(int64(6_000), res.Receiver.Balance)
	assert.Equal(account.TxDebit, res.Debit.Type)
	assert.Equal(account.TxCredit, res.Credit.Type)
	assert.Equal(account.DailyDebitLimitSaving-5_000, res.DailyRemaining)

	assert.Equal(int64(45_000), f.uow.Account(f.senderAc.ID).Balance)
	assert.Equal(int64(6_000), f.uow.Account(f.receiver.ID).Balance)
	assert.Len(f.uow.Transactions(), 2, "One debit row and one credit row")

	var completed bool
	for _, e := range f.bus.Published() {
		if tc, ok := e.(eventbus.TransferCompleted); ok {
			completed = true
			assert.Equal(int64(5_000), tc.Amount)
		}
	}
	assert.True(completed, "A completed transfer publishes a notification")
}

func TestTransferSenderNotFound(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	in := f.input(5_000)
	in.SenderID = uuid.New()

	_, err := f.svc.Transfer(context.Background(), in)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestTransferNotOwner(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	in := f.input(5_000)
	in.UserID = uuid.New()

	_, err := f.svc.Transfer(context.Background(), in)
	assert.ErrorIs(t, err, account.ErrNotOwner)
}

func TestTransferSenderInactive(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	f.senderAc.Status = account.StatusSuspended
	f.uow.SeedAccount(f.senderAc)

	_, err := f.svc.Transfer(context.Background(), f.input(5_000))
	assert.ErrorIs(t, err, account.ErrAccountNotActive)
}

func TestTransferBalanceCheckedBeforePIN(t *testing.T) {
	assert := assert.New(t)
	f := newTransferFixture(t, account.TypeSaving, 1_000)
	in := f.input(5_000)
	in.PIN = "0000"

	_, err := f.svc.Transfer(context.Background(), in)
	assert.ErrorIs(err, account.ErrInsufficientBalance)
	assert.Zero(f.uow.Card(f.card.ID).RetryCount,
		"The PIN is not looked at when the balance cannot cover")
}

func TestTransferWrongPINCountsRetry(t *testing.T) {
	assert := assert.New(t)
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	in := f.input(5_000)
	in.PIN = "0000"

	_, err := f.svc.Transfer(context.Background(), in)
	assert.ErrorIs(err, carddomain.ErrPINMismatch)
	assert.Equal(1, f.uow.Card(f.card.ID).RetryCount,
		"Failed attempts are counted even though no transfer ran")
	assert.Equal(int64(50_000), f.uow.Account(f.senderAc.ID).Balance)
}

func TestTransferThirdWrongPINBlocksCard(t *testing.T) {
	assert := assert.New(t)
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	in := f.input(5_000)
	in.PIN = "0000"
	ctx := context.Background()

	_, err := f.svc.Transfer(ctx, in)
	assert.ErrorIs(err, carddomain.ErrPINMismatch)
	_, err = f.svc.Transfer(ctx, in)
	assert.ErrorIs(err, carddomain.ErrPINMismatch)
	_, err = f.svc.Transfer(ctx, in)
	assert.ErrorIs(err, carddomain.ErrCardBlocked)
	assert.True(f.uow.Card(f.card.ID).Blocked)

	// The right PIN no longer helps.
	_, err = f.svc.Transfer(ctx, f.input(5_000))
	assert.ErrorIs(err, carddomain.ErrCardBlocked)
}

func TestTransferReceiverNotFound(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	in := f.input(5_000)
	in.ReceiverNumber = "60100000000000"

	_, err := f.svc.Transfer(context.Background(), in)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestTransferReceiverInactive(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	f.receiver.Status = account.StatusInactive
	f.uow.SeedAccount(f.receiver)

	_, err := f.svc.Transfer(context.Background(), f.input(5_000))
	assert.ErrorIs(t, err, account.ErrAccountNotActive)
}

func TestTransferSameAccount(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)
	in := f.input(5_000)
	in.ReceiverNumber = f.senderAc.Number

	_, err := f.svc.Transfer(context.Background(), in)
	assert.ErrorIs(t, err, account.ErrSameAccount)
}

func TestTransferBelowMinimumAmount(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 50_000)

	_, err := f.svc.Transfer(context.Background(), f.input(account.MinTransferAmount-1))
	assert.ErrorIs(t, err, account.ErrAmountBelowMinimum)
}

func TestTransferCurrentMinimumBalanceFloor(t *testing.T) {
	f := newTransferFixture(t, account.TypeCurrent, 15_000)

	_, err := f.svc.Transfer(context.Background(), f.input(6_000))
	assert.ErrorIs(t, err, account.ErrBelowMinimumBalance)

	_, err = f.svc.Transfer(context.Background(), f.input(5_000))
	assert.NoError(t, err, "A transfer landing exactly on the floor is allowed")
}

func TestTransferDailyLimit(t *testing.T) {
	assert := assert.New(t)
	f := newTransferFixture(t, account.TypeSaving, 500_000)

	// A debit earlier today leaves too little headroom for this amount.
	prior := account.NewTransaction(
		account.TxDebit, &f.senderAc.ID, &f.receiver.ID, 98_000, 402_000, "transfer")
	f.uow.SeedTransaction(prior)

	_, err := f.svc.Transfer(context.Background(), f.input(5_000))
	assert.ErrorIs(err, account.ErrDailyLimitExceeded)
	assert.Equal(int64(500_000), f.uow.Account(f.senderAc.ID).Balance,
		"Nothing moves when the limit check fails")

	res, err := f.svc.Transfer(context.Background(), f.input(2_000))
	require.NoError(t, err)
	assert.Equal(account.DailyDebitLimitSaving-98_000-2_000, res.DailyRemaining)
}

func TestTransferMonthlyLimitForSaving(t *testing.T) {
	f := newTransferFixture(t, account.TypeSaving, 500_000)

	for i := 0; i < account.DefaultMonthlyTxLimit; i++ {
		prior := account.NewTransaction(
			account.TxDebit, &f.senderAc.ID, &f.receiver.ID, 100, 0, "transfer")
		f.uow.SeedTransaction(prior)
	}

	_, err := f.svc.Transfer(context.Background(), f.input(5_000))
	assert.ErrorIs(t, err, account.ErrMonthlyLimitExceeded)
}
