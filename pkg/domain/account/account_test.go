package account

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSavingDefaults(t *testing.T) {
	assert := assert.New(t)

	a, err := New().WithUserID(uuid.New()).WithType(TypeSaving).Build()
	require.NoError(t, err)
	assert.Equal(TypeSaving, a.Type)
	assert.Equal(int64(0), a.MinBalance, "Savings accounts have no balance floor")
	assert.Equal(DefaultMonthlyTxLimit, a.MonthlyTxLimit)
	assert.Equal(StatusActive, a.Status)
}

func TestBuildCurrentDefaults(t *testing.T) {
	assert := assert.New(t)

	a, err := New().WithUserID(uuid.New()).WithType(TypeCurrent).Build()
	require.NoError(t, err)
	assert.Equal(MinBalanceCurrent, a.MinBalance)
	assert.Equal(0, a.MonthlyTxLimit, "Current accounts are uncapped per month")
}

func TestBuildRequiresOwner(t *testing.T) {
	_, err := New().Build()
	assert.Error(t, err, "Building without a user ID should fail")
}

func TestBuildRejectsUnknownType(t *testing.T) {
	_, err := New().WithUserID(uuid.New()).WithType(Type("checking")).Build()
	assert.ErrorIs(t, err, ErrInvalidAccountType)
}

func TestGenerateNumberFormat(t *testing.T) {
	assert := assert.New(t)

	n := GenerateNumber()
	assert.Len(n, 14)
	assert.True(strings.HasPrefix(n, "6010"), "Account numbers carry the bank prefix")
	for _, r := range n {
		assert.True(r >= '0' && r <= '9', "Account numbers are all digits")
	}
}

func TestValidateDebitSaving(t *testing.T) {
	assert := assert.New(t)

	a, err := New().WithUserID(uuid.New()).WithType(TypeSaving).WithBalance(500).Build()
	require.NoError(t, err)

	assert.NoError(a.ValidateDebit(500), "Savings may be drained to zero")
	assert.ErrorIs(a.ValidateDebit(600), ErrInsufficientBalance)
	assert.ErrorIs(a.ValidateDebit(0), ErrAmountMustBePositive)
	assert.ErrorIs(a.ValidateDebit(-10), ErrAmountMustBePositive)
}

func TestValidateDebitCurrentMinBalance(t *testing.T) {
	assert := assert.New(t)

	a, err := New().WithUserID(uuid.New()).WithType(TypeCurrent).WithBalance(15_000).Build()
	require.NoError(t, err)

	assert.NoError(a.ValidateDebit(4_000), "Debit leaving 11_000 stays above the floor")
	assert.NoError(a.ValidateDebit(5_000), "Debit landing exactly on the floor is allowed")
	assert.ErrorIs(a.ValidateDebit(6_000), ErrBelowMinimumBalance,
		"Funds exist but the floor would be breached")
	assert.ErrorIs(a.ValidateDebit(20_000), ErrInsufficientBalance)
}

func TestValidateDebitInactive(t *testing.T) {
	a, err := New().WithUserID(uuid.New()).WithStatus(StatusSuspended).WithBalance(1_000).Build()
	require.NoError(t, err)

	assert.ErrorIs(t, a.ValidateDebit(100), ErrAccountNotActive)
}

func TestDebitCredit(t *testing.T) {
	assert := assert.New(t)

	a, err := New().WithUserID(uuid.New()).WithBalance(1_000).Build()
	require.NoError(t, err)

	assert.NoError(a.Debit(300))
	assert.Equal(int64(700), a.Balance)
	assert.NoError(a.Credit(50))
	assert.Equal(int64(750), a.Balance)

	assert.ErrorIs(a.Debit(10_000), ErrInsufficientBalance)
	assert.Equal(int64(750), a.Balance, "Balance is unchanged after a failed debit")
}

func TestValidateDepositInactive(t *testing.T) {
	a, err := New().WithUserID(uuid.New()).WithStatus(StatusInactive).Build()
	require.NoError(t, err)

	assert.ErrorIs(t, a.ValidateDeposit(100), ErrAccountNotActive)
}

func TestDailyDebitLimitPerType(t *testing.T) {
	assert := assert.New(t)

	saving, err := New().WithUserID(uuid.New()).WithType(TypeSaving).Build()
	require.NoError(t, err)
	current, err := New().WithUserID(uuid.New()).WithType(TypeCurrent).Build()
	require.NoError(t, err)

	assert.Equal(DailyDebitLimitSaving, saving.DailyDebitLimit())
	assert.Equal(DailyDebitLimitCurrent, current.DailyDebitLimit())
}

func TestValidateOwner(t *testing.T) {
	owner := uuid.New()
	a, err := New().WithUserID(owner).Build()
	require.NoError(t, err)

	assert.NoError(t, a.ValidateOwner(owner))
	assert.ErrorIs(t, a.ValidateOwner(uuid.New()), ErrNotOwner)
}
