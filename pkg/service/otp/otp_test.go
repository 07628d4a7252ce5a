package otp_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhasanin/digibank/infra/eventbus"
	otpdomain "github.com/mhasanin/digibank/pkg/domain/otp"
	busdef "github.com/mhasanin/digibank/pkg/eventbus"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	"github.com/mhasanin/digibank/pkg/testutils"
)

func newService(uow *testutils.FakeUoW) (*otpsvc.Service, *eventbus.MemoryBus) {
	bus := eventbus.NewMemoryBus(testutils.DiscardLogger())
	return otpsvc.New(uow, bus, 5*time.Minute, testutils.DiscardLogger()), bus
}

func TestIssuePublishesCode(t *testing.T) {
	assert := assert.New(t)
	uow := testutils.NewFakeUoW()
	svc, bus := newService(uow)
	userID := uuid.New()

	o, err := svc.Issue(context.Background(), userID, "a@b.com", otpdomain.PurposeSignupVerify)
	require.NoError(t, err)
	assert.Len(o.Code, 6)

	events := bus.Published()
	require.Len(t, events, 1)
	issued, ok := events[0].(busdef.OTPIssued)
	require.True(t, ok)
	assert.Equal(o.Code, issued.Code)
	assert.Equal("a@b.com", issued.Email)
}

func TestIssueInvalidatesPriorCodes(t *testing.T) {
	assert := assert.New(t)
	uow := testutils.NewFakeUoW()
	svc, _ := newService(uow)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.Issue(ctx, userID, "a@b.com", otpdomain.PurposePINSet)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, userID, "a@b.com", otpdomain.PurposePINSet)
	require.NoError(t, err)

	latest := uow.LatestOTP(userID, otpdomain.PurposePINSet)
	require.NotNil(t, latest)
	assert.Equal(second.ID, latest.ID, "Only the newest code is outstanding")
}

func TestVerifyConsumesExactlyOnce(t *testing.T) {
	assert := assert.New(t)
	uow := testutils.NewFakeUoW()
	svc, _ := newService(uow)
	userID := uuid.New()
	ctx := context.Background()

	o, err := svc.Issue(ctx, userID, "a@b.com", otpdomain.PurposeCardUnblock)
	require.NoError(t, err)

	assert.NoError(svc.Verify(ctx, userID, otpdomain.PurposeCardUnblock, o.Code))
	assert.ErrorIs(svc.Verify(ctx, userID, otpdomain.PurposeCardUnblock, o.Code),
		otpdomain.ErrOTPNotFound, "A consumed code is no longer outstanding")
}

func TestVerifyMismatchAndExpiry(t *testing.T) {
	assert := assert.New(t)
	uow := testutils.NewFakeUoW()
	svc, _ := newService(uow)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.Issue(ctx, userID, "a@b.com", otpdomain.PurposePasswordReset)
	require.NoError(t, err)
	assert.ErrorIs(
		svc.Verify(ctx, userID, otpdomain.PurposePasswordReset, "wrong1"),
		otpdomain.ErrOTPMismatch)

	expired, err := otpdomain.New(userID, otpdomain.PurposeSignupVerify, -time.Minute)
	require.NoError(t, err)
	uow.SeedOTP(expired)
	assert.ErrorIs(
		svc.Verify(ctx, userID, otpdomain.PurposeSignupVerify, expired.Code),
		otpdomain.ErrOTPExpired)
}

func TestVerifyWithoutCode(t *testing.T) {
	uow := testutils.NewFakeUoW()
	svc, _ := newService(uow)

	err := svc.Verify(context.Background(), uuid.New(), otpdomain.PurposeSignupVerify, "123456")
	assert.ErrorIs(t, err, otpdomain.ErrOTPNotFound)
}
