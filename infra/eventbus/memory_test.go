package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	busdef "github.com/mhasanin/digibank/pkg/eventbus"
)

func newTestBus() *MemoryBus {
	return NewMemoryBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishDispatchesByType(t *testing.T) {
	assert := assert.New(t)
	bus := newTestBus()

	var otpCalls, blockedCalls int
	bus.Subscribe(busdef.EventOTPIssued, func(ctx context.Context, e busdef.Event) {
		otpCalls++
	})
	bus.Subscribe(busdef.EventCardBlocked, func(ctx context.Context, e busdef.Event) {
		blockedCalls++
	})

	err := bus.Publish(context.Background(), busdef.OTPIssued{UserID: uuid.New(), Code: "123456"})
	assert.NoError(err)
	assert.Equal(1, otpCalls)
	assert.Zero(blockedCalls, "Handlers only see their own event type")
	assert.Len(bus.Published(), 1)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := newTestBus()

	err := bus.Publish(context.Background(), busdef.TransferCompleted{Amount: 100})
	assert.NoError(t, err)
	assert.Len(t, bus.Published(), 1)
}

func TestPublishedReturnsCopy(t *testing.T) {
	assert := assert.New(t)
	bus := newTestBus()

	err := bus.Publish(context.Background(), busdef.OTPIssued{Code: "123456"})
	assert.NoError(err)
	err = bus.Publish(context.Background(), busdef.TransferCompleted{Amount: 100})
	assert.NoError(err)

	got := bus.Published()
	got[0] = busdef.CardBlocked{}

	fresh := bus.Published()
	assert.Len(fresh, 2, "Mutating a returned slice never touches bus state")
	assert.IsType(busdef.OTPIssued{}, fresh[0])
}

func TestPanicInHandlerDoesNotStopOthers(t *testing.T) {
	assert := assert.New(t)
	bus := newTestBus()

	var called bool
	bus.Subscribe(busdef.EventOTPIssued, func(ctx context.Context, e busdef.Event) {
		panic("handler blew up")
	})
	bus.Subscribe(busdef.EventOTPIssued, func(ctx context.Context, e busdef.Event) {
		called = true
	})

	err := bus.Publish(context.Background(), busdef.OTPIssued{Code: "123456"})
	assert.NoError(err, "A panicking handler never fails the publish")
	assert.True(called, "Later handlers still run")
}
