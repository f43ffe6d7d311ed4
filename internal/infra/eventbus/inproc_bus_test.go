package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, events <-chan evt_model.Event) evt_model.Event {
	t.Helper()
	select {
	case evt := <-events:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestInprocBusFanout(t *testing.T) {
	bus := NewInprocBus()
	defer bus.Close()
	ctx := context.Background()

	first, cancelFirst, err := bus.Subscribe(ctx, evt_model.KindPayment)
	require.NoError(t, err)
	defer cancelFirst()
	second, cancelSecond, err := bus.Subscribe(ctx, evt_model.KindPayment)
	require.NoError(t, err)
	defer cancelSecond()

	evt := &evt_model.PaymentStatusChangedEvent{
		BaseEvent: evt_model.NewBaseEvent("pay-1", evt_model.PaymentStatusChangedEventName),
		PaymentID: "pay-1",
		Status:    model.PaymentStatusApproved,
		Amount:    decimal.NewFromInt(2000),
	}
	require.NoError(t, bus.Publish(ctx, evt))

	for _, events := range []<-chan evt_model.Event{first, second} {
		got := recvEvent(t, events)
		changed, ok := got.(*evt_model.PaymentStatusChangedEvent)
		require.True(t, ok)
		require.Equal(t, "pay-1", changed.PaymentID)
	}
}

// 訂閱只收自己kind的事件
func TestInprocBusKindIsolation(t *testing.T) {
	bus := NewInprocBus()
	defer bus.Close()
	ctx := context.Background()

	carts, cancel, err := bus.Subscribe(ctx, evt_model.KindCart)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, bus.Publish(ctx, &evt_model.OrderReceivedEvent{
		BaseEvent: evt_model.NewBaseEvent("o1", evt_model.OrderReceivedEventName),
		OrderID:   "o1",
	}))

	select {
	case evt := <-carts:
		t.Fatalf("unexpected event: %s", evt.Type())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInprocBusUnsubscribe(t *testing.T) {
	bus := NewInprocBus()
	defer bus.Close()
	ctx := context.Background()

	events, cancel, err := bus.Subscribe(ctx, evt_model.KindCart)
	require.NoError(t, err)
	cancel()
	// 重複cancel不會panic
	cancel()

	_, ok := <-events
	require.False(t, ok)
}

func TestInprocBusClosed(t *testing.T) {
	bus := NewInprocBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), &evt_model.CartClearedEvent{
		BaseEvent: evt_model.NewBaseEvent("u1", evt_model.CartClearedEventName),
		UserID:    "u1",
	})
	require.ErrorIs(t, err, ErrBusClosed)

	_, _, err = bus.Subscribe(context.Background(), evt_model.KindCart)
	require.ErrorIs(t, err, ErrBusClosed)
}
