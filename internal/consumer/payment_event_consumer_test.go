package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore/mem_store"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	event_handler "github.com/RoyceAzure/lab/furnimart/internal/handler/event"
	"github.com/RoyceAzure/lab/furnimart/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// 事件從bus流進handler 付款單被ack成done
func TestPaymentEventConsumerAcksPayment(t *testing.T) {
	ctx := context.Background()
	store := mem_store.New()
	bus := eventbus.NewInprocBus()
	defer func() {
		_ = bus.Close()
		_ = store.Close()
	}()

	seedUser := func(userID string, role model.Role) {
		doc, err := json.Marshal(model.User{UserID: userID, Username: userID, Role: role})
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, docstore.CollectionUsers, userID, doc))
	}
	seedUser("admin-1", model.RoleAdmin)
	seedUser("buyer-1", model.RoleBuyer)

	userRepo := store_repo.NewUserRepo(store)
	paymentRepo := store_repo.NewPaymentRepo(store)
	cartSvc := service.NewCartService(store_repo.NewCartRepo(store), nil)
	notifier := service.NewNotificationService(store_repo.NewNotificationRepo(store))
	paymentSvc := service.NewPaymentService(paymentRepo, store_repo.NewProductRepo(store), userRepo, cartSvc, notifier, nil, nil)

	result, err := paymentSvc.Checkout(ctx, "buyer-1", []model.CartLine{{
		ProductID: "prod-1",
		Name:      "Oak Sofa",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(1000),
	}})
	require.NoError(t, err)

	paymentConsumer := NewPaymentEventConsumer(bus, event_handler.NewPaymentEventHandler(paymentSvc, nil))
	require.NoError(t, paymentConsumer.Start(ctx))
	defer paymentConsumer.Stop()

	// 核准後把狀態事件丟上bus
	approved, err := paymentSvc.Approve(ctx, "admin-1", result.PaymentID)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, &evt_model.PaymentStatusChangedEvent{
		BaseEvent: evt_model.NewBaseEvent(result.PaymentID, evt_model.PaymentStatusChangedEventName),
		PaymentID: result.PaymentID,
		UserID:    "buyer-1",
		Status:    approved.Status,
		Amount:    approved.Amount,
	}))

	require.Eventually(t, func() bool {
		payment, err := paymentSvc.Get(ctx, result.PaymentID)
		return err == nil && payment.Status == model.PaymentStatusDone
	}, 2*time.Second, 20*time.Millisecond)
}

func TestConsumerStopIsIdempotent(t *testing.T) {
	bus := eventbus.NewInprocBus()
	defer bus.Close()

	c := NewPaymentEventConsumer(bus, event_handler.NewPaymentEventHandler(nil, nil))
	c.Stop()
	c.Stop()

	require.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
