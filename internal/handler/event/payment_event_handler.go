package handler

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/service"
	"github.com/RoyceAzure/lab/rj_redis/pkg/cache"
	"github.com/rs/zerolog/log"
)

// PaymentEventHandler 買家端對審核結果的回應
// 收到approved/declined就把付款單ack成done
type PaymentEventHandler struct {
	paymentSvc *service.PaymentService
}

func newPaymentEventHandler(paymentSvc *service.PaymentService) *PaymentEventHandler {
	return &PaymentEventHandler{paymentSvc: paymentSvc}
}

func (h *PaymentEventHandler) HandlePaymentStatusChanged(ctx context.Context, evt evt_model.Event) error {
	changed, ok := evt.(*evt_model.PaymentStatusChangedEvent)
	if !ok {
		return nil
	}
	if changed.Status != model.PaymentStatusApproved && changed.Status != model.PaymentStatusDeclined {
		return nil
	}

	_, err := h.paymentSvc.MarkDone(ctx, changed.PaymentID)
	if err != nil {
		// 事件到達前狀態已經推進 視為已處理
		if errors.Is(err, service.ErrPaymentNotSettled) {
			log.Warn().Str("payment_id", changed.PaymentID).Msg("payment not settled on ack, skip")
			return nil
		}
		return err
	}
	return nil
}

func NewPaymentEventHandler(paymentSvc *service.PaymentService, eventCache cache.Cache) Handler {
	paymentEventHandler := newPaymentEventHandler(paymentSvc)
	return NewHandlerDispatcher(map[evt_model.EventType]Handler{
		evt_model.PaymentStatusChangedEventName: HandlerFunc(paymentEventHandler.HandlePaymentStatusChanged),
	}, eventCache)
}
