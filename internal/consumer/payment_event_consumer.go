package consumer

import (
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	event_handler "github.com/RoyceAzure/lab/furnimart/internal/handler/event"
)

// NewPaymentEventConsumer 買家端的付款結果ack迴圈
// 消費payment事件流 審核結果落地後把付款單推進done
func NewPaymentEventConsumer(bus eventbus.Bus, paymentEventHandler event_handler.Handler) IBaseConsumer {
	return newBaseConsumer(bus, evt_model.KindPayment, paymentEventHandler)
}
