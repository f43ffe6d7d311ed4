package eventbus

import (
	"encoding/json"
	"fmt"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
)

// EncodeEvent 事件轉json payload type另外放在header
func EncodeEvent(evt evt_model.Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", evt.Type(), err)
	}
	return payload, nil
}

// DecodeEvent 依header的event type還原具體事件
func DecodeEvent(eventType evt_model.EventType, payload []byte) (evt_model.Event, error) {
	var evt evt_model.Event
	switch eventType {
	case evt_model.CartUpdatedEventName:
		evt = &evt_model.CartUpdatedEvent{}
	case evt_model.CartClearedEventName:
		evt = &evt_model.CartClearedEvent{}
	case evt_model.ProductSubmittedEventName:
		evt = &evt_model.ProductSubmittedEvent{}
	case evt_model.ProductModeratedEventName:
		evt = &evt_model.ProductModeratedEvent{}
	case evt_model.ProductDeletedEventName:
		evt = &evt_model.ProductDeletedEvent{}
	case evt_model.PaymentCheckedOutEventName:
		evt = &evt_model.PaymentCheckedOutEvent{}
	case evt_model.PaymentStatusChangedEventName:
		evt = &evt_model.PaymentStatusChangedEvent{}
	case evt_model.OrderPlacedEventName:
		evt = &evt_model.OrderPlacedEvent{}
	case evt_model.OrderStatusChangedEventName:
		evt = &evt_model.OrderStatusChangedEvent{}
	case evt_model.OrderReceivedEventName:
		evt = &evt_model.OrderReceivedEvent{}
	case evt_model.LiquidationCompletedEventName:
		evt = &evt_model.LiquidationCompletedEvent{}
	default:
		return nil, ErrUnknownEventFmt
	}

	if err := json.Unmarshal(payload, evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventType, err)
	}
	return evt, nil
}
