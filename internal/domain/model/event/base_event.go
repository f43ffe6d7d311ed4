package event

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind 每種實體一條事件流
type EntityKind string

const (
	KindCart        EntityKind = "cart"
	KindProduct     EntityKind = "product"
	KindPayment     EntityKind = "payment"
	KindOrder       EntityKind = "order"
	KindLiquidation EntityKind = "liquidation"
)

type EventType string

const (
	CartUpdatedEventName          EventType = "CartUpdated"
	CartClearedEventName          EventType = "CartCleared"
	ProductSubmittedEventName     EventType = "ProductSubmitted"
	ProductModeratedEventName     EventType = "ProductModerated"
	ProductDeletedEventName       EventType = "ProductDeleted"
	PaymentCheckedOutEventName    EventType = "PaymentCheckedOut"
	PaymentStatusChangedEventName EventType = "PaymentStatusChanged"
	OrderPlacedEventName          EventType = "OrderPlaced"
	OrderStatusChangedEventName   EventType = "OrderStatusChanged"
	OrderReceivedEventName        EventType = "OrderReceived"
	LiquidationCompletedEventName EventType = "LiquidationCompleted"
)

type Event interface {
	Type() EventType
	Kind() EntityKind
	GetID() string
}

type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	CreatedAt   time.Time `json:"created_at"`
	EventType   EventType `json:"event_type"`
}

func (e *BaseEvent) GetID() string {
	return e.EventID
}

func (e *BaseEvent) GetAggregateID() string {
	return e.AggregateID
}

func NewBaseEvent(aggregateID string, eventType EventType) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		CreatedAt:   time.Now().UTC(),
		EventType:   eventType,
	}
}
