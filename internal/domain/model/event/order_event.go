package event

import (
	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	BaseEvent
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	SellerID    string          `json:"seller_id"`
	ReferenceID string          `json:"reference_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

func (e *OrderPlacedEvent) Type() EventType  { return OrderPlacedEventName }
func (e *OrderPlacedEvent) Kind() EntityKind { return KindOrder }

type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string            `json:"order_id"`
	UserID  string            `json:"user_id"`
	Status  model.OrderStatus `json:"status"`
}

func (e *OrderStatusChangedEvent) Type() EventType  { return OrderStatusChangedEventName }
func (e *OrderStatusChangedEvent) Kind() EntityKind { return KindOrder }

// OrderReceivedEvent 買家確認收貨 此實體的終點
type OrderReceivedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

func (e *OrderReceivedEvent) Type() EventType  { return OrderReceivedEventName }
func (e *OrderReceivedEvent) Kind() EntityKind { return KindOrder }
