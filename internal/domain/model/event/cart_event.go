package event

import (
	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
)

type CartUpdatedEvent struct {
	BaseEvent
	UserID string           `json:"user_id"`
	Lines  []model.CartLine `json:"lines"`
}

func (e *CartUpdatedEvent) Type() EventType  { return CartUpdatedEventName }
func (e *CartUpdatedEvent) Kind() EntityKind { return KindCart }

type CartClearedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
}

func (e *CartClearedEvent) Type() EventType  { return CartClearedEventName }
func (e *CartClearedEvent) Kind() EntityKind { return KindCart }
