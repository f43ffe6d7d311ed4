package event

import (
	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/shopspring/decimal"
)

type PaymentCheckedOutEvent struct {
	BaseEvent
	PaymentID   string          `json:"payment_id"`
	UserID      string          `json:"user_id"`
	ReferenceID string          `json:"reference_id"`
	IsBulk      bool            `json:"is_bulk"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

func (e *PaymentCheckedOutEvent) Type() EventType  { return PaymentCheckedOutEventName }
func (e *PaymentCheckedOutEvent) Kind() EntityKind { return KindPayment }

type PaymentStatusChangedEvent struct {
	BaseEvent
	PaymentID string              `json:"payment_id"`
	UserID    string              `json:"user_id"`
	Status    model.PaymentStatus `json:"status"`
	Amount    decimal.Decimal     `json:"amount"`
}

func (e *PaymentStatusChangedEvent) Type() EventType  { return PaymentStatusChangedEventName }
func (e *PaymentStatusChangedEvent) Kind() EntityKind { return KindPayment }
