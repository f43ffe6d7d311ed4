package event

import (
	"github.com/shopspring/decimal"
)

type LiquidationCompletedEvent struct {
	BaseEvent
	RecordID        string          `json:"record_id"`
	PaymentID       string          `json:"payment_id"`
	SellerID        string          `json:"seller_id"`
	Amount          decimal.Decimal `json:"amount"`
	AdminCommission decimal.Decimal `json:"admin_commission"`
	SellerEarnings  decimal.Decimal `json:"seller_earnings"`
}

func (e *LiquidationCompletedEvent) Type() EventType  { return LiquidationCompletedEventName }
func (e *LiquidationCompletedEvent) Kind() EntityKind { return KindLiquidation }
