package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const LiquidationStatusCompleted = "completed"

// LiquidationRecord 清算紀錄 append-only不可變
// 同時是doc store的文件與結算台帳的gorm資料列
type LiquidationRecord struct {
	RecordID        string          `gorm:"primaryKey;type:varchar(255)" json:"record_id"`
	PaymentID       string          `gorm:"not null;uniqueIndex;type:varchar(255)" json:"payment_id"`
	SellerID        string          `gorm:"not null;index;type:varchar(255)" json:"seller_id"`
	Amount          decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	AdminCommission decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"admin_commission"`
	SellerEarnings  decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"seller_earnings"`
	Status          string          `gorm:"not null;type:varchar(50)" json:"status"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}
