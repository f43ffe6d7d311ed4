package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDeclined PaymentStatus = "declined"
	PaymentStatusDone     PaymentStatus = "done"
)

// PaymentMethodQRPh 手動轉帳確認 買家拿referenceId對帳
const PaymentMethodQRPh = "QRPh"

type PaymentLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Payment 結帳後的付款單
// solo: 單一商品 用ProductID/ProductName/Quantity/Price欄位 Price是行項總額(單價*數量)
// bulk: 多商品 用Products欄位 TotalPrice為合計
type Payment struct {
	PaymentID   string          `json:"payment_id"`
	UserID      string          `json:"user_id"`
	SellerID    string          `json:"seller_id"`
	ReferenceID string          `json:"reference_id"`
	Method      string          `json:"method"`
	IsBulk      bool            `json:"is_bulk"`
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Products    []PaymentLine   `json:"products,omitempty"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Amount      decimal.Decimal `json:"amount"`

	Status          PaymentStatus   `json:"status"`
	Liquidated      bool            `json:"liquidated"`
	LiquidatedAt    *time.Time      `json:"liquidated_at,omitempty"`
	AdminCommission decimal.Decimal `json:"admin_commission"`
	SellerEarnings  decimal.Decimal `json:"seller_earnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResolveAmount 取得付款單金額
// 優先順序: amount > totalPrice > 由行項重算
func (p *Payment) ResolveAmount() decimal.Decimal {
	if p.Amount.IsPositive() {
		return p.Amount
	}
	if p.TotalPrice.IsPositive() {
		return p.TotalPrice
	}
	if p.IsBulk {
		total := decimal.Zero
		for _, line := range p.Products {
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		return total
	}
	// solo的Price已經是行項總額
	return p.Price
}

// ProductNames 通知訊息用的商品名稱
func (p *Payment) ProductNames() []string {
	if !p.IsBulk {
		return []string{p.ProductName}
	}
	names := make([]string, len(p.Products))
	for i, line := range p.Products {
		names[i] = line.Name
	}
	return names
}
