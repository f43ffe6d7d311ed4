package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

// ShippingAddress 下單時的收件地址快照
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Street   string `json:"street"`
	Barangay string `json:"barangay"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
}

// IsComplete 五個欄位都必填
func (a ShippingAddress) IsComplete() bool {
	return a.FullName != "" && a.Street != "" && a.Barangay != "" &&
		a.Province != "" && a.Zip != ""
}

// Order 出貨單
// ReferenceID與對應Payment共用 作為兩邊的關聯鍵
type Order struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	SellerID    string          `json:"seller_id"`
	ReferenceID string          `json:"reference_id"`
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Products    []PaymentLine   `json:"products,omitempty"`
	TotalPrice  decimal.Decimal `json:"total_price"`

	ShippingAddress ShippingAddress `json:"shipping_address"`
	Status          OrderStatus     `json:"status"`
	BuyerReceived   bool            `json:"buyer_received"`
	CreatedAt       time.Time       `json:"created_at"`
}
