package util

import (
	"math/rand"
	"reflect"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IsNil 檢查介面是否為 nil
// 注意：這個函數會同時檢查介面的型別和值
// 只有當兩者都為 nil 時，才會返回 true
func IsNil(i interface{}) bool {
	if i == nil {
		return true
	}

	switch reflect.TypeOf(i).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Array, reflect.Chan, reflect.Slice:
		return reflect.ValueOf(i).IsNil()
	}

	return false
}

const referenceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const referenceLength = 8

// NewReferenceToken 付款參考碼 給買家對帳用的短token
// 人讀用途 不是安全token 碰撞機率可忽略
func NewReferenceToken() string {
	b := make([]byte, referenceLength)
	for i := range b {
		b[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return string(b)
}

func NewID() string {
	return uuid.New().String()
}

// CalculateLinesTotal sum(unit_price * quantity)
func CalculateLinesTotal(lines []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CalculatePaymentLinesTotal bulk付款單行項合計
func CalculatePaymentLinesTotal(lines []model.PaymentLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
