package util

import (
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewReferenceToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token := NewReferenceToken()
		require.Len(t, token, 8)
		for _, r := range token {
			require.True(t, strings.ContainsRune(referenceAlphabet, r), "unexpected rune %q", r)
		}
		seen[token] = struct{}{}
	}
	// 100次不該全部撞在一起
	require.Greater(t, len(seen), 90)
}

func TestCalculateLinesTotal(t *testing.T) {
	lines := []model.CartLine{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("1000")},
		{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("49.99")},
	}
	require.True(t, decimal.RequireFromString("2049.99").Equal(CalculateLinesTotal(lines)))
	require.True(t, decimal.Zero.Equal(CalculateLinesTotal(nil)))
}

func TestCalculatePaymentLinesTotal(t *testing.T) {
	lines := []model.PaymentLine{
		{ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("500")},
		{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("300")},
	}
	require.True(t, decimal.RequireFromString("1800").Equal(CalculatePaymentLinesTotal(lines)))
}

func TestIsNil(t *testing.T) {
	require.True(t, IsNil(nil))

	var p *model.Cart
	require.True(t, IsNil(p))

	require.False(t, IsNil(&model.Cart{}))
	require.False(t, IsNil("text"))
}
