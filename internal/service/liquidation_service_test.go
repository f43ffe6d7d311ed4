package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LiquidationServiceTestSuite struct {
	suite.Suite
	env *testEnv
}

func TestLiquidationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LiquidationServiceTestSuite))
}

func (s *LiquidationServiceTestSuite) SetupTest() {
	s.env = newTestEnv(s.T())
}

// 結帳並核准一筆付款 回傳paymentID
func (s *LiquidationServiceTestSuite) approvedPayment(price string, quantity int) string {
	ctx := context.Background()
	product := s.env.approvedProduct(s.T(), "Oak Sofa", price, model.CategorySofa)
	result, err := s.env.paymentSvc.Checkout(ctx, testBuyerID, []model.CartLine{{
		ProductID: product.ProductID,
		Name:      product.Name,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}})
	require.NoError(s.T(), err)
	_, err = s.env.paymentSvc.Approve(ctx, testAdminID, result.PaymentID)
	require.NoError(s.T(), err)
	return result.PaymentID
}

// 抽成+收益必須精確等於原金額
func (s *LiquidationServiceTestSuite) TestLiquidateSplitsAmount() {
	ctx := context.Background()
	paymentID := s.approvedPayment("1000", 2)

	record, err := s.env.liquidationSvc.Liquidate(ctx, testAdminID, paymentID)
	require.NoError(s.T(), err)
	require.True(s.T(), decimal.RequireFromString("2000").Equal(record.Amount))
	require.True(s.T(), decimal.RequireFromString("200").Equal(record.AdminCommission))
	require.True(s.T(), decimal.RequireFromString("1800").Equal(record.SellerEarnings))
	require.True(s.T(), record.AdminCommission.Add(record.SellerEarnings).Equal(record.Amount))
	require.Equal(s.T(), model.LiquidationStatusCompleted, record.Status)
	require.Equal(s.T(), testSellerID, record.SellerID)

	payment, err := s.env.paymentSvc.Get(ctx, paymentID)
	require.NoError(s.T(), err)
	require.True(s.T(), payment.Liquidated)
	require.NotNil(s.T(), payment.LiquidatedAt)
}

// 分不盡的金額 抽成四捨五入到分 加總仍等於原金額
func (s *LiquidationServiceTestSuite) TestLiquidateRoundingConservesAmount() {
	ctx := context.Background()
	paymentID := s.approvedPayment("33.33", 1)

	record, err := s.env.liquidationSvc.Liquidate(ctx, testAdminID, paymentID)
	require.NoError(s.T(), err)
	require.True(s.T(), decimal.RequireFromString("3.33").Equal(record.AdminCommission))
	require.True(s.T(), decimal.RequireFromString("30.00").Equal(record.SellerEarnings))
	require.True(s.T(), record.AdminCommission.Add(record.SellerEarnings).Equal(record.Amount))
}

// 同一筆付款只能清算一次
func (s *LiquidationServiceTestSuite) TestLiquidateExactlyOnce() {
	ctx := context.Background()
	paymentID := s.approvedPayment("1000", 1)

	_, err := s.env.liquidationSvc.Liquidate(ctx, testAdminID, paymentID)
	require.NoError(s.T(), err)

	_, err = s.env.liquidationSvc.Liquidate(ctx, testAdminID, paymentID)
	require.ErrorIs(s.T(), err, ErrAlreadyLiquidated)

	records, err := s.env.liquidationSvc.ListBySeller(ctx, testSellerID)
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 1)
}

func (s *LiquidationServiceTestSuite) TestLiquidateRequiresApprovedPayment() {
	ctx := context.Background()
	product := s.env.approvedProduct(s.T(), "Oak Sofa", "1000", model.CategorySofa)
	result, err := s.env.paymentSvc.Checkout(ctx, testBuyerID, []model.CartLine{{
		ProductID: product.ProductID,
		Name:      product.Name,
		Quantity:  1,
		UnitPrice: product.Price,
	}})
	require.NoError(s.T(), err)

	_, err = s.env.liquidationSvc.Liquidate(ctx, testAdminID, result.PaymentID)
	require.ErrorIs(s.T(), err, ErrPaymentNotApproved)
}

func (s *LiquidationServiceTestSuite) TestLiquidateRequiresAdmin() {
	ctx := context.Background()
	paymentID := s.approvedPayment("1000", 1)

	_, err := s.env.liquidationSvc.Liquidate(ctx, testSellerID, paymentID)
	require.ErrorIs(s.T(), err, ErrForbidden)
}

// 清算完成通知賣家並發佈事件
func (s *LiquidationServiceTestSuite) TestLiquidateNotifiesSellerAndPublishes() {
	ctx := context.Background()
	paymentID := s.approvedPayment("1000", 2)

	collect := s.env.collectEvents(s.T(), evt_model.KindLiquidation)
	record, err := s.env.liquidationSvc.Liquidate(ctx, testAdminID, paymentID)
	require.NoError(s.T(), err)

	notifications := s.env.notificationsFor(s.T(), testSellerID)
	var liquidationNotes []model.Notification
	for _, n := range notifications {
		if n.Type == model.NotificationTypeLiquidation {
			liquidationNotes = append(liquidationNotes, n)
		}
	}
	require.Len(s.T(), liquidationNotes, 1)
	require.Contains(s.T(), liquidationNotes[0].Message, "1800.00")

	events := collect()
	require.Len(s.T(), events, 1)
	completed := events[0].(*evt_model.LiquidationCompletedEvent)
	require.Equal(s.T(), record.RecordID, completed.RecordID)
	require.True(s.T(), completed.SellerEarnings.Equal(record.SellerEarnings))
}
