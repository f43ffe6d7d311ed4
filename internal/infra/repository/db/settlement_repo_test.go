package db

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SettlementRepoTestSuite struct {
	suite.Suite
	repo     *SettlementRepo
	sellerID string
}

func TestSettlementRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementRepoTestSuite))
}

func (s *SettlementRepoTestSuite) SetupSuite() {
	conn, err := GetDbConn("lab_furnimart", "localhost", "5432", "royce", "password")
	require.NoError(s.T(), err)

	dao := NewDbDao(conn)
	require.NoError(s.T(), dao.InitMigrate())
	s.repo = NewSettlementRepo(dao)
}

func (s *SettlementRepoTestSuite) SetupTest() {
	// 每個測試用獨立賣家隔離資料
	s.sellerID = uuid.New().String()
}

func (s *SettlementRepoTestSuite) record(earnings string) *model.LiquidationRecord {
	commission := decimal.RequireFromString(earnings).Div(decimal.NewFromInt(9)).Round(2)
	return &model.LiquidationRecord{
		RecordID:        uuid.New().String(),
		PaymentID:       uuid.New().String(),
		SellerID:        s.sellerID,
		Amount:          decimal.RequireFromString(earnings).Add(commission),
		AdminCommission: commission,
		SellerEarnings:  decimal.RequireFromString(earnings),
		Status:          model.LiquidationStatusCompleted,
		CreatedAt:       time.Now().UTC(),
	}
}

func (s *SettlementRepoTestSuite) TestUpsertAndQuery() {
	ctx := context.Background()
	records := []*model.LiquidationRecord{s.record("1800"), s.record("900")}

	result, err := s.repo.UpsertRecordsBatch(ctx, records)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, result.SuccessCount)
	require.Zero(s.T(), result.FailCount)

	got, err := s.repo.GetSellerSettlements(ctx, s.sellerID)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 2)

	total, err := s.repo.GetSellerEarningsTotal(ctx, s.sellerID)
	require.NoError(s.T(), err)
	require.True(s.T(), decimal.RequireFromString("2700").Equal(total))
}

// 同payment重放不會寫出第二筆
func (s *SettlementRepoTestSuite) TestUpsertIsIdempotent() {
	ctx := context.Background()
	record := s.record("1800")

	_, err := s.repo.UpsertRecordsBatch(ctx, []*model.LiquidationRecord{record})
	require.NoError(s.T(), err)

	replay := *record
	replay.RecordID = uuid.New().String()
	_, err = s.repo.UpsertRecordsBatch(ctx, []*model.LiquidationRecord{&replay})
	require.NoError(s.T(), err)

	got, err := s.repo.GetSellerSettlements(ctx, s.sellerID)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)

	byPayment, err := s.repo.GetByPaymentID(ctx, record.PaymentID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), record.RecordID, byPayment.RecordID)
}

func (s *SettlementRepoTestSuite) TestEmptySellerTotalIsZero() {
	total, err := s.repo.GetSellerEarningsTotal(context.Background(), uuid.New().String())
	require.NoError(s.T(), err)
	require.True(s.T(), total.IsZero())
}
