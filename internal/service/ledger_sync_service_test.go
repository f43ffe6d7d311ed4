package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/eventdb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// chanLiquidationStream 以channel餵稽核事件的串流來源
type chanLiquidationStream struct {
	audits chan eventdb.LiquidationAudit
}

func newChanLiquidationStream() *chanLiquidationStream {
	return &chanLiquidationStream{audits: make(chan eventdb.LiquidationAudit, 16)}
}

func (s *chanLiquidationStream) SubscribeLiquidations(ctx context.Context, handler func(audit eventdb.LiquidationAudit) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case audit := <-s.audits:
			if err := handler(audit); err != nil {
				return err
			}
		}
	}
}

// 需要本機postgres
type LedgerSyncServiceTestSuite struct {
	suite.Suite
	settlementRepo *db.SettlementRepo
	stream         *chanLiquidationStream
	syncSvc        *LedgerSyncService
}

func TestLedgerSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerSyncServiceTestSuite))
}

func (s *LedgerSyncServiceTestSuite) SetupSuite() {
	conn, err := db.GetDbConn("lab_furnimart", "localhost", "5432", "royce", "password")
	require.NoError(s.T(), err)
	dao := db.NewDbDao(conn)
	require.NoError(s.T(), dao.InitMigrate())
	s.settlementRepo = db.NewSettlementRepo(dao)
}

func (s *LedgerSyncServiceTestSuite) SetupTest() {
	s.stream = newChanLiquidationStream()
	s.syncSvc = NewLedgerSyncService(s.stream, s.settlementRepo)
}

func (s *LedgerSyncServiceTestSuite) TearDownTest() {
	_ = s.syncSvc.Stop(time.Second)
}

// 稽核串流收到清算後台帳出現對應資料列
func (s *LedgerSyncServiceTestSuite) TestSyncLiquidationAudit() {
	ctx := context.Background()
	require.NoError(s.T(), s.syncSvc.Start())

	recordID := uuid.New().String()
	paymentID := uuid.New().String()
	sellerID := uuid.New().String()
	s.stream.audits <- eventdb.LiquidationAudit{
		RecordID:        recordID,
		PaymentID:       paymentID,
		SellerID:        sellerID,
		Amount:          decimal.RequireFromString("2000"),
		AdminCommission: decimal.RequireFromString("200"),
		SellerEarnings:  decimal.RequireFromString("1800"),
		At:              time.Now().UTC(),
	}

	require.Eventually(s.T(), func() bool {
		record, err := s.settlementRepo.GetByPaymentID(ctx, paymentID)
		return err == nil && record.RecordID == recordID
	}, 3*time.Second, 50*time.Millisecond)

	total, err := s.settlementRepo.GetSellerEarningsTotal(ctx, sellerID)
	require.NoError(s.T(), err)
	require.True(s.T(), decimal.RequireFromString("1800").Equal(total))
}

// 重放同一筆稽核不會在台帳產生第二列
func (s *LedgerSyncServiceTestSuite) TestReplayDoesNotDuplicate() {
	ctx := context.Background()
	require.NoError(s.T(), s.syncSvc.Start())

	paymentID := uuid.New().String()
	sellerID := uuid.New().String()
	audit := eventdb.LiquidationAudit{
		RecordID:        uuid.New().String(),
		PaymentID:       paymentID,
		SellerID:        sellerID,
		Amount:          decimal.RequireFromString("1000"),
		AdminCommission: decimal.RequireFromString("100"),
		SellerEarnings:  decimal.RequireFromString("900"),
		At:              time.Now().UTC(),
	}
	s.stream.audits <- audit
	s.stream.audits <- audit

	require.Eventually(s.T(), func() bool {
		_, err := s.settlementRepo.GetByPaymentID(ctx, paymentID)
		return err == nil
	}, 3*time.Second, 50*time.Millisecond)

	total, err := s.settlementRepo.GetSellerEarningsTotal(ctx, sellerID)
	require.NoError(s.T(), err)
	require.True(s.T(), decimal.RequireFromString("900").Equal(total))
}

func (s *LedgerSyncServiceTestSuite) TestStartTwiceFails() {
	require.NoError(s.T(), s.syncSvc.Start())
	require.Error(s.T(), s.syncSvc.Start())
}
