package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/eventdb"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LiquidationService 清算已核准的付款 拆分平台抽成與賣家收益
// liquidated旗標在付款單上原子翻轉 同一筆付款只會清算一次
type LiquidationService struct {
	authz
	paymentRepo     *store_repo.PaymentRepo
	liquidationRepo *store_repo.LiquidationRepo
	notifier        *NotificationService
	audit           PaymentAuditor
	bus             eventbus.Bus
	commissionRate  decimal.Decimal
}

func NewLiquidationService(
	paymentRepo *store_repo.PaymentRepo,
	liquidationRepo *store_repo.LiquidationRepo,
	userRepo *store_repo.UserRepo,
	notifier *NotificationService,
	audit PaymentAuditor,
	bus eventbus.Bus,
	commissionRate decimal.Decimal,
) *LiquidationService {
	if paymentRepo == nil || liquidationRepo == nil || userRepo == nil || notifier == nil {
		panic("liquidation service dependency is nil")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		panic(fmt.Sprintf("commission rate out of range: %s", commissionRate))
	}
	return &LiquidationService{
		authz:           authz{userRepo: userRepo},
		paymentRepo:     paymentRepo,
		liquidationRepo: liquidationRepo,
		notifier:        notifier,
		audit:           audit,
		bus:             bus,
		commissionRate:  commissionRate,
	}
}

// Liquidate 清算一筆已核准的付款
// 抽成 = amount * rate 四捨五入到分 收益 = amount - 抽成 兩者相加必等於amount
// 錯誤:
//   - ErrForbidden: caller不是admin
//   - ErrPaymentNotApproved: 付款單不是approved
//   - ErrAlreadyLiquidated: 已清算過
func (s *LiquidationService) Liquidate(ctx context.Context, callerID, paymentID string) (*model.LiquidationRecord, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	var record *model.LiquidationRecord
	steps := []SagaStep{
		{
			Name: "flag-payment-liquidated",
			Run: func(ctx context.Context) error {
				updated, err := s.paymentRepo.UpdatePayment(ctx, paymentID, func(payment *model.Payment) error {
					if payment.Status != model.PaymentStatusApproved {
						return ErrPaymentNotApproved
					}
					if payment.Liquidated {
						return ErrAlreadyLiquidated
					}
					amount := payment.ResolveAmount()
					commission := amount.Mul(s.commissionRate).Round(2)
					earnings := amount.Sub(commission)

					now := time.Now().UTC()
					payment.Liquidated = true
					payment.LiquidatedAt = &now
					payment.Amount = amount
					payment.AdminCommission = commission
					payment.SellerEarnings = earnings
					payment.UpdatedAt = now
					return nil
				})
				if err != nil {
					return err
				}
				record = &model.LiquidationRecord{
					RecordID:        util.NewID(),
					PaymentID:       updated.PaymentID,
					SellerID:        updated.SellerID,
					Amount:          updated.Amount,
					AdminCommission: updated.AdminCommission,
					SellerEarnings:  updated.SellerEarnings,
					Status:          model.LiquidationStatusCompleted,
					CreatedAt:       *updated.LiquidatedAt,
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, cerr := s.paymentRepo.UpdatePayment(ctx, paymentID, func(payment *model.Payment) error {
					payment.Liquidated = false
					payment.LiquidatedAt = nil
					payment.AdminCommission = decimal.Zero
					payment.SellerEarnings = decimal.Zero
					return nil
				})
				return cerr
			},
		},
		{
			Name: "append-liquidation-record",
			Run: func(ctx context.Context) error {
				return s.liquidationRepo.Append(ctx, record)
			},
		},
	}
	if err := runSaga(ctx, "liquidate-payment", steps); err != nil {
		return nil, err
	}

	// 賣家通知 結帳當下沒能帶出賣家的單跳過
	if record.SellerID != "" {
		message := fmt.Sprintf("Your payment has been liquidated. Earnings: PHP %s", record.SellerEarnings.StringFixed(2))
		if _, err := s.notifier.Emit(ctx, record.SellerID, model.NotificationTypeLiquidation, message); err != nil {
			log.Error().Err(err).Str("payment_id", paymentID).Msg("failed to notify seller of liquidation")
		}
	}

	s.appendAudit(ctx, record)
	s.publish(ctx, &evt_model.LiquidationCompletedEvent{
		BaseEvent:       evt_model.NewBaseEvent(record.RecordID, evt_model.LiquidationCompletedEventName),
		RecordID:        record.RecordID,
		PaymentID:       record.PaymentID,
		SellerID:        record.SellerID,
		Amount:          record.Amount,
		AdminCommission: record.AdminCommission,
		SellerEarnings:  record.SellerEarnings,
	})
	return record, nil
}

func (s *LiquidationService) GetByPayment(ctx context.Context, paymentID string) (*model.LiquidationRecord, error) {
	return s.liquidationRepo.GetByPayment(ctx, paymentID)
}

func (s *LiquidationService) ListBySeller(ctx context.Context, sellerID string) ([]model.LiquidationRecord, error) {
	return s.liquidationRepo.ListBySeller(ctx, sellerID)
}

func (s *LiquidationService) appendAudit(ctx context.Context, record *model.LiquidationRecord) {
	if util.IsNil(s.audit) {
		return
	}
	err := s.audit.AppendLiquidation(ctx, eventdb.LiquidationAudit{
		RecordID:        record.RecordID,
		PaymentID:       record.PaymentID,
		SellerID:        record.SellerID,
		Amount:          record.Amount,
		AdminCommission: record.AdminCommission,
		SellerEarnings:  record.SellerEarnings,
		At:              record.CreatedAt,
	})
	if err != nil {
		log.Error().Err(err).Str("record_id", record.RecordID).Msg("failed to append liquidation audit")
	}
}

func (s *LiquidationService) publish(ctx context.Context, evt evt_model.Event) {
	if util.IsNil(s.bus) {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", string(evt.Type())).Msg("failed to publish liquidation event")
	}
}
