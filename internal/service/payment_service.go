package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// PaymentAuditor 付款稽核軌跡 寫入失敗不會中斷狀態轉移
type PaymentAuditor interface {
	AppendTransition(ctx context.Context, transition eventdb.PaymentTransition) error
	AppendLiquidation(ctx context.Context, audit eventdb.LiquidationAudit) error
	ReadTransitions(ctx context.Context, paymentID string) ([]eventdb.PaymentTransition, error)
}

// CheckoutResult 買家拿ReferenceID去轉帳對帳
type CheckoutResult struct {
	PaymentID   string
	ReferenceID string
	TotalPrice  decimal.Decimal
}

// PaymentService 付款單狀態機
// pending -> approved/declined -> done 轉移不可逆
// 同用戶重複結帳會併入既有的pending付款單 不會產生第二筆
type PaymentService struct {
	authz
	paymentRepo *store_repo.PaymentRepo
	productRepo *store_repo.ProductRepo
	cartSvc     *CartService
	notifier    *NotificationService
	audit       PaymentAuditor
	bus         eventbus.Bus
}

func NewPaymentService(
	paymentRepo *store_repo.PaymentRepo,
	productRepo *store_repo.ProductRepo,
	userRepo *store_repo.UserRepo,
	cartSvc *CartService,
	notifier *NotificationService,
	audit PaymentAuditor,
	bus eventbus.Bus,
) *PaymentService {
	if paymentRepo == nil || productRepo == nil || userRepo == nil || cartSvc == nil || notifier == nil {
		panic("payment service dependency is nil")
	}
	return &PaymentService{
		authz:       authz{userRepo: userRepo},
		paymentRepo: paymentRepo,
		productRepo: productRepo,
		cartSvc:     cartSvc,
		notifier:    notifier,
		audit:       audit,
		bus:         bus,
	}
}

// Checkout 建立或併入pending付款單
// 單一行項建立solo付款單 多行項建立bulk付款單
// 錯誤:
//   - ErrEmptySelection: 沒有選擇任何行項
//   - ErrInvalidQuantity: 行項數量小於1
func (s *PaymentService) Checkout(ctx context.Context, userID string, selected []model.CartLine) (*CheckoutResult, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	for _, line := range selected {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var payment *model.Payment
	var err error
	if len(selected) == 1 {
		payment, err = s.checkoutSolo(ctx, userID, selected[0])
	} else {
		payment, err = s.checkoutBulk(ctx, userID, selected)
	}
	if err != nil {
		return nil, err
	}

	total := payment.ResolveAmount()
	s.appendTransition(ctx, payment, "", model.PaymentStatusPending, userID)
	s.publish(ctx, &evt_model.PaymentCheckedOutEvent{
		BaseEvent:   evt_model.NewBaseEvent(payment.PaymentID, evt_model.PaymentCheckedOutEventName),
		PaymentID:   payment.PaymentID,
		UserID:      payment.UserID,
		ReferenceID: payment.ReferenceID,
		IsBulk:      payment.IsBulk,
		TotalPrice:  total,
	})
	return &CheckoutResult{
		PaymentID:   payment.PaymentID,
		ReferenceID: payment.ReferenceID,
		TotalPrice:  total,
	}, nil
}

// solo付款單 同用戶同商品已有pending就更新數量與金額 reference不變
func (s *PaymentService) checkoutSolo(ctx context.Context, userID string, line model.CartLine) (*model.Payment, error) {
	lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

	existing, err := s.paymentRepo.FindPendingSolo(ctx, userID, line.ProductID)
	if err == nil {
		return s.paymentRepo.UpdatePayment(ctx, existing.PaymentID, func(payment *model.Payment) error {
			payment.ProductName = line.Name
			payment.Quantity = line.Quantity
			payment.Price = lineTotal
			payment.UpdatedAt = time.Now().UTC()
			return nil
		})
	}
	if !errors.Is(err, store_repo.ErrPaymentNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &model.Payment{
		PaymentID:   util.NewID(),
		UserID:      userID,
		SellerID:    s.resolveSeller(ctx, line.ProductID),
		ReferenceID: util.NewReferenceToken(),
		Method:      model.PaymentMethodQRPh,
		IsBulk:      false,
		ProductID:   line.ProductID,
		ProductName: line.Name,
		Quantity:    line.Quantity,
		Price:       lineTotal,
		Status:      model.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.paymentRepo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// bulk付款單 同用戶已有pending bulk就把行項併進去重算合計
func (s *PaymentService) checkoutBulk(ctx context.Context, userID string, selected []model.CartLine) (*model.Payment, error) {
	lines := make([]model.PaymentLine, len(selected))
	for i, line := range selected {
		lines[i] = model.PaymentLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		}
	}

	existing, err := s.paymentRepo.FindPendingBulk(ctx, userID)
	if err == nil {
		return s.paymentRepo.UpdatePayment(ctx, existing.PaymentID, func(payment *model.Payment) error {
			for _, line := range lines {
				merged := false
				for i := range payment.Products {
					if payment.Products[i].ProductID == line.ProductID {
						payment.Products[i] = line
						merged = true
						break
					}
				}
				if !merged {
					payment.Products = append(payment.Products, line)
				}
			}
			payment.TotalPrice = util.CalculatePaymentLinesTotal(payment.Products)
			payment.UpdatedAt = time.Now().UTC()
			return nil
		})
	}
	if !errors.Is(err, store_repo.ErrPaymentNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &model.Payment{
		PaymentID:   util.NewID(),
		UserID:      userID,
		SellerID:    s.resolveSeller(ctx, selected[0].ProductID),
		ReferenceID: util.NewReferenceToken(),
		Method:      model.PaymentMethodQRPh,
		IsBulk:      true,
		Products:    lines,
		TotalPrice:  util.CalculatePaymentLinesTotal(lines),
		Status:      model.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.paymentRepo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Approve 核准付款 pending -> approved
// 核准同時鎖定金額 清掉購物車對應行項並通知買家 任一步失敗整個轉移回滾
// 錯誤:
//   - ErrForbidden: caller不是admin
//   - ErrPaymentNotPending: 付款單不在pending
func (s *PaymentService) Approve(ctx context.Context, callerID, paymentID string) (*model.Payment, error) {
	return s.settle(ctx, callerID, paymentID, model.PaymentStatusApproved)
}

// Decline 拒絕付款 pending -> declined
func (s *PaymentService) Decline(ctx context.Context, callerID, paymentID string) (*model.Payment, error) {
	return s.settle(ctx, callerID, paymentID, model.PaymentStatusDeclined)
}

func (s *PaymentService) settle(ctx context.Context, callerID, paymentID string, target model.PaymentStatus) (*model.Payment, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	var updated *model.Payment
	var removedLines []model.CartLine
	steps := []SagaStep{
		{
			Name: "settle-payment",
			Run: func(ctx context.Context) error {
				var err error
				updated, err = s.paymentRepo.UpdatePayment(ctx, paymentID, func(payment *model.Payment) error {
					if payment.Status != model.PaymentStatusPending {
						return ErrPaymentNotPending
					}
					payment.Status = target
					payment.Amount = payment.ResolveAmount()
					payment.UpdatedAt = time.Now().UTC()
					return nil
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, cerr := s.paymentRepo.UpdatePayment(ctx, paymentID, func(payment *model.Payment) error {
					payment.Status = model.PaymentStatusPending
					payment.Amount = decimal.Zero
					return nil
				})
				return cerr
			},
		},
	}
	if target == model.PaymentStatusApproved {
		steps = append(steps, SagaStep{
			Name: "clear-cart-lines",
			Run: func(ctx context.Context) error {
				productIDs := paymentProductIDs(updated)
				cart, err := s.cartSvc.Get(ctx, updated.UserID)
				if err != nil {
					return err
				}
				for _, line := range cart.Lines {
					for _, id := range productIDs {
						if line.ProductID == id {
							removedLines = append(removedLines, line)
						}
					}
				}
				_, err = s.cartSvc.RemoveLines(ctx, updated.UserID, productIDs...)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, cerr := s.cartSvc.RestoreLines(ctx, updated.UserID, removedLines)
				return cerr
			},
		})
	}
	steps = append(steps, SagaStep{
		Name: "notify-buyer",
		Run: func(ctx context.Context) error {
			_, nerr := s.notifier.Emit(ctx, updated.UserID, model.NotificationTypePayment, settleMessage(updated, target))
			return nerr
		},
	})

	sagaName := "payment-approve"
	if target == model.PaymentStatusDeclined {
		sagaName = "payment-decline"
	}
	if err := runSaga(ctx, sagaName, steps); err != nil {
		return nil, err
	}

	s.appendTransition(ctx, updated, model.PaymentStatusPending, target, callerID)
	s.publish(ctx, &evt_model.PaymentStatusChangedEvent{
		BaseEvent: evt_model.NewBaseEvent(paymentID, evt_model.PaymentStatusChangedEventName),
		PaymentID: paymentID,
		UserID:    updated.UserID,
		Status:    target,
		Amount:    updated.Amount,
	})
	return updated, nil
}

// MarkDone 買家確認看過審核結果 approved/declined -> done
// 已經done的再ack一次視為no-op
// 錯誤:
//   - ErrPaymentNotSettled: 付款單還在pending
func (s *PaymentService) MarkDone(ctx context.Context, paymentID string) (*model.Payment, error) {
	var from model.PaymentStatus
	updated, err := s.paymentRepo.UpdatePayment(ctx, paymentID, func(payment *model.Payment) error {
		switch payment.Status {
		case model.PaymentStatusDone:
			return nil
		case model.PaymentStatusPending:
			return ErrPaymentNotSettled
		}
		from = payment.Status
		payment.Status = model.PaymentStatusDone
		payment.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if from != "" {
		s.appendTransition(ctx, updated, from, model.PaymentStatusDone, updated.UserID)
	}
	return updated, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID string) (*model.Payment, error) {
	return s.paymentRepo.GetPayment(ctx, paymentID)
}

func (s *PaymentService) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	return s.paymentRepo.GetPaymentsByUser(ctx, userID)
}

// AuditTrail 查詢付款單的完整狀態轉移歷史 只有admin可查
func (s *PaymentService) AuditTrail(ctx context.Context, callerID, paymentID string) ([]eventdb.PaymentTransition, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if util.IsNil(s.audit) {
		return nil, nil
	}
	return s.audit.ReadTransitions(ctx, paymentID)
}

// 結帳當下從商品資料帶出賣家 失敗不擋結帳流程
func (s *PaymentService) resolveSeller(ctx context.Context, productID string) string {
	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("failed to resolve seller for payment")
		return ""
	}
	return product.UploaderID
}

// 稽核寫入失敗只記錄log 狀態轉移以doc store為準
func (s *PaymentService) appendTransition(ctx context.Context, payment *model.Payment, from, to model.PaymentStatus, actorID string) {
	if util.IsNil(s.audit) {
		return
	}
	err := s.audit.AppendTransition(ctx, eventdb.PaymentTransition{
		PaymentID: payment.PaymentID,
		From:      from,
		To:        to,
		Amount:    payment.ResolveAmount(),
		ActorID:   actorID,
		At:        time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("payment_id", payment.PaymentID).Msg("failed to append payment transition audit")
	}
}

func (s *PaymentService) publish(ctx context.Context, evt evt_model.Event) {
	if util.IsNil(s.bus) {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", string(evt.Type())).Msg("failed to publish payment event")
	}
}

func paymentProductIDs(payment *model.Payment) []string {
	if !payment.IsBulk {
		return []string{payment.ProductID}
	}
	ids := make([]string, len(payment.Products))
	for i, line := range payment.Products {
		ids[i] = line.ProductID
	}
	return ids
}

func settleMessage(payment *model.Payment, target model.PaymentStatus) string {
	subject := fmt.Sprintf("%q", payment.ProductName)
	if payment.IsBulk {
		subject = strings.Join(payment.ProductNames(), ", ")
	}
	amount := payment.ResolveAmount().StringFixed(2)
	if target == model.PaymentStatusApproved {
		return fmt.Sprintf("Your payment for %s (PHP %s) has been approved.", subject, amount)
	}
	return fmt.Sprintf("Your payment for %s (PHP %s) has been declined.", subject, amount)
}
