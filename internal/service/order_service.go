package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PlaceOrderResult ReferenceID與付款單共用 兩邊用它關聯
type PlaceOrderResult struct {
	OrderID     string
	ReferenceID string
	TotalPrice  decimal.Decimal
}

// OrderService 出貨單流程
// 下單會先走結帳建立付款單 出貨單直接沿用付款單的reference
type OrderService struct {
	authz
	orderRepo  *store_repo.OrderRepo
	paymentSvc *PaymentService
	notifier   *NotificationService
	bus        eventbus.Bus
}

func NewOrderService(
	orderRepo *store_repo.OrderRepo,
	userRepo *store_repo.UserRepo,
	paymentSvc *PaymentService,
	notifier *NotificationService,
	bus eventbus.Bus,
) *OrderService {
	if orderRepo == nil || userRepo == nil || paymentSvc == nil || notifier == nil {
		panic("order service dependency is nil")
	}
	return &OrderService{
		authz:      authz{userRepo: userRepo},
		orderRepo:  orderRepo,
		paymentSvc: paymentSvc,
		notifier:   notifier,
		bus:        bus,
	}
}

// PlaceOrder 下單
// 先結帳拿到付款單reference 再建立出貨單 地址五個欄位缺一不可
// 錯誤:
//   - ErrEmptySelection: 沒有選擇任何行項
//   - ErrIncompleteAddress: 地址不完整
func (s *OrderService) PlaceOrder(ctx context.Context, userID, sellerID string, lines []model.CartLine, address model.ShippingAddress) (*PlaceOrderResult, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	if len(lines) == 0 {
		return nil, ErrEmptySelection
	}
	if !address.IsComplete() {
		return nil, ErrIncompleteAddress
	}

	checkout, err := s.paymentSvc.Checkout(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderID:         util.NewID(),
		UserID:          userID,
		SellerID:        sellerID,
		ReferenceID:     checkout.ReferenceID,
		TotalPrice:      checkout.TotalPrice,
		ShippingAddress: address,
		Status:          model.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if len(lines) == 1 {
		order.ProductID = lines[0].ProductID
		order.ProductName = lines[0].Name
		order.Quantity = lines[0].Quantity
		order.Price = lines[0].UnitPrice.Mul(decimal.NewFromInt(int64(lines[0].Quantity)))
	} else {
		order.Products = make([]model.PaymentLine, len(lines))
		for i, line := range lines {
			order.Products[i] = model.PaymentLine{
				ProductID: line.ProductID,
				Name:      line.Name,
				Quantity:  line.Quantity,
				Price:     line.UnitPrice,
			}
		}
	}
	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, &evt_model.OrderPlacedEvent{
		BaseEvent:   evt_model.NewBaseEvent(order.OrderID, evt_model.OrderPlacedEventName),
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		SellerID:    order.SellerID,
		ReferenceID: order.ReferenceID,
		TotalPrice:  order.TotalPrice,
	})
	return &PlaceOrderResult{
		OrderID:     order.OrderID,
		ReferenceID: order.ReferenceID,
		TotalPrice:  order.TotalPrice,
	}, nil
}

// UpdateStatus 賣家決定出貨單 pending -> approved/rejected 結果不可逆
// 錯誤:
//   - ErrNotOrderSeller: caller不是這張單的賣家
//   - ErrOrderDecided: 出貨單已決定過
func (s *OrderService) UpdateStatus(ctx context.Context, callerID, orderID string, status model.OrderStatus) (*model.Order, error) {
	if status != model.OrderStatusApproved && status != model.OrderStatusRejected {
		return nil, fmt.Errorf("unsupported order status: %s", status)
	}

	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != callerID {
		if err := s.requireAdmin(ctx, callerID); err != nil {
			return nil, ErrNotOrderSeller
		}
	}

	updated, err := s.orderRepo.UpdateOrder(ctx, orderID, func(order *model.Order) error {
		if order.Status != model.OrderStatusPending {
			return ErrOrderDecided
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	subject := orderSubject(updated)
	var message string
	if status == model.OrderStatusApproved {
		message = fmt.Sprintf("Your order for %s has been approved by the seller.", subject)
	} else {
		message = fmt.Sprintf("Your order for %s has been rejected by the seller.", subject)
	}
	if _, err := s.notifier.Emit(ctx, updated.UserID, model.NotificationTypeOrder, message); err != nil {
		return nil, err
	}

	s.publish(ctx, &evt_model.OrderStatusChangedEvent{
		BaseEvent: evt_model.NewBaseEvent(orderID, evt_model.OrderStatusChangedEventName),
		OrderID:   orderID,
		UserID:    updated.UserID,
		Status:    updated.Status,
	})
	return updated, nil
}

// MarkReceived 買家確認收貨 只有approved的單可以確認 重複確認視為no-op
// 錯誤:
//   - ErrNotOrderOwner: caller不是買家本人
//   - ErrOrderNotApproved: 出貨單不是approved
func (s *OrderService) MarkReceived(ctx context.Context, callerID, orderID string) (*model.Order, error) {
	var already bool
	updated, err := s.orderRepo.UpdateOrder(ctx, orderID, func(order *model.Order) error {
		if order.UserID != callerID {
			return ErrNotOrderOwner
		}
		if order.Status != model.OrderStatusApproved {
			return ErrOrderNotApproved
		}
		if order.BuyerReceived {
			already = true
			return nil
		}
		order.BuyerReceived = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if already {
		return updated, nil
	}

	if updated.SellerID != "" {
		message := fmt.Sprintf("Buyer confirmed receipt of order for %s.", orderSubject(updated))
		if _, err := s.notifier.Emit(ctx, updated.SellerID, model.NotificationTypeOrder, message); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, &evt_model.OrderReceivedEvent{
		BaseEvent: evt_model.NewBaseEvent(orderID, evt_model.OrderReceivedEventName),
		OrderID:   orderID,
		UserID:    updated.UserID,
	})
	return updated, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.GetOrder(ctx, orderID)
}

func (s *OrderService) GetByReference(ctx context.Context, referenceID string) (*model.Order, error) {
	return s.orderRepo.GetOrderByReference(ctx, referenceID)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orderRepo.GetOrdersByUser(ctx, userID)
}

func (s *OrderService) ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return s.orderRepo.GetOrdersBySeller(ctx, sellerID)
}

// ListBuyerReceived 管理後台用 列出所有已確認收貨的單
func (s *OrderService) ListBuyerReceived(ctx context.Context, callerID string) ([]model.Order, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetBuyerReceivedOrders(ctx)
}

func (s *OrderService) publish(ctx context.Context, evt evt_model.Event) {
	if util.IsNil(s.bus) {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", string(evt.Type())).Msg("failed to publish order event")
	}
}

func orderSubject(order *model.Order) string {
	if order.ProductName != "" {
		return fmt.Sprintf("%q", order.ProductName)
	}
	names := make([]string, len(order.Products))
	for i, line := range order.Products {
		names[i] = line.Name
	}
	if len(names) == 0 {
		return "your items"
	}
	return fmt.Sprintf("%d items", len(names))
}
