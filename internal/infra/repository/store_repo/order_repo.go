package store_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
)

var (
	// ErrOrderNotFound 出貨單不存在
	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepo struct {
	store docstore.Store
}

func NewOrderRepo(store docstore.Store) *OrderRepo {
	return &OrderRepo{store: store}
}

func (r *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	return r.store.Set(ctx, docstore.CollectionOrders, order.OrderID, doc)
}

func (r *OrderRepo) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionOrders, orderID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	var order model.Order
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
	}
	return &order, nil
}

func (r *OrderRepo) UpdateOrder(ctx context.Context, orderID string, mutate func(order *model.Order) error) (*model.Order, error) {
	var updated model.Order
	_, err := r.store.Update(ctx, docstore.CollectionOrders, orderID, func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, ErrOrderNotFound
		}
		var order model.Order
		if err := json.Unmarshal(cur, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
		}
		if err := mutate(&order); err != nil {
			return nil, err
		}
		updated = order
		return json.Marshal(order)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *OrderRepo) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.list(ctx, docstore.Where("user_id", userID))
}

func (r *OrderRepo) GetOrdersBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return r.list(ctx, docstore.Where("seller_id", sellerID))
}

// GetOrderByReference referenceId是Order與Payment的關聯鍵
func (r *OrderRepo) GetOrderByReference(ctx context.Context, referenceID string) (*model.Order, error) {
	orders, err := r.list(ctx, docstore.Where("reference_id", referenceID))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

// GetBuyerReceivedOrders admin儀表板用 買家已確認收貨清單
func (r *OrderRepo) GetBuyerReceivedOrders(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, docstore.Where("buyer_received", true))
}

func (r *OrderRepo) list(ctx context.Context, filters ...docstore.Filter) ([]model.Order, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionOrders, filters...)
	if err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(docs))
	for id, doc := range docs {
		var order model.Order
		if err := json.Unmarshal(doc, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order %s: %w", id, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}
