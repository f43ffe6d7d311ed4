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
	// ErrPaymentNotFound 付款單不存在
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentRepo struct {
	store docstore.Store
}

func NewPaymentRepo(store docstore.Store) *PaymentRepo {
	return &PaymentRepo{store: store}
}

func (r *PaymentRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	doc, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}
	return r.store.Set(ctx, docstore.CollectionPayments, payment.PaymentID, doc)
}

func (r *PaymentRepo) GetPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionPayments, paymentID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	var payment model.Payment
	if err := json.Unmarshal(doc, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

// UpdatePayment 單文件原子修改 狀態機轉移都走這裡
func (r *PaymentRepo) UpdatePayment(ctx context.Context, paymentID string, mutate func(payment *model.Payment) error) (*model.Payment, error) {
	var updated model.Payment
	_, err := r.store.Update(ctx, docstore.CollectionPayments, paymentID, func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, ErrPaymentNotFound
		}
		var payment model.Payment
		if err := json.Unmarshal(cur, &payment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment %s: %w", paymentID, err)
		}
		if err := mutate(&payment); err != nil {
			return nil, err
		}
		updated = payment
		return json.Marshal(payment)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindPendingSolo 同用戶同商品的pending solo付款單 冪等upsert的查詢鍵
func (r *PaymentRepo) FindPendingSolo(ctx context.Context, userID, productID string) (*model.Payment, error) {
	return r.findOne(ctx,
		docstore.Where("user_id", userID),
		docstore.Where("product_id", productID),
		docstore.Where("status", string(model.PaymentStatusPending)),
		docstore.Where("is_bulk", false),
	)
}

// FindPendingBulk 同用戶的pending bulk付款單
func (r *PaymentRepo) FindPendingBulk(ctx context.Context, userID string) (*model.Payment, error) {
	return r.findOne(ctx,
		docstore.Where("user_id", userID),
		docstore.Where("status", string(model.PaymentStatusPending)),
		docstore.Where("is_bulk", true),
	)
}

func (r *PaymentRepo) GetPaymentsByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionPayments, docstore.Where("user_id", userID))
	if err != nil {
		return nil, err
	}
	payments := make([]model.Payment, 0, len(docs))
	for id, doc := range docs {
		var payment model.Payment
		if err := json.Unmarshal(doc, &payment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment %s: %w", id, err)
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (r *PaymentRepo) findOne(ctx context.Context, filters ...docstore.Filter) (*model.Payment, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionPayments, filters...)
	if err != nil {
		return nil, err
	}
	for id, doc := range docs {
		var payment model.Payment
		if err := json.Unmarshal(doc, &payment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment %s: %w", id, err)
		}
		return &payment, nil
	}
	return nil, ErrPaymentNotFound
}
