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
	// ErrLiquidationNotFound 清算紀錄不存在
	ErrLiquidationNotFound = errors.New("liquidation record not found")
)

type LiquidationRepo struct {
	store docstore.Store
}

func NewLiquidationRepo(store docstore.Store) *LiquidationRepo {
	return &LiquidationRepo{store: store}
}

// Append 寫入清算紀錄 紀錄為append-only不提供update
func (r *LiquidationRepo) Append(ctx context.Context, record *model.LiquidationRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal liquidation record: %w", err)
	}
	return r.store.Set(ctx, docstore.CollectionLiquidations, record.RecordID, doc)
}

func (r *LiquidationRepo) Get(ctx context.Context, recordID string) (*model.LiquidationRecord, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionLiquidations, recordID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, ErrLiquidationNotFound
		}
		return nil, err
	}
	var record model.LiquidationRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal liquidation record %s: %w", recordID, err)
	}
	return &record, nil
}

func (r *LiquidationRepo) GetByPayment(ctx context.Context, paymentID string) (*model.LiquidationRecord, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionLiquidations, docstore.Where("payment_id", paymentID))
	if err != nil {
		return nil, err
	}
	for id, doc := range docs {
		var record model.LiquidationRecord
		if err := json.Unmarshal(doc, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal liquidation record %s: %w", id, err)
		}
		return &record, nil
	}
	return nil, ErrLiquidationNotFound
}

func (r *LiquidationRepo) ListBySeller(ctx context.Context, sellerID string) ([]model.LiquidationRecord, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionLiquidations, docstore.Where("seller_id", sellerID))
	if err != nil {
		return nil, err
	}
	records := make([]model.LiquidationRecord, 0, len(docs))
	for id, doc := range docs {
		var record model.LiquidationRecord
		if err := json.Unmarshal(doc, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal liquidation record %s: %w", id, err)
		}
		records = append(records, record)
	}
	return records, nil
}
