package store_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
)

var ErrListingNotFound = errors.New("category listing not found")

// ListingRepo 分類view的反正規化listing
// 寫入目標collection由審核流程的分類對照決定
type ListingRepo struct {
	store docstore.Store
}

func NewListingRepo(store docstore.Store) *ListingRepo {
	return &ListingRepo{store: store}
}

func (r *ListingRepo) CreateListing(ctx context.Context, coll docstore.Collection, listing *model.CategoryListing) error {
	doc, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	return r.store.Set(ctx, coll, listing.ProductID, doc)
}

func (r *ListingRepo) GetListing(ctx context.Context, coll docstore.Collection, productID string) (*model.CategoryListing, error) {
	doc, err := r.store.Get(ctx, coll, productID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	var listing model.CategoryListing
	if err := json.Unmarshal(doc, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing %s: %w", productID, err)
	}
	return &listing, nil
}

func (r *ListingRepo) ListByCategory(ctx context.Context, coll docstore.Collection, category model.Category) ([]model.CategoryListing, error) {
	docs, err := r.store.Query(ctx, coll, docstore.Where("category", string(category)))
	if err != nil {
		return nil, err
	}
	listings := make([]model.CategoryListing, 0, len(docs))
	for id, doc := range docs {
		var listing model.CategoryListing
		if err := json.Unmarshal(doc, &listing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal listing %s: %w", id, err)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// DeleteListing 只有來源商品被刪除時才會呼叫
func (r *ListingRepo) DeleteListing(ctx context.Context, coll docstore.Collection, productID string) error {
	err := r.store.Delete(ctx, coll, productID)
	if errors.Is(err, docstore.ErrDocNotFound) {
		return ErrListingNotFound
	}
	return err
}
