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
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
)

type ProductRepo struct {
	store docstore.Store
}

func NewProductRepo(store docstore.Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	doc, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return r.store.Set(ctx, docstore.CollectionProducts, product.ProductID, doc)
}

func (r *ProductRepo) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionProducts, productID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	var product model.Product
	if err := json.Unmarshal(doc, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product %s: %w", productID, err)
	}
	return &product, nil
}

// UpdateProduct 單文件原子修改 文件不存在回傳ErrProductNotFound
func (r *ProductRepo) UpdateProduct(ctx context.Context, productID string, mutate func(product *model.Product) error) (*model.Product, error) {
	var updated model.Product
	_, err := r.store.Update(ctx, docstore.CollectionProducts, productID, func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, ErrProductNotFound
		}
		var product model.Product
		if err := json.Unmarshal(cur, &product); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product %s: %w", productID, err)
		}
		if err := mutate(&product); err != nil {
			return nil, err
		}
		updated = product
		return json.Marshal(product)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ProductRepo) GetProductsByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionProducts, docstore.Where("status", string(status)))
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(docs))
	for id, doc := range docs {
		var product model.Product
		if err := json.Unmarshal(doc, &product); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product %s: %w", id, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, productID string) error {
	err := r.store.Delete(ctx, docstore.CollectionProducts, productID)
	if errors.Is(err, docstore.ErrDocNotFound) {
		return ErrProductNotFound
	}
	return err
}
