package store_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
)

// CartRepo 一個用戶一份購物車文件 key為userID
// 不存在視為空購物車 不是錯誤
type CartRepo struct {
	store docstore.Store
}

func NewCartRepo(store docstore.Store) *CartRepo {
	return &CartRepo{store: store}
}

func (r *CartRepo) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionCarts, userID)
	if err == docstore.ErrDocNotFound {
		return &model.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	var cart model.Cart
	if err := json.Unmarshal(doc, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart %s: %w", userID, err)
	}
	return &cart, nil
}

// UpdateCart 原子修改整份行項清單
// mutate收到的cart永遠非nil 空購物車為空白基底
func (r *CartRepo) UpdateCart(ctx context.Context, userID string, mutate func(cart *model.Cart) error) (*model.Cart, error) {
	var updated model.Cart
	_, err := r.store.Update(ctx, docstore.CollectionCarts, userID, func(cur []byte) ([]byte, error) {
		cart := model.Cart{UserID: userID}
		if cur != nil {
			if err := json.Unmarshal(cur, &cart); err != nil {
				return nil, fmt.Errorf("failed to unmarshal cart %s: %w", userID, err)
			}
		}
		if err := mutate(&cart); err != nil {
			return nil, err
		}
		cart.UpdatedAt = time.Now().UTC()
		updated = cart
		return json.Marshal(cart)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
