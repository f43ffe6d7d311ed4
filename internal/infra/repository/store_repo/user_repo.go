package store_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepo 對core唯讀 caller身分查詢用
type UserRepo struct {
	store docstore.Store
}

func NewUserRepo(store docstore.Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", userID, err)
	}
	return &user, nil
}

func (r *UserRepo) GetRole(ctx context.Context, userID string) (model.Role, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
