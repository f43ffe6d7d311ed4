package store_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepo append-only 只有read flag可以翻
type NotificationRepo struct {
	store docstore.Store
}

func NewNotificationRepo(store docstore.Store) *NotificationRepo {
	return &NotificationRepo{store: store}
}

func (r *NotificationRepo) Append(ctx context.Context, notification *model.Notification) error {
	doc, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return r.store.Set(ctx, docstore.CollectionNotifications, notification.NotificationID, doc)
}

// ListByUser 新到舊排序
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionNotifications, docstore.Where("user_id", userID))
	if err != nil {
		return nil, err
	}
	notifications := make([]model.Notification, 0, len(docs))
	for id, doc := range docs {
		var notification model.Notification
		if err := json.Unmarshal(doc, &notification); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification %s: %w", id, err)
		}
		notifications = append(notifications, notification)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) error {
	_, err := r.store.Update(ctx, docstore.CollectionNotifications, notificationID, func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, ErrNotificationNotFound
		}
		var notification model.Notification
		if err := json.Unmarshal(cur, &notification); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification %s: %w", notificationID, err)
		}
		notification.Status = model.NotificationStatusRead
		return json.Marshal(notification)
	})
	return err
}

func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	err := r.store.Delete(ctx, docstore.CollectionNotifications, notificationID)
	if errors.Is(err, docstore.ErrDocNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
