package service

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/util"
)

// NotificationService 同步寫入通知
// 狀態轉移流程把寫入失敗視為轉移失敗 所以這裡不做fire-and-forget
type NotificationService struct {
	notificationRepo *store_repo.NotificationRepo
}

func NewNotificationService(notificationRepo *store_repo.NotificationRepo) *NotificationService {
	if notificationRepo == nil {
		panic("notification service dependency notificationRepo is nil")
	}
	return &NotificationService{notificationRepo: notificationRepo}
}

// Emit 寫入一筆未讀通知
// 錯誤:
//   - ErrEmptyMessage: 訊息為空
//   - err: 其他錯誤
func (s *NotificationService) Emit(ctx context.Context, userID string, notificationType model.NotificationType, message string) (*model.Notification, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}
	notification := &model.Notification{
		NotificationID: util.NewID(),
		UserID:         userID,
		Type:           notificationType,
		Message:        message,
		Status:         model.NotificationStatusUnread,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.notificationRepo.Append(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

func (s *NotificationService) Delete(ctx context.Context, notificationID string) error {
	return s.notificationRepo.Delete(ctx, notificationID)
}
