package model

import "time"

type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)

type NotificationType string

const (
	NotificationTypePayment     NotificationType = "payment"
	NotificationTypeProduct     NotificationType = "product"
	NotificationTypeOrder       NotificationType = "order"
	NotificationTypeLiquidation NotificationType = "liquidation"
	NotificationTypeWishlist    NotificationType = "wishlist"
	NotificationTypePassword    NotificationType = "password_change"
)

// Notification 只有status可變 其餘append-only
type Notification struct {
	NotificationID string             `json:"notification_id"`
	UserID         string             `json:"user_id"`
	Type           NotificationType   `json:"type"`
	Message        string             `json:"message"`
	Status         NotificationStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}
