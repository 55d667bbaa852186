package models

import "time"

// NotificationType categorizes notifications for client rendering.
type NotificationType string

const (
	NotificationTypeLevelUp  NotificationType = "level_up"
	NotificationTypeReferral NotificationType = "referral"
	NotificationTypeComment  NotificationType = "comment"
	NotificationTypeLike     NotificationType = "like"
	NotificationTypeReport   NotificationType = "report"
	NotificationTypeSystem   NotificationType = "system"
)

// Notification is a durable per-user notification row. Real-time delivery
// over the websocket hub is best-effort; the row is the source of truth.
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title   string           `gorm:"size:120;not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	// TargetType/TargetID point at the entity the notification is about.
	TargetType string `gorm:"size:20" json:"target_type,omitempty"`
	TargetID   uint   `json:"target_id,omitempty"`
	IsRead     bool   `gorm:"not null;default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
