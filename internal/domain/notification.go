package domain

import "time"

// NotificationType tags the visual flavor of an alert.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// Notification is a single alert addressed to exactly one account. Only
// the IsRead flag ever changes after insert.
type Notification struct {
	ID          string
	RecipientID string
	Title       string
	Message     string
	Type        NotificationType
	Link        string
	RelatedID   string
	IsRead      bool
	CreatedAt   time.Time
}
