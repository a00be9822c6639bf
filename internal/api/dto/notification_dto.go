package dto

import (
	"time"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// NotificationResponse is the externally visible alert shape.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	Link      string                  `json:"link,omitempty"`
	RelatedID string                  `json:"related_id,omitempty"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
