package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/api/dto"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// NotificationsHandler exposes the recipient-facing notification endpoints.
type NotificationsHandler struct {
	notifications repository.NotificationRepository
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	list, err := h.notifications.ListByRecipient(c.Context(), actor.ID,
		parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}

	resp := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.NewNotificationResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	count, err := h.notifications.CountUnread(c.Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread": count}})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	if err := h.notifications.MarkRead(c.Context(), actor.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "read"}})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	if err := h.notifications.MarkAllRead(c.Context(), actor.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "read"}})
}
