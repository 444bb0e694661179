package server

import (
	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications. Supports
// ?unread=true and limit/offset pagination; newest first.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	unreadOnly := c.QueryBool("unread", false)

	notifications, err := s.notificationService.List(c.Context(), currentUserID(c), unreadOnly, p.Limit, p.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

// GetNotificationCount handles GET /api/notifications/count
func (s *Server) GetNotificationCount(c *fiber.Ctx) error {
	total, unread, err := s.notificationService.Count(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  total,
		"unread": unread,
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	notification, err := s.notificationService.MarkRead(c.Context(), currentUserID(c), notificationID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(notification)
}

// MarkAllNotificationsRead handles PATCH /api/notifications/read
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.Delete(c.Context(), currentUserID(c), notificationID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
