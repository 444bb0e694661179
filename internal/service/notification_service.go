package service

import (
	"context"

	"missnotes/internal/models"
	"missnotes/internal/repository"
)

// NotificationService exposes the recipient-facing feed operations.
// Feed entries belong strictly to their recipient; access by anyone
// else reports not-found.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns the actor's feed, newest first.
func (s *NotificationService) List(ctx context.Context, actorID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, actorID, unreadOnly, limit, offset)
}

// Count returns total and unread entry counts for the actor's feed.
func (s *NotificationService) Count(ctx context.Context, actorID uint) (total, unread int64, err error) {
	total, err = s.notificationRepo.CountTotal(ctx, actorID)
	if err != nil {
		return 0, 0, err
	}
	unread, err = s.notificationRepo.CountUnread(ctx, actorID)
	if err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}

// MarkRead marks one of the actor's feed entries as read.
func (s *NotificationService) MarkRead(ctx context.Context, actorID, notificationID uint) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.RecipientID != actorID {
		return nil, models.NewNotFoundError("Notification", notificationID)
	}

	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return nil, err
	}
	notification.Read = true
	return notification, nil
}

// MarkAllRead marks the actor's whole feed as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actorID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, actorID)
}

// Delete removes one of the actor's feed entries.
func (s *NotificationService) Delete(ctx context.Context, actorID, notificationID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != actorID {
		return models.NewNotFoundError("Notification", notificationID)
	}
	return s.notificationRepo.Delete(ctx, notificationID)
}
