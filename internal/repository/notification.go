package repository

import (
	"context"
	"errors"

	"missnotes/internal/cache"
	"missnotes/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for the
// notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	CountTotal(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, recipientID uint) error
	Delete(ctx context.Context, id uint) error
	DeleteByRecipient(ctx context.Context, recipientID uint) error
	// DeleteReferencingUser removes entries from other users' feeds whose
	// payload points at the given user as the friend. Used by the
	// account-deletion cascade so feeds never hold dangling references.
	DeleteReferencingUser(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, notification.RecipientID)
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &notification, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64

	err := cache.CacheAside(ctx, cache.UnreadCountKey(recipientID), &count, cache.UnreadCountTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("recipient_id = ? AND read = ?", recipientID, false).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) CountTotal(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	notification, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, notification.RecipientID)
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	notification, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, notification.RecipientID)
	return nil
}

// Payload is a JSON document column, so the candidates are loaded and
// filtered in Go, same as the share-list scrubs in the note repository.
func (r *notificationRepository) DeleteReferencingUser(ctx context.Context, userID uint) error {
	var candidates []models.Notification
	if err := r.db.WithContext(ctx).Find(&candidates).Error; err != nil {
		return models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(candidates))
	recipients := make(map[uint]struct{})
	for _, n := range candidates {
		if n.Payload.FriendID == userID {
			ids = append(ids, n.ID)
			recipients[n.RecipientID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for recipientID := range recipients {
		cache.InvalidateUnreadCount(ctx, recipientID)
	}
	return nil
}

func (r *notificationRepository) DeleteByRecipient(ctx context.Context, recipientID uint) error {
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}
