package repository

import (
	"context"
	"errors"

	"missnotes/internal/cache"
	"missnotes/internal/models"

	"gorm.io/gorm"
)

// FriendshipRepository defines persistence operations for friendships.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	// GetBetween finds the friendship row between two users in either
	// direction. Returns (nil, nil) when no row exists.
	GetBetween(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	Update(ctx context.Context, friendship *models.Friendship) error
	Delete(ctx context.Context, id uint) error
	// FriendIDs returns the IDs of every user the given user holds an
	// accepted friendship with.
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	GetIncomingPending(ctx context.Context, userID uint) ([]models.Friendship, error)
	GetOutgoingPending(ctx context.Context, userID uint) ([]models.Friendship, error)
	// ListInvolving returns every friendship row the user appears in,
	// regardless of status or side.
	ListInvolving(ctx context.Context, userID uint) ([]models.Friendship, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
}

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository returns a new FriendshipRepository implementation.
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("a friendship between these users already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateFriendship(ctx, friendship.RequesterID, friendship.ReceiverID)
	return nil
}

func (r *friendshipRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friendship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendshipRepository) GetBetween(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendshipRepository) Update(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Save(friendship).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFriendship(ctx, friendship.RequesterID, friendship.ReceiverID)
	return nil
}

func (r *friendshipRepository) Delete(ctx context.Context, id uint) error {
	friendship, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Friendship{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFriendship(ctx, friendship.RequesterID, friendship.ReceiverID)
	return nil
}

func (r *friendshipRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}

	err := cache.CacheAside(ctx, cache.FriendIDsKey(userID), &ids, cache.FriendIDsTTL, func() error {
		var friendships []models.Friendship
		if err := r.db.WithContext(ctx).
			Where("status = ? AND (requester_id = ? OR receiver_id = ?)",
				models.FriendshipStatusAccepted, userID, userID).
			Find(&friendships).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, f := range friendships {
			ids = append(ids, f.OtherSide(userID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *friendshipRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.receiver_id)").
		Where("f.status = ? AND (f.requester_id = ? OR f.receiver_id = ?) AND users.id != ?",
			models.FriendshipStatusAccepted, userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *friendshipRepository) GetIncomingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.FriendshipStatusRequested).
		Preload("Requester").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendshipRepository) GetOutgoingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.FriendshipStatusRequested).
		Preload("Receiver").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendshipRepository) ListInvolving(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendshipRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	involved, err := r.ListInvolving(ctx, userID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.Friendship{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, f := range involved {
		cache.InvalidateFriendship(ctx, f.RequesterID, f.ReceiverID)
	}
	return nil
}
