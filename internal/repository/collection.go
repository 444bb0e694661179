package repository

import (
	"context"
	"errors"

	"missnotes/internal/cache"
	"missnotes/internal/models"

	"gorm.io/gorm"
)

// CollectionRepository defines persistence operations for collections.
// Notes and SharedWith are JSON document columns; see NoteRepository for
// the membership-query approach.
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Collection, error)
	// ListAll returns every collection. Admin surface only.
	ListAll(ctx context.Context) ([]models.Collection, error)
	// ListSharedWith returns collections whose sharing list contains userID.
	ListSharedWith(ctx context.Context, userID uint) ([]models.Collection, error)
	// RemoveNoteFromAll strips noteID from the note list of every
	// collection that carries it. Used when a note is deleted.
	RemoveNoteFromAll(ctx context.Context, noteID uint) error
	// RemoveUserFromShares strips userID from the sharing list of every
	// collection that carries it. Used by the account-deletion cascade.
	RemoveUserFromShares(ctx context.Context, userID uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository returns a new CollectionRepository implementation.
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection

	err := cache.CacheAside(ctx, cache.CollectionKey(id), &collection, cache.CollectionTTL, func() error {
		if err := r.db.WithContext(ctx).First(&collection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Collection", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	if err := r.db.WithContext(ctx).Save(collection).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCollection(ctx, collection.ID)
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Collection{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCollection(ctx, id)
	return nil
}

func (r *collectionRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) ListAll(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).Order("id").Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) ListSharedWith(ctx context.Context, userID uint) ([]models.Collection, error) {
	var candidates []models.Collection
	if err := r.db.WithContext(ctx).
		Where("owner_id != ?", userID).
		Order("updated_at DESC").
		Find(&candidates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var collections []models.Collection
	for _, c := range candidates {
		if c.SharedWith.Contains(userID) {
			collections = append(collections, c)
		}
	}
	return collections, nil
}

func (r *collectionRepository) RemoveNoteFromAll(ctx context.Context, noteID uint) error {
	var candidates []models.Collection
	if err := r.db.WithContext(ctx).Find(&candidates).Error; err != nil {
		return models.NewInternalError(err)
	}

	for i := range candidates {
		c := &candidates[i]
		if !c.Notes.Contains(noteID) {
			continue
		}
		c.Notes = c.Notes.Remove(noteID)
		if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
			return models.NewInternalError(err)
		}
		cache.InvalidateCollection(ctx, c.ID)
	}
	return nil
}

func (r *collectionRepository) RemoveUserFromShares(ctx context.Context, userID uint) error {
	var candidates []models.Collection
	if err := r.db.WithContext(ctx).
		Where("owner_id != ?", userID).
		Find(&candidates).Error; err != nil {
		return models.NewInternalError(err)
	}

	for i := range candidates {
		c := &candidates[i]
		if !c.SharedWith.Contains(userID) {
			continue
		}
		c.SharedWith = c.SharedWith.Remove(userID)
		if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
			return models.NewInternalError(err)
		}
		cache.InvalidateCollection(ctx, c.ID)
	}
	return nil
}

func (r *collectionRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	owned, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.Collection{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, c := range owned {
		cache.InvalidateCollection(ctx, c.ID)
	}
	return nil
}
