package repository

import (
	"context"
	"errors"

	"missnotes/internal/cache"
	"missnotes/internal/models"

	"gorm.io/gorm"
)

// NoteRepository defines persistence operations for notes.
//
// SharedWith is a JSON document column, so membership queries load the
// candidate rows and filter in Go rather than relying on DB-specific
// JSON operators. That keeps the same code path working on Postgres in
// production and in-memory SQLite in tests.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uint) (*models.Note, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Note, error)
	// ListAll returns every note. Admin surface only.
	ListAll(ctx context.Context) ([]models.Note, error)
	// ListSharedWith returns notes whose sharing list contains userID.
	ListSharedWith(ctx context.Context, userID uint) ([]models.Note, error)
	// RemoveUserFromShares strips userID from the sharing list of every
	// note that carries it. Used by the account-deletion cascade.
	RemoveUserFromShares(ctx context.Context, userID uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository returns a new NoteRepository implementation.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note

	err := cache.CacheAside(ctx, cache.NoteKey(id), &note, cache.NoteTTL, func() error {
		if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Note", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var notes []models.Note
	if err := r.db.WithContext(ctx).Where("id IN ?", []uint(ids)).Find(&notes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Save(note).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNote(ctx, note.ID)
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Note{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNote(ctx, id)
	return nil
}

func (r *noteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&notes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notes, nil
}

func (r *noteRepository) ListAll(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).Order("id").Find(&notes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notes, nil
}

func (r *noteRepository) ListSharedWith(ctx context.Context, userID uint) ([]models.Note, error) {
	var candidates []models.Note
	if err := r.db.WithContext(ctx).
		Where("owner_id != ?", userID).
		Order("updated_at DESC").
		Find(&candidates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var notes []models.Note
	for _, n := range candidates {
		if n.SharedWith.Contains(userID) {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (r *noteRepository) RemoveUserFromShares(ctx context.Context, userID uint) error {
	var candidates []models.Note
	if err := r.db.WithContext(ctx).
		Where("owner_id != ?", userID).
		Find(&candidates).Error; err != nil {
		return models.NewInternalError(err)
	}

	for i := range candidates {
		n := &candidates[i]
		if !n.SharedWith.Contains(userID) {
			continue
		}
		n.SharedWith = n.SharedWith.Remove(userID)
		if err := r.db.WithContext(ctx).Save(n).Error; err != nil {
			return models.NewInternalError(err)
		}
		cache.InvalidateNote(ctx, n.ID)
	}
	return nil
}

func (r *noteRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	owned, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.Note{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, n := range owned {
		cache.InvalidateNote(ctx, n.ID)
	}
	return nil
}
