package repository

import (
	"context"
	"testing"

	"missnotes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepository(db)
	ctx := context.Background()

	t.Run("Create and GetByID round-trips content blocks", func(t *testing.T) {
		note := &models.Note{
			OwnerID: 1,
			Title:   "Groceries",
			Content: []models.ContentBlock{
				{Kind: models.BlockKindText, Lines: []string{"don't forget"}},
				{Kind: models.BlockKindChecklist, Checks: []models.ChecklistItem{
					{Text: "milk", Checked: true},
					{Text: "eggs"},
				}},
			},
			SharedWith: models.IDList{2, 3},
		}
		require.NoError(t, repo.Create(ctx, note))
		require.NotZero(t, note.ID)

		got, err := repo.GetByID(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", got.Title)
		require.Len(t, got.Content, 2)
		assert.Equal(t, models.BlockKindChecklist, got.Content[1].Kind)
		assert.True(t, got.Content[1].Checks[0].Checked)
		assert.Equal(t, models.IDList{2, 3}, got.SharedWith)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("ListByOwner and ListSharedWith", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.Note{OwnerID: 2, Title: "Private"}))
		require.NoError(t, repo.Create(ctx, &models.Note{OwnerID: 2, Title: "For one", SharedWith: models.IDList{3}}))

		owned, err := repo.ListByOwner(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, owned, 2)

		shared, err := repo.ListSharedWith(ctx, 3)
		require.NoError(t, err)
		require.Len(t, shared, 2)
		titles := []string{shared[0].Title, shared[1].Title}
		assert.Contains(t, titles, "Groceries")
		assert.Contains(t, titles, "For one")
	})

	t.Run("GetByIDs", func(t *testing.T) {
		owned, err := repo.ListByOwner(ctx, 2)
		require.NoError(t, err)

		notes, err := repo.GetByIDs(ctx, []uint{owned[0].ID, owned[1].ID})
		require.NoError(t, err)
		assert.Len(t, notes, 2)

		none, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("RemoveUserFromShares", func(t *testing.T) {
		require.NoError(t, repo.RemoveUserFromShares(ctx, 3))

		shared, err := repo.ListSharedWith(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, shared)

		// user 2 is still on the first note's list
		shared, err = repo.ListSharedWith(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, shared, 1)
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		require.NoError(t, repo.DeleteByOwner(ctx, 2))
		owned, err := repo.ListByOwner(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, owned)
	})
}
