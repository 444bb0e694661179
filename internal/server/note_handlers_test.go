package server

import (
	"net/http"
	"testing"

	"missnotes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noteBody(title string, lines ...string) map[string]any {
	return map[string]any{
		"title": title,
		"content": []map[string]any{
			{"kind": "text", "lines": lines},
		},
	}
}

func TestNoteCrud(t *testing.T) {
	app, _ := setupTestServer(t)
	tokenA, userA := registerUser(t, app, "Ann", "ann@example.com")
	tokenB, _ := registerUser(t, app, "Bea", "bea@example.com")

	var note models.Note
	resp := doJSON(t, app, http.MethodPost, "/api/notes/", tokenA,
		noteBody("Groceries", "milk", "eggs"), &note)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, userA.ID, note.OwnerID)
	require.Len(t, note.Content, 1)
	assert.Equal(t, models.BlockKindText, note.Content[0].Kind)

	t.Run("missing title", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/notes/", tokenA,
			noteBody("", "x"), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid block", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/notes/", tokenA, map[string]any{
			"title":   "Bad",
			"content": []map[string]any{{"kind": "image"}},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("owner reads", func(t *testing.T) {
		var got models.Note
		resp := doJSON(t, app, http.MethodGet, "/api/notes/"+itoa(note.ID), tokenA, nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Groceries", got.Title)
	})

	t.Run("stranger sees not found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/notes/"+itoa(note.ID), tokenB, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("owner updates content", func(t *testing.T) {
		var got models.Note
		resp := doJSON(t, app, http.MethodPut, "/api/notes/"+itoa(note.ID), tokenA,
			noteBody("Groceries v2", "milk", "eggs", "bread"), &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Groceries v2", got.Title)
		assert.Len(t, got.Content[0].Lines, 3)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, "/api/notes/"+itoa(note.ID), tokenA, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodGet, "/api/notes/"+itoa(note.ID), tokenA, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestNoteSharing(t *testing.T) {
	app, s := setupTestServer(t)
	tokenA, userA := registerUser(t, app, "Ann", "ann@example.com")
	tokenB, userB := registerUser(t, app, "Bea", "bea@example.com")
	_, userC := registerUser(t, app, "Cal", "cal@example.com")
	makeFriends(t, app, s, tokenA, tokenB, userB.ID)

	var note models.Note
	resp := doJSON(t, app, http.MethodPost, "/api/notes/", tokenA,
		noteBody("Shared plans", "step one"), &note)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("sharing with a non-friend is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost,
			"/api/notes/"+itoa(note.ID)+"/share", tokenA,
			map[string]any{"friendIds": []uint{userC.ID}}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("share with a friend", func(t *testing.T) {
		var got models.Note
		resp := doJSON(t, app, http.MethodPost,
			"/api/notes/"+itoa(note.ID)+"/share", tokenA,
			map[string]any{"friendIds": []uint{userB.ID}}, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, got.SharedWith.Contains(userB.ID))
		s.dispatcher.Wait()

		var list struct {
			Notes []models.Note `json:"notes"`
		}
		resp = doJSON(t, app, http.MethodGet, "/api/notes/shared", tokenB, nil, &list)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, list.Notes, 1)
		assert.Equal(t, note.ID, list.Notes[0].ID)
	})

	t.Run("shared member edits content but not sharing", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/notes/"+itoa(note.ID), tokenB,
			noteBody("Shared plans", "step one", "step two"), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, app, http.MethodPost,
			"/api/notes/"+itoa(note.ID)+"/share", tokenB,
			map[string]any{"friendIds": []uint{userC.ID}}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("replace sharing list strips the owner", func(t *testing.T) {
		var got models.Note
		resp := doJSON(t, app, http.MethodPatch,
			"/api/notes/"+itoa(note.ID)+"/shared-with", tokenA,
			map[string]any{"userIds": []uint{userA.ID, userB.ID}}, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, got.SharedWith.Contains(userA.ID))
		assert.True(t, got.SharedWith.Contains(userB.ID))
	})

	t.Run("unshare self", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch,
			"/api/notes/"+itoa(note.ID)+"/unshare", tokenB, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		// The note is no longer visible, so a repeat reads as missing.
		resp = doJSON(t, app, http.MethodPatch,
			"/api/notes/"+itoa(note.ID)+"/unshare", tokenB, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminNoteRoutes(t *testing.T) {
	app, s := setupTestServer(t)
	tokenA, userA := registerUser(t, app, "Ann", "ann@example.com")
	adminToken, adminUser := registerUser(t, app, "Root", "root@example.com")
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", adminUser.ID).
		Update("role", models.RoleAdmin).Error)

	doJSON(t, app, http.MethodPost, "/api/notes/", tokenA, noteBody("Mine", "x"), nil)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/admin/notes", tokenA, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin lists all notes", func(t *testing.T) {
		var list struct {
			Notes []models.Note `json:"notes"`
		}
		resp := doJSON(t, app, http.MethodGet, "/api/admin/notes", adminToken, nil, &list)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, list.Notes, 1)
	})

	t.Run("admin creates on behalf of a user", func(t *testing.T) {
		var note models.Note
		resp := doJSON(t, app, http.MethodPost, "/api/admin/notes", adminToken, map[string]any{
			"ownerId": userA.ID,
			"title":   "Planted",
			"content": []map[string]any{{"kind": "text", "lines": []string{"x"}}},
		}, &note)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, userA.ID, note.OwnerID)

		var list struct {
			Notes []models.Note `json:"notes"`
		}
		resp = doJSON(t, app, http.MethodGet, "/api/notes/", tokenA, nil, &list)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, list.Notes, 2)
	})

	t.Run("admin deletes any note", func(t *testing.T) {
		var list struct {
			Notes []models.Note `json:"notes"`
		}
		doJSON(t, app, http.MethodGet, "/api/admin/notes", adminToken, nil, &list)
		require.NotEmpty(t, list.Notes)

		resp := doJSON(t, app, http.MethodDelete,
			"/api/admin/notes/"+itoa(list.Notes[0].ID), adminToken, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
