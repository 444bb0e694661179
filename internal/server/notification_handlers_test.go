package server

import (
	"net/http"
	"testing"

	"missnotes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationFeed(t *testing.T) {
	app, s := setupTestServer(t)
	tokenA, _ := registerUser(t, app, "Ann", "ann@example.com")
	tokenB, userB := registerUser(t, app, "Bea", "bea@example.com")
	makeFriends(t, app, s, tokenA, tokenB, userB.ID)

	var note models.Note
	resp := doJSON(t, app, http.MethodPost, "/api/notes/", tokenA,
		noteBody("For Bea", "x"), &note)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost,
		"/api/notes/"+itoa(note.ID)+"/share", tokenA,
		map[string]any{"friendIds": []uint{userB.ID}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s.dispatcher.Wait()

	// B's feed: a friend request and a note share.
	var feed struct {
		Notifications []models.Notification `json:"notifications"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/notifications/", tokenB, nil, &feed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, feed.Notifications, 2)

	var shared *models.Notification
	for i := range feed.Notifications {
		if feed.Notifications[i].Kind == models.KindNoteShared {
			shared = &feed.Notifications[i]
		}
	}
	require.NotNil(t, shared)
	assert.Equal(t, note.ID, shared.Payload.NoteID)
	assert.False(t, shared.Read)

	t.Run("count", func(t *testing.T) {
		var counts struct {
			Total  int64 `json:"total"`
			Unread int64 `json:"unread"`
		}
		resp := doJSON(t, app, http.MethodGet, "/api/notifications/count", tokenB, nil, &counts)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2), counts.Total)
		assert.Equal(t, int64(2), counts.Unread)
	})

	t.Run("only the recipient may mark read", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch,
			"/api/notifications/"+itoa(shared.ID)+"/read", tokenA, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("mark read", func(t *testing.T) {
		var got models.Notification
		resp := doJSON(t, app, http.MethodPatch,
			"/api/notifications/"+itoa(shared.ID)+"/read", tokenB, nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, got.Read)

		var unreadFeed struct {
			Notifications []models.Notification `json:"notifications"`
		}
		resp = doJSON(t, app, http.MethodGet, "/api/notifications/?unread=true", tokenB, nil, &unreadFeed)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, unreadFeed.Notifications, 1)
	})

	t.Run("mark all read", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, "/api/notifications/read", tokenB, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		var counts struct {
			Unread int64 `json:"unread"`
		}
		resp = doJSON(t, app, http.MethodGet, "/api/notifications/count", tokenB, nil, &counts)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Zero(t, counts.Unread)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete,
			"/api/notifications/"+itoa(shared.ID), tokenB, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodDelete,
			"/api/notifications/"+itoa(shared.ID), tokenB, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
