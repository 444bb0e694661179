package authz

import (
	"errors"
	"testing"

	"missnotes/internal/models"
)

func TestNotePermissions(t *testing.T) {
	note := &models.Note{ID: 1, OwnerID: 1, SharedWith: models.IDList{2}}

	tests := []struct {
		name  string
		check func(uint, *models.Note) bool
		user  uint
		want  bool
	}{
		{"owner reads", CanReadNote, 1, true},
		{"member reads", CanReadNote, 2, true},
		{"stranger cannot read", CanReadNote, 3, false},
		{"member edits content", CanEditNoteContent, 2, true},
		{"member cannot edit sharing", CanEditNoteSharing, 2, false},
		{"owner edits sharing", CanEditNoteSharing, 1, true},
		{"member cannot delete", CanDeleteNote, 2, false},
		{"owner deletes", CanDeleteNote, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.user, note); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanShareNote(t *testing.T) {
	note := &models.Note{ID: 1, OwnerID: 1, SharedWith: models.IDList{2}}
	friends := NewFriendSet([]uint{2, 3})

	if !CanShareNote(1, note, 3, friends) {
		t.Fatal("owner must be able to share with a friend")
	}
	if CanShareNote(1, note, 4, friends) {
		t.Fatal("sharing with a non-friend must be rejected")
	}
	if CanShareNote(2, note, 3, friends) {
		t.Fatal("a shared member must not be able to share")
	}
}

func TestCollectionPermissions(t *testing.T) {
	collection := &models.Collection{ID: 1, OwnerID: 1, SharedWith: models.IDList{2}}

	tests := []struct {
		name  string
		check func(uint, *models.Collection) bool
		user  uint
		want  bool
	}{
		{"member reads", CanReadCollection, 2, true},
		{"stranger cannot read", CanReadCollection, 3, false},
		{"member renames", CanRenameCollection, 2, true},
		{"member edits note list", CanEditCollectionNoteList, 2, true},
		{"member cannot replace", CanEditCollectionFull, 2, false},
		{"owner replaces", CanEditCollectionFull, 1, true},
		{"member cannot delete", CanDeleteCollection, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.user, collection); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckCollectionExposure(t *testing.T) {
	notes := map[uint]*models.Note{
		1: {ID: 1, OwnerID: 1},
		2: {ID: 2, OwnerID: 1, SharedWith: models.IDList{2}},
		3: {ID: 3, OwnerID: 9},
		4: {ID: 4, OwnerID: 1, SharedWith: models.IDList{2, 5}},
	}
	lookup := func(id uint) *models.Note { return notes[id] }

	collection := &models.Collection{ID: 1, OwnerID: 1, SharedWith: models.IDList{2}}

	t.Run("entitled notes pass", func(t *testing.T) {
		if err := CheckCollectionExposure(collection, models.IDList{1, 2}, lookup); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("foreign owner fails", func(t *testing.T) {
		err := CheckCollectionExposure(collection, models.IDList{3}, lookup)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
			t.Fatalf("expected forbidden, got %#v", err)
		}
	})

	t.Run("extra shared user fails", func(t *testing.T) {
		// Note 4 is visible to user 5, who is not entitled to the collection.
		err := CheckCollectionExposure(collection, models.IDList{1, 4}, lookup)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
			t.Fatalf("expected forbidden, got %#v", err)
		}
	})

	t.Run("missing note is a validation error", func(t *testing.T) {
		err := CheckCollectionExposure(collection, models.IDList{99}, lookup)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
			t.Fatalf("expected validation error, got %#v", err)
		}
	})

	t.Run("current membership is re-checked", func(t *testing.T) {
		// The rule covers the union of current and proposed membership,
		// so an already-present offending note still fails.
		withBad := &models.Collection{ID: 1, OwnerID: 1, Notes: models.IDList{3}, SharedWith: models.IDList{2}}
		err := CheckCollectionExposure(withBad, models.IDList{1}, lookup)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
			t.Fatalf("expected forbidden, got %#v", err)
		}
	})
}
