package service

import (
	"context"
	"testing"

	"missnotes/internal/models"
)

func TestNotificationService_MarkReadRecipientOnly(t *testing.T) {
	notifications := noopNotificationRepo()
	notifications.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
		return &models.Notification{ID: id, RecipientID: 2, Kind: models.KindFriendRequest}, nil
	}
	marked := uint(0)
	notifications.markReadFn = func(_ context.Context, id uint) error {
		marked = id
		return nil
	}
	svc := NewNotificationService(notifications)

	// Another user's feed entry reads as not-found.
	_, err := svc.MarkRead(context.Background(), 1, 7)
	assertCode(t, err, "NOT_FOUND")
	if marked != 0 {
		t.Fatal("entry must not be marked on an authorization failure")
	}

	got, err := svc.MarkRead(context.Background(), 2, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 7 || !got.Read {
		t.Fatalf("expected entry 7 marked read, got (%d, %#v)", marked, got)
	}
}

func TestNotificationService_DeleteRecipientOnly(t *testing.T) {
	notifications := noopNotificationRepo()
	notifications.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
		return &models.Notification{ID: id, RecipientID: 2, Kind: models.KindNoteShared}, nil
	}
	deleted := uint(0)
	notifications.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := NewNotificationService(notifications)

	assertCode(t, svc.Delete(context.Background(), 1, 7), "NOT_FOUND")
	if deleted != 0 {
		t.Fatal("entry must not be deleted on an authorization failure")
	}

	if err := svc.Delete(context.Background(), 2, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("expected entry 7 deleted, got %d", deleted)
	}
}

func TestNotificationService_Count(t *testing.T) {
	notifications := noopNotificationRepo()
	notifications.countTotalFn = func(context.Context, uint) (int64, error) { return 5, nil }
	notifications.countUnreadFn = func(context.Context, uint) (int64, error) { return 2, nil }
	svc := NewNotificationService(notifications)

	total, unread, err := svc.Count(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || unread != 2 {
		t.Fatalf("got (%d, %d), want (5, 2)", total, unread)
	}
}
