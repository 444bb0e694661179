package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	NoteKeyPrefix        = "note:%d"
	CollectionKeyPrefix  = "collection:%d"
	FriendIDsKeyPrefix   = "user:%d:friends"
	UnreadCountKeyPrefix = "user:%d:unread"
)

const (
	UserTTL        = 5 * time.Minute
	NoteTTL        = 10 * time.Minute
	CollectionTTL  = 10 * time.Minute
	FriendIDsTTL   = 2 * time.Minute
	UnreadCountTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func NoteKey(noteID uint) string {
	return fmt.Sprintf(NoteKeyPrefix, noteID)
}

func CollectionKey(collectionID uint) string {
	return fmt.Sprintf(CollectionKeyPrefix, collectionID)
}

func FriendIDsKey(userID uint) string {
	return fmt.Sprintf(FriendIDsKeyPrefix, userID)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateNote(ctx context.Context, noteID uint) {
	Invalidate(ctx, NoteKey(noteID))
}

func InvalidateCollection(ctx context.Context, collectionID uint) {
	Invalidate(ctx, CollectionKey(collectionID))
}

// InvalidateFriendship clears both sides' friend-ID caches after any
// friendship state change.
func InvalidateFriendship(ctx context.Context, a, b uint) {
	Invalidate(ctx, FriendIDsKey(a))
	Invalidate(ctx, FriendIDsKey(b))
}

func InvalidateUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}
