package models

import (
	"time"
)

// NotificationKind classifies a feed entry.
type NotificationKind string

const (
	// KindFriendRequest is sent to the receiver of a new friend request.
	KindFriendRequest NotificationKind = "friendRequest"
	// KindFriendRequestAccepted is sent to the requester on acceptance.
	KindFriendRequestAccepted NotificationKind = "friendRequestAccepted"
	// KindNoteShared is sent to a user newly granted access to a note.
	KindNoteShared NotificationKind = "noteShared"
	// KindCollectionShared is sent to a user newly granted access to a collection.
	KindCollectionShared NotificationKind = "collectionShared"
)

// NotificationPayload carries kind-specific references. Only the fields
// relevant to the kind are populated.
type NotificationPayload struct {
	FriendID     uint `json:"friend_id,omitempty"`
	FriendshipID uint `json:"friendship_id,omitempty"`
	NoteID       uint `json:"note_id,omitempty"`
	CollectionID uint `json:"collection_id,omitempty"`
}

// Notification is one entry of a user's feed. Rows are created as a side
// effect of friendship and sharing transitions; recipients may mark them
// read or delete them.
type Notification struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	RecipientID uint                `gorm:"not null;index" json:"recipient_id"`
	Text        string              `gorm:"not null" json:"text"`
	Kind        NotificationKind    `gorm:"type:varchar(30);not null" json:"kind"`
	Payload     NotificationPayload `gorm:"serializer:json" json:"payload"`
	Read        bool                `gorm:"default:false" json:"read"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
