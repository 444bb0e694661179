package models

import (
	"time"
)

// FriendshipStatus represents the status of a friendship record.
type FriendshipStatus string

const (
	// FriendshipStatusRequested indicates a pending friend request.
	FriendshipStatusRequested FriendshipStatus = "Requested"
	// FriendshipStatusAccepted indicates a confirmed friendship.
	FriendshipStatusAccepted FriendshipStatus = "Accepted"
	// FriendshipStatusDenied indicates a rejected request. Denied rows are
	// reopened in place when the pair re-requests; revocation deletes the row.
	FriendshipStatusDenied FriendshipStatus = "Denied"
)

// FriendshipActor identifies which side of the record acted last.
type FriendshipActor string

const (
	// ActorRequester marks the last action as taken by the requester.
	ActorRequester FriendshipActor = "Requester"
	// ActorReceiver marks the last action as taken by the receiver.
	ActorReceiver FriendshipActor = "Receiver"
)

// Friendship is one directional row representing a symmetric relation.
// At most one active (Requested or Accepted) row exists per unordered pair;
// symmetry-sensitive reads go through the repository, never ad hoc direction
// checks at call sites.
type Friendship struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	RequesterID  uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"requester_id"`
	ReceiverID   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"receiver_id"`
	Status       FriendshipStatus `gorm:"type:varchar(20);not null;index:idx_friendships_status" json:"status"`
	LastActionBy FriendshipActor  `gorm:"type:varchar(20);not null" json:"last_action_by"`
	RequestedAt  time.Time        `json:"requested_at"`
	RespondedAt  *time.Time       `json:"responded_at,omitempty"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Receiver  User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// Involves reports whether the given user is a participant of the record.
func (f *Friendship) Involves(userID uint) bool {
	return f.RequesterID == userID || f.ReceiverID == userID
}

// OtherSide returns the participant opposite to userID.
func (f *Friendship) OtherSide(userID uint) uint {
	if f.RequesterID == userID {
		return f.ReceiverID
	}
	return f.RequesterID
}
