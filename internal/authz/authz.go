// Package authz holds the pure authorization decisions for notes and
// collections. Functions here do no I/O: callers load the entities and,
// where friendship matters, precompute the principal's FriendSet.
package authz

import (
	"fmt"

	"missnotes/internal/models"
)

// FriendSet is the set of user IDs the principal holds an accepted
// friendship with.
type FriendSet map[uint]struct{}

// NewFriendSet builds a FriendSet from a list of user IDs.
func NewFriendSet(ids []uint) FriendSet {
	set := make(FriendSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether userID is a confirmed friend.
func (s FriendSet) Contains(userID uint) bool {
	_, ok := s[userID]
	return ok
}

// CanReadNote: owner or shared-with member.
func CanReadNote(userID uint, note *models.Note) bool {
	return note.OwnerID == userID || note.SharedWith.Contains(userID)
}

// CanEditNoteContent: owner or shared-with member.
func CanEditNoteContent(userID uint, note *models.Note) bool {
	return note.OwnerID == userID || note.SharedWith.Contains(userID)
}

// CanEditNoteSharing: owner only.
func CanEditNoteSharing(userID uint, note *models.Note) bool {
	return note.OwnerID == userID
}

// CanDeleteNote: owner only.
func CanDeleteNote(userID uint, note *models.Note) bool {
	return note.OwnerID == userID
}

// CanShareNote: owner only, and the target must be a confirmed friend.
func CanShareNote(userID uint, note *models.Note, targetID uint, friends FriendSet) bool {
	return note.OwnerID == userID && friends.Contains(targetID)
}

// CanReadCollection: owner or shared-with member.
func CanReadCollection(userID uint, collection *models.Collection) bool {
	return collection.OwnerID == userID || collection.SharedWith.Contains(userID)
}

// CanRenameCollection: owner or shared-with member.
func CanRenameCollection(userID uint, collection *models.Collection) bool {
	return collection.OwnerID == userID || collection.SharedWith.Contains(userID)
}

// CanEditCollectionFull: wholesale replacement is reserved to the owner.
func CanEditCollectionFull(userID uint, collection *models.Collection) bool {
	return collection.OwnerID == userID
}

// CanDeleteCollection: owner only.
func CanDeleteCollection(userID uint, collection *models.Collection) bool {
	return collection.OwnerID == userID
}

// CanShareCollection: owner only, and the target must be a confirmed friend.
func CanShareCollection(userID uint, collection *models.Collection, targetID uint, friends FriendSet) bool {
	return collection.OwnerID == userID && friends.Contains(targetID)
}

// CanEditCollectionNoteList: owner or shared-with member may edit the list.
func CanEditCollectionNoteList(userID uint, collection *models.Collection) bool {
	return collection.OwnerID == userID || collection.SharedWith.Contains(userID)
}

// CanAddNoteToList is the per-note check applied to additions on the plain
// note-list update: the actor must own the note or be on its shared list.
// Removals carry no note-level check.
func CanAddNoteToList(userID uint, note *models.Note) bool {
	return note.OwnerID == userID || note.SharedWith.Contains(userID)
}

// NoteLookup resolves a note ID during membership checks. A nil result
// means the note does not exist.
type NoteLookup func(noteID uint) *models.Note

// CheckCollectionExposure enforces the strict cross-consistency rule used
// by owner full updates and admin bulk note additions: for every note in
// the union of proposed and current membership, every user entitled to the
// note ({owner} ∪ sharedWith) must already be entitled to the collection
// ({owner} ∪ sharedWith). The first failing note ID is reported.
func CheckCollectionExposure(collection *models.Collection, proposed models.IDList, lookup NoteLookup) error {
	entitled := make(map[uint]struct{}, len(collection.SharedWith)+1)
	entitled[collection.OwnerID] = struct{}{}
	for _, id := range collection.SharedWith {
		entitled[id] = struct{}{}
	}

	for _, noteID := range collection.Notes.Union(proposed) {
		note := lookup(noteID)
		if note == nil {
			return models.NewValidationError(fmt.Sprintf("note %d does not exist", noteID))
		}
		if _, ok := entitled[note.OwnerID]; !ok {
			return exposureError(noteID)
		}
		for _, userID := range note.SharedWith {
			if _, ok := entitled[userID]; !ok {
				return exposureError(noteID)
			}
		}
	}
	return nil
}

func exposureError(noteID uint) error {
	return models.NewForbiddenError(fmt.Sprintf(
		"note %d is visible to users outside the collection's sharing list", noteID))
}
