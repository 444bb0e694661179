package service

import (
	"context"
	"fmt"

	"missnotes/internal/authz"
	"missnotes/internal/models"
	"missnotes/internal/repository"
)

// CollectionService provides collection CRUD, note-list management and
// sharing business logic.
//
// Two distinct rule sets govern the note list and they are intentionally
// not unified:
//   - plain note-list updates check each ADDED note against the acting
//     user (owner or on the note's sharing list); removals are unchecked;
//   - owner full updates and admin bulk additions run the strict
//     exposure check instead: every entitled user of every member note
//     must already be entitled to the collection.
type CollectionService struct {
	collectionRepo repository.CollectionRepository
	noteRepo       repository.NoteRepository
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	dispatcher     Dispatcher
}

// NewCollectionService returns a new CollectionService. dispatcher may be nil.
func NewCollectionService(
	collectionRepo repository.CollectionRepository,
	noteRepo repository.NoteRepository,
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	dispatcher Dispatcher,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		noteRepo:       noteRepo,
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		dispatcher:     dispatcher,
	}
}

func (s *CollectionService) notify(n *models.Notification) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(n)
	}
}

func (s *CollectionService) friendSet(ctx context.Context, userID uint) (authz.FriendSet, error) {
	ids, err := s.friendshipRepo.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return authz.NewFriendSet(ids), nil
}

// noteLookup builds an authz.NoteLookup over the notes referenced by
// the given ID lists, so the exposure check does one batch load.
func (s *CollectionService) noteLookup(ctx context.Context, idLists ...models.IDList) (authz.NoteLookup, error) {
	var all models.IDList
	for _, l := range idLists {
		all = all.Union(l)
	}
	notes, err := s.noteRepo.GetByIDs(ctx, all)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Note, len(notes))
	for i := range notes {
		byID[notes[i].ID] = &notes[i]
	}
	return func(noteID uint) *models.Note {
		return byID[noteID]
	}, nil
}

// checkAdditions applies the actor-vs-note add check to each note ID.
func (s *CollectionService) checkAdditions(ctx context.Context, actorID uint, added models.IDList) error {
	notes, err := s.noteRepo.GetByIDs(ctx, added)
	if err != nil {
		return err
	}
	byID := make(map[uint]*models.Note, len(notes))
	for i := range notes {
		byID[notes[i].ID] = &notes[i]
	}
	for _, id := range added {
		note, ok := byID[id]
		if !ok {
			return models.NewValidationError(fmt.Sprintf("note %d does not exist", id))
		}
		if !authz.CanAddNoteToList(actorID, note) {
			return models.NewForbiddenError(fmt.Sprintf("note %d is not accessible to you", id))
		}
	}
	return nil
}

func (s *CollectionService) checkShareTargets(ctx context.Context, ownerID uint, targets models.IDList) error {
	friends, err := s.friendSet(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, id := range targets {
		if !friends.Contains(id) {
			return models.NewForbiddenError(fmt.Sprintf("user %d is not a confirmed friend", id))
		}
	}
	return nil
}

// Create persists a new collection. Every seed note must pass the
// add-check against the owner.
func (s *CollectionService) Create(ctx context.Context, ownerID uint, name string, noteIDs []uint) (*models.Collection, error) {
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}

	notes := models.IDList(noteIDs).Dedupe()
	if err := s.checkAdditions(ctx, ownerID, notes); err != nil {
		return nil, err
	}

	collection := &models.Collection{
		OwnerID: ownerID,
		Name:    name,
		Notes:   notes,
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Get loads a collection the actor may read.
func (s *CollectionService) Get(ctx context.Context, actorID, collectionID uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadCollection(actorID, collection) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	return collection, nil
}

// ListOwn returns the actor's own collections.
func (s *CollectionService) ListOwn(ctx context.Context, actorID uint) ([]models.Collection, error) {
	return s.collectionRepo.ListByOwner(ctx, actorID)
}

// ListSharedWithMe returns collections other users shared with the actor.
func (s *CollectionService) ListSharedWithMe(ctx context.Context, actorID uint) ([]models.Collection, error) {
	return s.collectionRepo.ListSharedWith(ctx, actorID)
}

// Rename changes the collection name. Owner and shared members may rename.
func (s *CollectionService) Rename(ctx context.Context, actorID, collectionID uint, name string) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanRenameCollection(actorID, collection) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}

	collection.Name = name
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// UpdateFull wholesale-replaces name, note list, and sharing list.
// Owner only; runs the strict exposure check over the union of current
// and proposed note membership against the NEW sharing list.
func (s *CollectionService) UpdateFull(ctx context.Context, actorID, collectionID uint, name string, noteIDs, sharedWith []uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadCollection(actorID, collection) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	if !authz.CanEditCollectionFull(actorID, collection) {
		return nil, models.NewForbiddenError("only the owner may replace this collection")
	}
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}

	targets := models.IDList(sharedWith).Dedupe().Remove(collection.OwnerID)
	if err := s.checkShareTargets(ctx, collection.OwnerID, targets); err != nil {
		return nil, err
	}

	proposed := models.IDList(noteIDs).Dedupe()
	previousShared := collection.SharedWith

	// Exposure is judged against the incoming sharing list.
	collection.SharedWith = targets
	lookup, err := s.noteLookup(ctx, collection.Notes, proposed)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckCollectionExposure(collection, proposed, lookup); err != nil {
		return nil, err
	}

	collection.Name = name
	collection.Notes = proposed
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}

	s.notifyNewTargets(ctx, collection, previousShared, targets)
	return collection, nil
}

// UpdateNoteList reconciles the note list toward desiredNoteIDs. Owner
// and shared members may edit; each ADDED note is checked against the
// actor, removals are unchecked.
func (s *CollectionService) UpdateNoteList(ctx context.Context, actorID, collectionID uint, desiredNoteIDs []uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditCollectionNoteList(actorID, collection) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}

	desired := models.IDList(desiredNoteIDs).Dedupe()

	var added models.IDList
	for _, id := range desired {
		if !collection.Notes.Contains(id) {
			added = append(added, id)
		}
	}
	if err := s.checkAdditions(ctx, actorID, added); err != nil {
		return nil, err
	}

	collection.Notes = desired
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Share grants additional users access. Owner only; additive union.
func (s *CollectionService) Share(ctx context.Context, actorID, collectionID uint, friendIDs []uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadCollection(actorID, collection) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	if collection.OwnerID != actorID {
		return nil, models.NewForbiddenError("only the owner may share this collection")
	}

	targets := models.IDList(friendIDs).Dedupe().Remove(collection.OwnerID)
	if err := s.checkShareTargets(ctx, collection.OwnerID, targets); err != nil {
		return nil, err
	}

	previous := collection.SharedWith
	collection.SharedWith = collection.SharedWith.Union(targets)
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}

	s.notifyNewTargets(ctx, collection, previous, targets)
	return collection, nil
}

func (s *CollectionService) notifyNewTargets(ctx context.Context, collection *models.Collection, previous, targets models.IDList) {
	owner, err := s.userRepo.GetByID(ctx, collection.OwnerID)
	name := "Someone"
	if err == nil {
		name = owner.Name
	}
	for _, id := range targets {
		if previous.Contains(id) {
			continue
		}
		s.notify(&models.Notification{
			RecipientID: id,
			Text:        fmt.Sprintf("%s shared the collection %q with you", name, collection.Name),
			Kind:        models.KindCollectionShared,
			Payload:     models.NotificationPayload{FriendID: collection.OwnerID, CollectionID: collection.ID},
		})
	}
}

// UnshareSelf removes the actor from the collection's sharing list.
func (s *CollectionService) UnshareSelf(ctx context.Context, actorID, collectionID uint) error {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return err
	}
	if !collection.SharedWith.Contains(actorID) {
		return models.NewNotFoundError("Collection", collectionID)
	}

	collection.SharedWith = collection.SharedWith.Remove(actorID)
	return s.collectionRepo.Update(ctx, collection)
}

// Delete removes an owned collection. Member notes are untouched.
func (s *CollectionService) Delete(ctx context.Context, actorID, collectionID uint) error {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return err
	}
	if !authz.CanReadCollection(actorID, collection) {
		return models.NewNotFoundError("Collection", collectionID)
	}
	if !authz.CanDeleteCollection(actorID, collection) {
		return models.NewForbiddenError("only the owner may delete this collection")
	}

	return s.collectionRepo.Delete(ctx, collectionID)
}

// GetContaining returns the collections visible to the actor that
// reference the given note.
func (s *CollectionService) GetContaining(ctx context.Context, actorID, noteID uint) ([]models.Collection, error) {
	own, err := s.collectionRepo.ListByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	shared, err := s.collectionRepo.ListSharedWith(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var result []models.Collection
	for _, c := range append(own, shared...) {
		if c.Notes.Contains(noteID) {
			result = append(result, c)
		}
	}
	return result, nil
}

// AdminList returns collections across all owners, or a single owner's
// when ownerID is non-zero.
func (s *CollectionService) AdminList(ctx context.Context, ownerID uint) ([]models.Collection, error) {
	if ownerID != 0 {
		return s.collectionRepo.ListByOwner(ctx, ownerID)
	}
	return s.collectionRepo.ListAll(ctx)
}

// AdminCreate creates a collection on behalf of an explicit owner. Seed
// notes are checked against the designated owner, not the admin.
func (s *CollectionService) AdminCreate(ctx context.Context, ownerID uint, name string, noteIDs []uint) (*models.Collection, error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.Create(ctx, ownerID, name, noteIDs)
}

// AdminUpdate wholesale-replaces any collection, with the same strict
// exposure rule an owner full update runs.
func (s *CollectionService) AdminUpdate(ctx context.Context, collectionID uint, name string, noteIDs, sharedWith []uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return s.UpdateFull(ctx, collection.OwnerID, collectionID, name, noteIDs, sharedWith)
}

// AdminDelete removes any collection.
func (s *CollectionService) AdminDelete(ctx context.Context, collectionID uint) error {
	if _, err := s.collectionRepo.GetByID(ctx, collectionID); err != nil {
		return err
	}
	return s.collectionRepo.Delete(ctx, collectionID)
}

// AdminAddNotes bulk-adds notes to any collection under the strict
// exposure rule: the expanded membership may not leak any note to users
// outside the collection's entitled set.
func (s *CollectionService) AdminAddNotes(ctx context.Context, collectionID uint, noteIDs []uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	proposed := collection.Notes.Union(models.IDList(noteIDs).Dedupe())
	lookup, err := s.noteLookup(ctx, proposed)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckCollectionExposure(collection, proposed, lookup); err != nil {
		return nil, err
	}

	collection.Notes = proposed
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}
