package service

import (
	"context"
	"fmt"

	"missnotes/internal/authz"
	"missnotes/internal/models"
	"missnotes/internal/repository"
	"missnotes/internal/validation"
)

// NoteService provides note CRUD and sharing business logic.
//
// Visibility failures are deliberately reported as not-found so the
// existence of other users' notes is never leaked; permission failures
// on a note the actor can see are forbidden.
type NoteService struct {
	noteRepo       repository.NoteRepository
	collectionRepo repository.CollectionRepository
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	dispatcher     Dispatcher
}

// NewNoteService returns a new NoteService. dispatcher may be nil.
func NewNoteService(
	noteRepo repository.NoteRepository,
	collectionRepo repository.CollectionRepository,
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	dispatcher Dispatcher,
) *NoteService {
	return &NoteService{
		noteRepo:       noteRepo,
		collectionRepo: collectionRepo,
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		dispatcher:     dispatcher,
	}
}

func (s *NoteService) notify(n *models.Notification) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(n)
	}
}

func (s *NoteService) friendSet(ctx context.Context, userID uint) (authz.FriendSet, error) {
	ids, err := s.friendshipRepo.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return authz.NewFriendSet(ids), nil
}

func validateNoteInput(title string, content []models.ContentBlock) error {
	if title == "" {
		return models.NewValidationError("title is required")
	}
	return validation.ValidateContent(content)
}

// Create persists a new note owned by ownerID with an empty sharing list.
func (s *NoteService) Create(ctx context.Context, ownerID uint, title string, content []models.ContentBlock) (*models.Note, error) {
	if err := validateNoteInput(title, content); err != nil {
		return nil, err
	}

	note := &models.Note{
		OwnerID: ownerID,
		Title:   title,
		Content: content,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get loads a note the actor may read.
func (s *NoteService) Get(ctx context.Context, actorID, noteID uint) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadNote(actorID, note) {
		return nil, models.NewNotFoundError("Note", noteID)
	}
	return note, nil
}

// ListOwn returns the actor's own notes, most recently updated first.
func (s *NoteService) ListOwn(ctx context.Context, actorID uint) ([]models.Note, error) {
	return s.noteRepo.ListByOwner(ctx, actorID)
}

// ListSharedWithMe returns notes other users shared with the actor.
func (s *NoteService) ListSharedWithMe(ctx context.Context, actorID uint) ([]models.Note, error) {
	return s.noteRepo.ListSharedWith(ctx, actorID)
}

// UpdateContent replaces title and content. Owner and shared users may
// edit; the sharing list is untouched.
func (s *NoteService) UpdateContent(ctx context.Context, actorID, noteID uint, title string, content []models.ContentBlock) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditNoteContent(actorID, note) {
		return nil, models.NewNotFoundError("Note", noteID)
	}
	if err := validateNoteInput(title, content); err != nil {
		return nil, err
	}

	note.Title = title
	note.Content = content
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// checkShareTargets verifies every target is a confirmed friend of the
// owner, failing atomically on the first offender.
func (s *NoteService) checkShareTargets(ctx context.Context, ownerID uint, targets models.IDList) error {
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

// UpdateSharedWith wholesale-replaces the sharing list. Owner only; the
// owner is stripped from the target set and duplicates are dropped.
func (s *NoteService) UpdateSharedWith(ctx context.Context, actorID, noteID uint, userIDs []uint) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadNote(actorID, note) {
		return nil, models.NewNotFoundError("Note", noteID)
	}
	if !authz.CanEditNoteSharing(actorID, note) {
		return nil, models.NewForbiddenError("only the owner may change the sharing list")
	}

	targets := models.IDList(userIDs).Dedupe().Remove(note.OwnerID)
	if err := s.checkShareTargets(ctx, note.OwnerID, targets); err != nil {
		return nil, err
	}

	previous := note.SharedWith
	note.SharedWith = targets
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.notifyNewTargets(ctx, note, previous, targets)
	return note, nil
}

// Share grants additional users access. Owner only; additive union, so
// re-sharing with an existing member is a no-op for that member.
func (s *NoteService) Share(ctx context.Context, actorID, noteID uint, friendIDs []uint) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadNote(actorID, note) {
		return nil, models.NewNotFoundError("Note", noteID)
	}
	if !authz.CanEditNoteSharing(actorID, note) {
		return nil, models.NewForbiddenError("only the owner may share this note")
	}

	targets := models.IDList(friendIDs).Dedupe().Remove(note.OwnerID)
	if err := s.checkShareTargets(ctx, note.OwnerID, targets); err != nil {
		return nil, err
	}

	previous := note.SharedWith
	note.SharedWith = note.SharedWith.Union(targets)
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.notifyNewTargets(ctx, note, previous, targets)
	return note, nil
}

func (s *NoteService) notifyNewTargets(ctx context.Context, note *models.Note, previous, targets models.IDList) {
	owner, err := s.userRepo.GetByID(ctx, note.OwnerID)
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
			Text:        fmt.Sprintf("%s shared the note %q with you", name, note.Title),
			Kind:        models.KindNoteShared,
			Payload:     models.NotificationPayload{FriendID: note.OwnerID, NoteID: note.ID},
		})
	}
}

// UnshareSelf removes the actor from the note's sharing list. A second
// call reports not-found because the note is no longer visible.
func (s *NoteService) UnshareSelf(ctx context.Context, actorID, noteID uint) error {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if !note.SharedWith.Contains(actorID) {
		return models.NewNotFoundError("Note", noteID)
	}

	note.SharedWith = note.SharedWith.Remove(actorID)
	return s.noteRepo.Update(ctx, note)
}

// Delete removes an owned note and pulls its ID from every collection
// referencing it.
func (s *NoteService) Delete(ctx context.Context, actorID, noteID uint) error {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if !authz.CanReadNote(actorID, note) {
		return models.NewNotFoundError("Note", noteID)
	}
	if !authz.CanDeleteNote(actorID, note) {
		return models.NewForbiddenError("only the owner may delete this note")
	}

	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		return err
	}
	return s.collectionRepo.RemoveNoteFromAll(ctx, noteID)
}

// AdminList returns notes across all owners, or a single owner's notes
// when ownerID is non-zero.
func (s *NoteService) AdminList(ctx context.Context, ownerID uint) ([]models.Note, error) {
	if ownerID != 0 {
		return s.noteRepo.ListByOwner(ctx, ownerID)
	}
	return s.noteRepo.ListAll(ctx)
}

// AdminCreate creates a note on behalf of an explicit owner.
func (s *NoteService) AdminCreate(ctx context.Context, ownerID uint, title string, content []models.ContentBlock) (*models.Note, error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.Create(ctx, ownerID, title, content)
}

// AdminUpdate replaces title and content of any note.
func (s *NoteService) AdminUpdate(ctx context.Context, noteID uint, title string, content []models.ContentBlock) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := validateNoteInput(title, content); err != nil {
		return nil, err
	}

	note.Title = title
	note.Content = content
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// AdminDelete removes any note, with the same cross-aggregate cleanup
// as an owner delete.
func (s *NoteService) AdminDelete(ctx context.Context, noteID uint) error {
	if _, err := s.noteRepo.GetByID(ctx, noteID); err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		return err
	}
	return s.collectionRepo.RemoveNoteFromAll(ctx, noteID)
}
