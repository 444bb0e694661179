// Package service implements the business logic on top of the
// repository layer. Services return AppError values; handlers map them
// onto HTTP statuses.
package service

import (
	"context"
	"fmt"
	"time"

	"missnotes/internal/authz"
	"missnotes/internal/models"
	"missnotes/internal/repository"
)

// Dispatcher delivers notifications without blocking or failing the
// triggering operation. Satisfied by notifications.Dispatcher.
type Dispatcher interface {
	Dispatch(notification *models.Notification)
}

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	dispatcher     Dispatcher
}

// NewFriendService returns a new FriendService. dispatcher may be nil,
// in which case no notifications are emitted.
func NewFriendService(friendshipRepo repository.FriendshipRepository, userRepo repository.UserRepository, dispatcher Dispatcher) *FriendService {
	return &FriendService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		dispatcher:     dispatcher,
	}
}

func (s *FriendService) notify(n *models.Notification) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(n)
	}
}

// Request sends a friend request from requesterID to receiverID. A
// previously denied request between the pair is reopened in place; an
// active row in either direction is a conflict.
func (s *FriendService) Request(ctx context.Context, requesterID, receiverID uint) (*models.Friendship, error) {
	if requesterID == receiverID {
		return nil, models.NewValidationError("cannot send a friend request to yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.friendshipRepo.GetBetween(ctx, requesterID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendshipStatusAccepted:
			return nil, models.NewValidationError("you are already friends")
		case models.FriendshipStatusRequested:
			if existing.RequesterID == requesterID {
				return nil, models.NewValidationError("friend request already sent")
			}
			return nil, models.NewValidationError("this user already sent you a friend request")
		case models.FriendshipStatusDenied:
			// Reopen the denied row in place; direction may flip.
			existing.RequesterID = requesterID
			existing.ReceiverID = receiverID
			existing.Status = models.FriendshipStatusRequested
			existing.LastActionBy = models.ActorRequester
			existing.RequestedAt = time.Now()
			existing.RespondedAt = nil
			if err := s.friendshipRepo.Update(ctx, existing); err != nil {
				return nil, err
			}
			s.notifyRequest(ctx, existing)
			return existing, nil
		}
	}

	friendship := &models.Friendship{
		RequesterID:  requesterID,
		ReceiverID:   receiverID,
		Status:       models.FriendshipStatusRequested,
		LastActionBy: models.ActorRequester,
		RequestedAt:  time.Now(),
	}
	if err := s.friendshipRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	s.notifyRequest(ctx, friendship)
	return friendship, nil
}

func (s *FriendService) notifyRequest(ctx context.Context, f *models.Friendship) {
	requester, err := s.userRepo.GetByID(ctx, f.RequesterID)
	name := "Someone"
	if err == nil {
		name = requester.Name
	}
	s.notify(&models.Notification{
		RecipientID: f.ReceiverID,
		Text:        fmt.Sprintf("%s sent you a friend request", name),
		Kind:        models.KindFriendRequest,
		Payload:     models.NotificationPayload{FriendID: f.RequesterID, FriendshipID: f.ID},
	})
}

// Respond accepts or denies a pending request. Only the receiver may
// respond; anyone else sees a not-found to avoid leaking the row.
func (s *FriendService) Respond(ctx context.Context, responderID, friendshipID uint, accept bool) (*models.Friendship, error) {
	friendship, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}

	if friendship.ReceiverID != responderID {
		return nil, models.NewNotFoundError("Friendship", friendshipID)
	}
	if friendship.Status != models.FriendshipStatusRequested {
		return nil, models.NewValidationError("friend request is not pending")
	}

	now := time.Now()
	friendship.LastActionBy = models.ActorReceiver
	friendship.RespondedAt = &now
	if accept {
		friendship.Status = models.FriendshipStatusAccepted
	} else {
		friendship.Status = models.FriendshipStatusDenied
	}

	if err := s.friendshipRepo.Update(ctx, friendship); err != nil {
		return nil, err
	}

	if accept {
		receiver, err := s.userRepo.GetByID(ctx, friendship.ReceiverID)
		name := "Someone"
		if err == nil {
			name = receiver.Name
		}
		s.notify(&models.Notification{
			RecipientID: friendship.RequesterID,
			Text:        fmt.Sprintf("%s accepted your friend request", name),
			Kind:        models.KindFriendRequestAccepted,
			Payload:     models.NotificationPayload{FriendID: friendship.ReceiverID, FriendshipID: friendship.ID},
		})
	}

	return friendship, nil
}

// Revoke withdraws a still-pending request. Only the requester may
// revoke; a non-participant sees a not-found.
func (s *FriendService) Revoke(ctx context.Context, actorID, friendshipID uint) error {
	friendship, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}

	if !friendship.Involves(actorID) {
		return models.NewNotFoundError("Friendship", friendshipID)
	}
	if friendship.Status != models.FriendshipStatusRequested || friendship.RequesterID != actorID {
		return models.NewValidationError("only the requester may revoke a pending request")
	}

	return s.friendshipRepo.Delete(ctx, friendshipID)
}

// Dissolve removes an accepted friendship. Either participant may
// dissolve; a non-participant sees a not-found.
func (s *FriendService) Dissolve(ctx context.Context, actorID, friendshipID uint) error {
	friendship, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}

	if !friendship.Involves(actorID) {
		return models.NewNotFoundError("Friendship", friendshipID)
	}
	if friendship.Status != models.FriendshipStatusAccepted {
		return models.NewValidationError("friendship is not accepted")
	}

	return s.friendshipRepo.Delete(ctx, friendshipID)
}

// DissolveWith removes the accepted friendship between the actor and
// the given user, resolving the row in either direction.
func (s *FriendService) DissolveWith(ctx context.Context, actorID, otherUserID uint) error {
	friendship, err := s.friendshipRepo.GetBetween(ctx, actorID, otherUserID)
	if err != nil {
		return err
	}
	if friendship == nil || friendship.Status != models.FriendshipStatusAccepted {
		return models.NewNotFoundError("Friendship", otherUserID)
	}
	return s.friendshipRepo.Delete(ctx, friendship.ID)
}

// AreFriends reports whether an accepted friendship exists between the
// two users, in either direction.
func (s *FriendService) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	friendship, err := s.friendshipRepo.GetBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return friendship != nil && friendship.Status == models.FriendshipStatusAccepted, nil
}

// FriendSet returns the precomputed set of confirmed friend IDs used by
// the authorization engine.
func (s *FriendService) FriendSet(ctx context.Context, userID uint) (authz.FriendSet, error) {
	ids, err := s.friendshipRepo.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return authz.NewFriendSet(ids), nil
}

// ListFriends returns the user's confirmed friends.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendshipRepo.GetFriends(ctx, userID)
}

// ListIncomingPending returns pending requests addressed to the user.
func (s *FriendService) ListIncomingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendshipRepo.GetIncomingPending(ctx, userID)
}

// ListOutgoingPending returns pending requests sent by the user.
func (s *FriendService) ListOutgoingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendshipRepo.GetOutgoingPending(ctx, userID)
}

// Status describes the relation between userID and targetID for the
// client: "none", "friends", "pending_sent", "pending_received" or
// "denied", plus the request ID when one is pending.
func (s *FriendService) Status(ctx context.Context, userID, targetID uint) (string, uint, error) {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return "", 0, err
	}

	friendship, err := s.friendshipRepo.GetBetween(ctx, userID, targetID)
	if err != nil {
		return "", 0, err
	}

	status := "none"
	var requestID uint
	if friendship != nil {
		switch friendship.Status {
		case models.FriendshipStatusAccepted:
			status = "friends"
		case models.FriendshipStatusRequested:
			requestID = friendship.ID
			if friendship.RequesterID == userID {
				status = "pending_sent"
			} else {
				status = "pending_received"
			}
		case models.FriendshipStatusDenied:
			status = "denied"
		}
	}

	return status, requestID, nil
}
