package service

import (
	"context"
	"errors"
	"testing"

	"missnotes/internal/models"
)

// Hand-rolled function-field stubs. Each noop constructor returns a
// stub whose every method succeeds with zero values; tests override the
// fields they care about.

type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, *models.User) error
	deleteFn     func(context.Context, uint) error
	listFn       func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:     func(context.Context, *models.User) error { return nil },
		updateFn:     func(context.Context, *models.User) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
		listFn:       func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type friendshipRepoStub struct {
	createFn             func(context.Context, *models.Friendship) error
	getByIDFn            func(context.Context, uint) (*models.Friendship, error)
	getBetweenFn         func(context.Context, uint, uint) (*models.Friendship, error)
	updateFn             func(context.Context, *models.Friendship) error
	deleteFn             func(context.Context, uint) error
	friendIDsFn          func(context.Context, uint) ([]uint, error)
	getFriendsFn         func(context.Context, uint) ([]models.User, error)
	getIncomingPendingFn func(context.Context, uint) ([]models.Friendship, error)
	getOutgoingPendingFn func(context.Context, uint) ([]models.Friendship, error)
	listInvolvingFn      func(context.Context, uint) ([]models.Friendship, error)
	deleteAllForUserFn   func(context.Context, uint) error
}

func (s *friendshipRepoStub) Create(ctx context.Context, f *models.Friendship) error {
	return s.createFn(ctx, f)
}
func (s *friendshipRepoStub) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	return s.getByIDFn(ctx, id)
}
func (s *friendshipRepoStub) GetBetween(ctx context.Context, a, b uint) (*models.Friendship, error) {
	return s.getBetweenFn(ctx, a, b)
}
func (s *friendshipRepoStub) Update(ctx context.Context, f *models.Friendship) error {
	return s.updateFn(ctx, f)
}
func (s *friendshipRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *friendshipRepoStub) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.friendIDsFn(ctx, userID)
}
func (s *friendshipRepoStub) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFriendsFn(ctx, userID)
}
func (s *friendshipRepoStub) GetIncomingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.getIncomingPendingFn(ctx, userID)
}
func (s *friendshipRepoStub) GetOutgoingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.getOutgoingPendingFn(ctx, userID)
}
func (s *friendshipRepoStub) ListInvolving(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.listInvolvingFn(ctx, userID)
}
func (s *friendshipRepoStub) DeleteAllForUser(ctx context.Context, userID uint) error {
	return s.deleteAllForUserFn(ctx, userID)
}

func noopFriendshipRepo() *friendshipRepoStub {
	return &friendshipRepoStub{
		createFn:             func(context.Context, *models.Friendship) error { return nil },
		getByIDFn:            func(_ context.Context, id uint) (*models.Friendship, error) { return &models.Friendship{ID: id}, nil },
		getBetweenFn:         func(context.Context, uint, uint) (*models.Friendship, error) { return nil, nil },
		updateFn:             func(context.Context, *models.Friendship) error { return nil },
		deleteFn:             func(context.Context, uint) error { return nil },
		friendIDsFn:          func(context.Context, uint) ([]uint, error) { return nil, nil },
		getFriendsFn:         func(context.Context, uint) ([]models.User, error) { return nil, nil },
		getIncomingPendingFn: func(context.Context, uint) ([]models.Friendship, error) { return nil, nil },
		getOutgoingPendingFn: func(context.Context, uint) ([]models.Friendship, error) { return nil, nil },
		listInvolvingFn:      func(context.Context, uint) ([]models.Friendship, error) { return nil, nil },
		deleteAllForUserFn:   func(context.Context, uint) error { return nil },
	}
}

type noteRepoStub struct {
	createFn               func(context.Context, *models.Note) error
	getByIDFn              func(context.Context, uint) (*models.Note, error)
	getByIDsFn             func(context.Context, []uint) ([]models.Note, error)
	updateFn               func(context.Context, *models.Note) error
	deleteFn               func(context.Context, uint) error
	listByOwnerFn          func(context.Context, uint) ([]models.Note, error)
	listAllFn              func(context.Context) ([]models.Note, error)
	listSharedWithFn       func(context.Context, uint) ([]models.Note, error)
	removeUserFromSharesFn func(context.Context, uint) error
	deleteByOwnerFn        func(context.Context, uint) error
}

func (s *noteRepoStub) Create(ctx context.Context, n *models.Note) error { return s.createFn(ctx, n) }
func (s *noteRepoStub) GetByID(ctx context.Context, id uint) (*models.Note, error) {
	return s.getByIDFn(ctx, id)
}
func (s *noteRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.Note, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *noteRepoStub) Update(ctx context.Context, n *models.Note) error { return s.updateFn(ctx, n) }
func (s *noteRepoStub) Delete(ctx context.Context, id uint) error        { return s.deleteFn(ctx, id) }
func (s *noteRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]models.Note, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *noteRepoStub) ListAll(ctx context.Context) ([]models.Note, error) {
	return s.listAllFn(ctx)
}
func (s *noteRepoStub) ListSharedWith(ctx context.Context, userID uint) ([]models.Note, error) {
	return s.listSharedWithFn(ctx, userID)
}
func (s *noteRepoStub) RemoveUserFromShares(ctx context.Context, userID uint) error {
	return s.removeUserFromSharesFn(ctx, userID)
}
func (s *noteRepoStub) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return s.deleteByOwnerFn(ctx, ownerID)
}

func noopNoteRepo() *noteRepoStub {
	return &noteRepoStub{
		createFn:               func(context.Context, *models.Note) error { return nil },
		getByIDFn:              func(_ context.Context, id uint) (*models.Note, error) { return &models.Note{ID: id}, nil },
		getByIDsFn:             func(context.Context, []uint) ([]models.Note, error) { return nil, nil },
		updateFn:               func(context.Context, *models.Note) error { return nil },
		deleteFn:               func(context.Context, uint) error { return nil },
		listByOwnerFn:          func(context.Context, uint) ([]models.Note, error) { return nil, nil },
		listAllFn:              func(context.Context) ([]models.Note, error) { return nil, nil },
		listSharedWithFn:       func(context.Context, uint) ([]models.Note, error) { return nil, nil },
		removeUserFromSharesFn: func(context.Context, uint) error { return nil },
		deleteByOwnerFn:        func(context.Context, uint) error { return nil },
	}
}

type collectionRepoStub struct {
	createFn               func(context.Context, *models.Collection) error
	getByIDFn              func(context.Context, uint) (*models.Collection, error)
	updateFn               func(context.Context, *models.Collection) error
	deleteFn               func(context.Context, uint) error
	listByOwnerFn          func(context.Context, uint) ([]models.Collection, error)
	listAllFn              func(context.Context) ([]models.Collection, error)
	listSharedWithFn       func(context.Context, uint) ([]models.Collection, error)
	removeNoteFromAllFn    func(context.Context, uint) error
	removeUserFromSharesFn func(context.Context, uint) error
	deleteByOwnerFn        func(context.Context, uint) error
}

func (s *collectionRepoStub) Create(ctx context.Context, c *models.Collection) error {
	return s.createFn(ctx, c)
}
func (s *collectionRepoStub) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	return s.getByIDFn(ctx, id)
}
func (s *collectionRepoStub) Update(ctx context.Context, c *models.Collection) error {
	return s.updateFn(ctx, c)
}
func (s *collectionRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *collectionRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]models.Collection, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *collectionRepoStub) ListAll(ctx context.Context) ([]models.Collection, error) {
	return s.listAllFn(ctx)
}
func (s *collectionRepoStub) ListSharedWith(ctx context.Context, userID uint) ([]models.Collection, error) {
	return s.listSharedWithFn(ctx, userID)
}
func (s *collectionRepoStub) RemoveNoteFromAll(ctx context.Context, noteID uint) error {
	return s.removeNoteFromAllFn(ctx, noteID)
}
func (s *collectionRepoStub) RemoveUserFromShares(ctx context.Context, userID uint) error {
	return s.removeUserFromSharesFn(ctx, userID)
}
func (s *collectionRepoStub) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return s.deleteByOwnerFn(ctx, ownerID)
}

func noopCollectionRepo() *collectionRepoStub {
	return &collectionRepoStub{
		createFn: func(context.Context, *models.Collection) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Collection, error) {
			return &models.Collection{ID: id}, nil
		},
		updateFn:               func(context.Context, *models.Collection) error { return nil },
		deleteFn:               func(context.Context, uint) error { return nil },
		listByOwnerFn:          func(context.Context, uint) ([]models.Collection, error) { return nil, nil },
		listAllFn:              func(context.Context) ([]models.Collection, error) { return nil, nil },
		listSharedWithFn:       func(context.Context, uint) ([]models.Collection, error) { return nil, nil },
		removeNoteFromAllFn:    func(context.Context, uint) error { return nil },
		removeUserFromSharesFn: func(context.Context, uint) error { return nil },
		deleteByOwnerFn:        func(context.Context, uint) error { return nil },
	}
}

type notificationRepoStub struct {
	createFn                func(context.Context, *models.Notification) error
	getByIDFn               func(context.Context, uint) (*models.Notification, error)
	listByRecipientFn       func(context.Context, uint, bool, int, int) ([]models.Notification, error)
	countUnreadFn           func(context.Context, uint) (int64, error)
	countTotalFn            func(context.Context, uint) (int64, error)
	markReadFn              func(context.Context, uint) error
	markAllReadFn           func(context.Context, uint) error
	deleteFn                func(context.Context, uint) error
	deleteByRecipientFn     func(context.Context, uint) error
	deleteReferencingUserFn func(context.Context, uint) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, unreadOnly, limit, offset)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.countUnreadFn(ctx, recipientID)
}
func (s *notificationRepoStub) CountTotal(ctx context.Context, recipientID uint) (int64, error) {
	return s.countTotalFn(ctx, recipientID)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id uint) error {
	return s.markReadFn(ctx, id)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) error {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *notificationRepoStub) DeleteByRecipient(ctx context.Context, recipientID uint) error {
	return s.deleteByRecipientFn(ctx, recipientID)
}
func (s *notificationRepoStub) DeleteReferencingUser(ctx context.Context, userID uint) error {
	return s.deleteReferencingUserFn(ctx, userID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn: func(context.Context, *models.Notification) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id}, nil
		},
		listByRecipientFn: func(context.Context, uint, bool, int, int) ([]models.Notification, error) {
			return nil, nil
		},
		countUnreadFn:           func(context.Context, uint) (int64, error) { return 0, nil },
		countTotalFn:            func(context.Context, uint) (int64, error) { return 0, nil },
		markReadFn:              func(context.Context, uint) error { return nil },
		markAllReadFn:           func(context.Context, uint) error { return nil },
		deleteFn:                func(context.Context, uint) error { return nil },
		deleteByRecipientFn:     func(context.Context, uint) error { return nil },
		deleteReferencingUserFn: func(context.Context, uint) error { return nil },
	}
}

// recordingDispatcher captures dispatched notifications synchronously.
type recordingDispatcher struct {
	sent []*models.Notification
}

func (d *recordingDispatcher) Dispatch(n *models.Notification) {
	d.sent = append(d.sent, n)
}

// assertCode fails the test unless err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}
