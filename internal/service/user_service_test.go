package service

import (
	"context"
	"testing"

	"missnotes/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const validPassword = "Str0ngEnoughPass"

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func newUserService(users *userRepoStub) *UserService {
	return NewUserService(users, noopNoteRepo(), noopCollectionRepo(), noopFriendshipRepo(), noopNotificationRepo())
}

func TestUserService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", "", "a@b.io", validPassword},
		{"bad email", "Ann", "not-an-email", validPassword},
		{"short password", "Ann", "a@b.io", "Short1"},
		{"no digit", "Ann", "a@b.io", "NoDigitsInHerePal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserService(noopUserRepo())
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			assertCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestUserService_RegisterHashesPassword(t *testing.T) {
	var created *models.User
	users := noopUserRepo()
	users.createFn = func(_ context.Context, u *models.User) error {
		created = u
		return nil
	}
	svc := newUserService(users)

	got, err := svc.Register(context.Background(), "Ann", "ann@example.com", validPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || got.Role != models.RoleUser {
		t.Fatalf("expected a regular user to be created, got %#v", got)
	}
	if got.PasswordHash == validPassword || got.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte(validPassword)); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
}

func TestUserService_AuthenticateFailuresAreIndistinguishable(t *testing.T) {
	users := noopUserRepo()
	users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "ann@example.com" {
			return &models.User{ID: 1, Email: email, PasswordHash: hashOf(t, validPassword)}, nil
		}
		return nil, nil
	}
	svc := newUserService(users)

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", validPassword)
	assertCode(t, err, "UNAUTHORIZED")
	unknownMsg := err.Error()

	_, err = svc.Authenticate(context.Background(), "ann@example.com", "WrongPassword1")
	assertCode(t, err, "UNAUTHORIZED")
	if err.Error() != unknownMsg {
		t.Fatalf("unknown-email and wrong-password must read the same, got %q vs %q", unknownMsg, err.Error())
	}

	user, err := svc.Authenticate(context.Background(), "ann@example.com", validPassword)
	if err != nil || user.ID != 1 {
		t.Fatalf("expected successful login, got (%#v, %v)", user, err)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	stored := hashOf(t, validPassword)
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, PasswordHash: stored}, nil
	}
	var updated *models.User
	users.updateFn = func(_ context.Context, u *models.User) error {
		updated = u
		return nil
	}
	svc := newUserService(users)

	assertCode(t, svc.ChangePassword(context.Background(), 1, "WrongCurrent1x", "AnotherGoodPass1"), "UNAUTHORIZED")
	assertCode(t, svc.ChangePassword(context.Background(), 1, validPassword, "weak"), "VALIDATION_ERROR")

	if err := svc.ChangePassword(context.Background(), 1, validPassword, "AnotherGoodPass1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || updated.PasswordHash == stored {
		t.Fatal("expected a new password hash to be stored")
	}
}

func TestUserService_SetRole(t *testing.T) {
	users := noopUserRepo()
	svc := newUserService(users)

	_, err := svc.SetRole(context.Background(), 1, "Superuser")
	assertCode(t, err, "VALIDATION_ERROR")

	got, err := svc.SetRole(context.Background(), 1, models.RoleAdmin)
	if err != nil || got.Role != models.RoleAdmin {
		t.Fatalf("expected promotion to admin, got (%#v, %v)", got, err)
	}
}

func TestUserService_DeleteAccountRunsStepsInOrder(t *testing.T) {
	var order []string
	record := func(name string) { order = append(order, name) }

	users := noopUserRepo()
	users.deleteFn = func(context.Context, uint) error {
		record("delete_user")
		return nil
	}
	notes := noopNoteRepo()
	notes.listByOwnerFn = func(context.Context, uint) ([]models.Note, error) {
		return []models.Note{{ID: 11, OwnerID: 1}}, nil
	}
	notes.deleteByOwnerFn = func(context.Context, uint) error {
		record("delete_owned_notes")
		return nil
	}
	notes.removeUserFromSharesFn = func(context.Context, uint) error {
		record("remove_note_shares")
		return nil
	}
	pulled := uint(0)
	collections := noopCollectionRepo()
	collections.removeNoteFromAllFn = func(_ context.Context, noteID uint) error {
		pulled = noteID
		return nil
	}
	collections.deleteByOwnerFn = func(context.Context, uint) error {
		record("delete_owned_collections")
		return nil
	}
	collections.removeUserFromSharesFn = func(context.Context, uint) error {
		record("remove_collection_shares")
		return nil
	}
	friendships := noopFriendshipRepo()
	friendships.deleteAllForUserFn = func(context.Context, uint) error {
		record("delete_friendships")
		return nil
	}
	notifications := noopNotificationRepo()
	notifications.deleteByRecipientFn = func(context.Context, uint) error {
		record("delete_notifications")
		return nil
	}
	notifications.deleteReferencingUserFn = func(context.Context, uint) error {
		record("scrub_notification_references")
		return nil
	}

	svc := NewUserService(users, notes, collections, friendships, notifications)
	if err := svc.DeleteAccount(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"delete_owned_notes",
		"delete_owned_collections",
		"remove_note_shares",
		"remove_collection_shares",
		"delete_friendships",
		"delete_notifications",
		"scrub_notification_references",
		"delete_user",
	}
	if len(order) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("step %d: got %s, want %s (full order %v)", i, order[i], want[i], order)
		}
	}
	if pulled != 11 {
		t.Fatalf("expected owned note 11 pulled from collections, got %d", pulled)
	}
}

func TestUserService_DeleteAccountStopsOnStepFailure(t *testing.T) {
	users := noopUserRepo()
	userDeleted := false
	users.deleteFn = func(context.Context, uint) error {
		userDeleted = true
		return nil
	}
	friendships := noopFriendshipRepo()
	friendships.deleteAllForUserFn = func(context.Context, uint) error {
		return models.NewInternalError(context.DeadlineExceeded)
	}

	svc := NewUserService(users, noopNoteRepo(), noopCollectionRepo(), friendships, noopNotificationRepo())
	err := svc.DeleteAccount(context.Background(), 1)
	assertCode(t, err, "INTERNAL_ERROR")
	if userDeleted {
		t.Fatal("user row must survive when an earlier step fails")
	}
}

func TestUserService_DeleteAccountUnknownUser(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	svc := newUserService(users)

	assertCode(t, svc.DeleteAccount(context.Background(), 1), "NOT_FOUND")
}
