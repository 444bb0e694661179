package service

import (
	"context"
	"fmt"
	"log/slog"

	"missnotes/internal/middleware"
	"missnotes/internal/models"
	"missnotes/internal/observability"
	"missnotes/internal/repository"
	"missnotes/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService provides account lifecycle business logic.
type UserService struct {
	userRepo         repository.UserRepository
	noteRepo         repository.NoteRepository
	collectionRepo   repository.CollectionRepository
	friendshipRepo   repository.FriendshipRepository
	notificationRepo repository.NotificationRepository
}

// NewUserService returns a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	noteRepo repository.NoteRepository,
	collectionRepo repository.CollectionRepository,
	friendshipRepo repository.FriendshipRepository,
	notificationRepo repository.NotificationRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		noteRepo:         noteRepo,
		collectionRepo:   collectionRepo,
		friendshipRepo:   friendshipRepo,
		notificationRepo: notificationRepo,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user. Invalid email
// and invalid password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns users with pagination. Admin surface only.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile changes name and/or email. Empty fields are left as-is.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name, email string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		if err := validation.ValidateName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = name
	}
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return models.NewUnauthorizedError("current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

// SetRole promotes or demotes a user. Admin surface only.
func (s *UserService) SetRole(ctx context.Context, targetID uint, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, models.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes a user and fans out over everything referencing
// them. The steps are ordered compensating actions, not a transaction:
// each is idempotent, a failure is logged and surfaced, and a retry
// resumes safely from wherever the previous attempt stopped.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"delete_owned_notes", func() error {
			owned, err := s.noteRepo.ListByOwner(ctx, userID)
			if err != nil {
				return err
			}
			for _, n := range owned {
				if err := s.collectionRepo.RemoveNoteFromAll(ctx, n.ID); err != nil {
					return err
				}
			}
			return s.noteRepo.DeleteByOwner(ctx, userID)
		}},
		{"delete_owned_collections", func() error {
			return s.collectionRepo.DeleteByOwner(ctx, userID)
		}},
		{"remove_note_shares", func() error {
			return s.noteRepo.RemoveUserFromShares(ctx, userID)
		}},
		{"remove_collection_shares", func() error {
			return s.collectionRepo.RemoveUserFromShares(ctx, userID)
		}},
		{"delete_friendships", func() error {
			return s.friendshipRepo.DeleteAllForUser(ctx, userID)
		}},
		{"delete_notifications", func() error {
			return s.notificationRepo.DeleteByRecipient(ctx, userID)
		}},
		{"scrub_notification_references", func() error {
			return s.notificationRepo.DeleteReferencingUser(ctx, userID)
		}},
		{"delete_user", func() error {
			return s.userRepo.Delete(ctx, userID)
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			observability.CascadeStepFailures.WithLabelValues(step.name).Inc()
			middleware.Logger.ErrorContext(ctx, "account deletion step failed",
				slog.Any("user_id", userID),
				slog.String("step", step.name),
				slog.String("error", err.Error()),
			)
			return models.NewInternalError(fmt.Errorf("account deletion step %s: %w", step.name, err))
		}
		middleware.Logger.InfoContext(ctx, "account deletion step completed",
			slog.Any("user_id", userID),
			slog.String("step", step.name),
		)
	}
	return nil
}
