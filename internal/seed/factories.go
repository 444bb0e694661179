// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"missnotes/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is set on every seeded account.
const DefaultPassword = "Password123!"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		//nolint:gosec // weak randomness is fine for seeding
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         gofakeit.Name(),
		Email:        fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildNote constructs a note with a random mix of content blocks but
// does not persist it.
func (f *Factory) BuildNote(owner *models.User, overrides ...func(*models.Note)) *models.Note {
	note := &models.Note{
		OwnerID: owner.ID,
		Title:   gofakeit.Sentence(4),
		Content: f.randomBlocks(),
	}

	// realistic created_at spread over the last 90 days
	back := time.Duration(f.rand.Intn(90*24)) * time.Hour
	note.CreatedAt = time.Now().Add(-back)
	note.UpdatedAt = note.CreatedAt

	for _, override := range overrides {
		override(note)
	}
	return note
}

// CreateNote constructs and persists a sample note for the given owner.
func (f *Factory) CreateNote(owner *models.User, overrides ...func(*models.Note)) (*models.Note, error) {
	note := f.BuildNote(owner, overrides...)
	if err := f.db.Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// CreateCollection constructs and persists a collection grouping the
// given note IDs for the owner.
func (f *Factory) CreateCollection(owner *models.User, noteIDs []uint, overrides ...func(*models.Collection)) (*models.Collection, error) {
	collection := &models.Collection{
		OwnerID: owner.ID,
		Name:    gofakeit.HipsterWord() + " " + gofakeit.NounAbstract(),
		Notes:   models.IDList(noteIDs).Dedupe(),
	}
	for _, override := range overrides {
		override(collection)
	}

	if err := f.db.Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// CreateFriendship persists a friendship row between two users in the
// given state. Accepted rows get a responded timestamp.
func (f *Factory) CreateFriendship(requester, receiver *models.User, status models.FriendshipStatus) (*models.Friendship, error) {
	friendship := &models.Friendship{
		RequesterID:  requester.ID,
		ReceiverID:   receiver.ID,
		Status:       status,
		LastActionBy: models.ActorRequester,
		RequestedAt:  time.Now().Add(-time.Duration(f.rand.Intn(60*24)) * time.Hour),
	}
	if status != models.FriendshipStatusRequested {
		friendship.LastActionBy = models.ActorReceiver
		respondedAt := friendship.RequestedAt.Add(time.Duration(f.rand.Intn(48)) * time.Hour)
		friendship.RespondedAt = &respondedAt
	}

	if err := f.db.Create(friendship).Error; err != nil {
		return nil, err
	}
	return friendship, nil
}

func (f *Factory) randomBlocks() []models.ContentBlock {
	count := 1 + f.rand.Intn(3)
	blocks := make([]models.ContentBlock, 0, count)
	for i := 0; i < count; i++ {
		switch f.rand.Intn(4) {
		case 0:
			blocks = append(blocks, models.ContentBlock{
				Kind:  models.BlockKindText,
				Lines: []string{gofakeit.Sentence(8), gofakeit.Sentence(6)},
			})
		case 1:
			items := make([]string, 2+f.rand.Intn(4))
			for j := range items {
				items[j] = gofakeit.ProductName()
			}
			blocks = append(blocks, models.ContentBlock{Kind: models.BlockKindList, Items: items})
		case 2:
			checks := make([]models.ChecklistItem, 2+f.rand.Intn(4))
			for j := range checks {
				checks[j] = models.ChecklistItem{
					Text:    gofakeit.VerbAction() + " " + gofakeit.NounConcrete(),
					Checked: f.rand.Intn(2) == 0,
				}
			}
			blocks = append(blocks, models.ContentBlock{Kind: models.BlockKindChecklist, Checks: checks})
		default:
			blocks = append(blocks, models.ContentBlock{
				Kind:     models.BlockKindImage,
				ImageRef: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			})
		}
	}
	return blocks
}
