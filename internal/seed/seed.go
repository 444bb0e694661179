package seed

import (
	"fmt"
	"log"

	"missnotes/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers     int
	NotesPerUser int
	ShouldClean  bool
}

// Seed populates the database with demo users, a friendship mesh, and
// shared notes and collections.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users with ~%d notes each...", opts.NumUsers, opts.NotesPerUser)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	f := NewFactory(db)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	friends, err := createFriendshipMesh(f, users)
	if err != nil {
		return fmt.Errorf("failed to create friendships: %w", err)
	}

	notesByUser, err := createNotes(f, users, opts.NotesPerUser)
	if err != nil {
		return fmt.Errorf("failed to create notes: %w", err)
	}

	if err := shareNotes(f, users, friends, notesByUser); err != nil {
		return fmt.Errorf("failed to share notes: %w", err)
	}

	if err := createCollections(f, users, friends, notesByUser); err != nil {
		return fmt.Errorf("failed to create collections: %w", err)
	}

	log.Printf("seeding complete; every account logs in with %q", DefaultPassword)
	return nil
}

// ClearAll truncates every seeded table.
func ClearAll(db *gorm.DB) error {
	log.Println("clearing existing data...")
	sql := `TRUNCATE TABLE notifications, collections, notes, friendships, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count+1)

	admin, err := f.CreateUser(func(u *models.User) {
		u.Name = "Admin"
		u.Email = "admin@missnotes.local"
		u.Role = models.RoleAdmin
	})
	if err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFriendshipMesh links each user to a handful of later users. Most
// links are accepted; a few stay pending or denied so every state shows
// up in the UI. Returns the accepted pairs keyed by requester ID.
func createFriendshipMesh(f *Factory, users []*models.User) (map[uint][]*models.User, error) {
	friends := make(map[uint][]*models.User)
	accepted := 0

	for i, user := range users {
		links := 2 + f.rand.Intn(3)
		for j := 1; j <= links && i+j < len(users); j++ {
			other := users[i+j]

			status := models.FriendshipStatusAccepted
			switch f.rand.Intn(10) {
			case 0:
				status = models.FriendshipStatusRequested
			case 1:
				status = models.FriendshipStatusDenied
			}

			if _, err := f.CreateFriendship(user, other, status); err != nil {
				return nil, err
			}
			if status == models.FriendshipStatusAccepted {
				friends[user.ID] = append(friends[user.ID], other)
				friends[other.ID] = append(friends[other.ID], user)
				accepted++
			}
		}
	}

	log.Printf("created friendship mesh with %d accepted links", accepted)
	return friends, nil
}

func createNotes(f *Factory, users []*models.User, perUser int) (map[uint][]*models.Note, error) {
	notesByUser := make(map[uint][]*models.Note)
	total := 0

	for _, user := range users {
		count := 1 + f.rand.Intn(perUser*2)
		for i := 0; i < count; i++ {
			note, err := f.CreateNote(user)
			if err != nil {
				return nil, err
			}
			notesByUser[user.ID] = append(notesByUser[user.ID], note)
			total++
		}
	}

	log.Printf("created %d notes", total)
	return notesByUser, nil
}

// shareNotes grants a few friends access to roughly a third of each
// user's notes and drops the matching notification rows.
func shareNotes(f *Factory, users []*models.User, friends map[uint][]*models.User, notesByUser map[uint][]*models.Note) error {
	shared := 0

	for _, user := range users {
		circle := friends[user.ID]
		if len(circle) == 0 {
			continue
		}

		for _, note := range notesByUser[user.ID] {
			if f.rand.Intn(3) != 0 {
				continue
			}

			recipients := circle[:1+f.rand.Intn(len(circle))]
			for _, friend := range recipients {
				note.SharedWith = note.SharedWith.Add(friend.ID)

				notification := &models.Notification{
					RecipientID: friend.ID,
					Kind:        models.KindNoteShared,
					Text:        fmt.Sprintf("%s shared a note with you: %s", user.Name, note.Title),
					Payload:     models.NotificationPayload{FriendID: user.ID, NoteID: note.ID},
				}
				if err := f.db.Create(notification).Error; err != nil {
					return err
				}
			}

			if err := f.db.Model(note).Update("shared_with", note.SharedWith).Error; err != nil {
				return err
			}
			shared++
		}
	}

	log.Printf("shared %d notes", shared)
	return nil
}

// createCollections groups a random slice of each user's unshared notes.
// Owner-only notes pass the exposure check under any collection sharing
// list, so the seeded data never leaks a note past its audience.
func createCollections(f *Factory, users []*models.User, friends map[uint][]*models.User, notesByUser map[uint][]*models.Note) error {
	total := 0

	for _, user := range users {
		var private []*models.Note
		for _, note := range notesByUser[user.ID] {
			if len(note.SharedWith) == 0 {
				private = append(private, note)
			}
		}
		if len(private) < 2 {
			continue
		}

		count := 1 + f.rand.Intn(2)
		for i := 0; i < count; i++ {
			picked := make([]uint, 0, len(private))
			for j, note := range private {
				if j == 0 || f.rand.Intn(2) == 0 {
					picked = append(picked, note.ID)
				}
			}

			circle := friends[user.ID]
			if _, err := f.CreateCollection(user, picked, func(c *models.Collection) {
				if len(circle) > 0 && f.rand.Intn(2) == 0 {
					c.SharedWith = models.IDList{circle[f.rand.Intn(len(circle))].ID}
				}
			}); err != nil {
				return err
			}
			total++
		}
	}

	log.Printf("created %d collections", total)
	return nil
}
