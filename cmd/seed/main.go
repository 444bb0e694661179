// Command main runs the database seeder.
package main

import (
	"flag"
	"log"

	"missnotes/internal/config"
	"missnotes/internal/database"
	"missnotes/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	notesPerUser := flag.Int("notes", 4, "Approximate number of notes per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:     *numUsers,
		NotesPerUser: *notesPerUser,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
