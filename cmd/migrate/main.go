// Command migrate applies the database schema. Connect already runs
// AutoMigrate outside production; this command is the explicit path for
// production rollouts.
package main

import (
	"log"

	"missnotes/internal/config"
	"missnotes/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(database.Models()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("schema up to date")
}
