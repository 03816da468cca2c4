package main

import (
	"log"
	"os"

	"guideline-agent-be/internal/mapper"
	"guideline-agent-be/internal/model"
	"guideline-agent-be/internal/seed"
	"guideline-agent-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.Options{})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Guideline Catalog...")

	guidelineMapper := mapper.NewGuidelineMapper()
	created := 0
	for _, g := range seed.Guidelines() {
		// Check if a guideline with this condition already exists
		var existing model.Guideline
		if err := db.Where("condition = ?", g.Condition).First(&existing).Error; err == nil {
			log.Printf("Guideline '%s' already exists, skipping...", g.Condition)
			continue
		}

		g.Id = uuid.New()
		if err := db.Create(guidelineMapper.ToModel(g)).Error; err != nil {
			log.Printf("Error creating guideline '%s': %v", g.Condition, err)
			continue
		}
		created++
		log.Printf("Created guideline: %s (priority %d)", g.Condition, g.Priority)
	}

	log.Printf("Guideline seeding completed! %d created.", created)
	log.Println("Run POST /api/embeddings/generate to embed the new conditions.")
}
