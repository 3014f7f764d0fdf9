package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"menu_platform/internal/config"
	"menu_platform/internal/database"
	"menu_platform/internal/migrations"
	"menu_platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func main() {
	fmt.Println("Initializing database...")

	cfg := config.Load()

	client, err := database.Initialize(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer client.Disconnect(ctx)

	db := client.Database(cfg.DatabaseName)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	if err := migrations.RunMigrations(db, cfg, logger); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	// Seed a demo restaurant so the API has something to serve locally.
	restaurants := db.Collection(cfg.RestaurantCollection)
	count, err := restaurants.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Fatal("Failed to count restaurants:", err)
	}
	if count > 0 {
		fmt.Println("Restaurants already seeded, skipping")
		return
	}

	now := time.Now().UTC()
	demo := models.Restaurant{
		Name:         "Demo Bistro",
		Description:  "Seeded restaurant for local development",
		OwnerID:      "owner-demo",
		CuisineTypes: []string{"italian", "pizza"},
		PriceRange:   "$$",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	result, err := restaurants.InsertOne(ctx, demo)
	if err != nil {
		log.Fatal("Failed to seed restaurant:", err)
	}

	fmt.Println("Seeded restaurant:", result.InsertedID)
	fmt.Println("Database initialization completed successfully!")
}
