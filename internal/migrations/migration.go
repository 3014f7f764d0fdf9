package migrations

import (
	"context"
	"time"

	"menu_platform/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// RunMigrations creates the indexes the query paths depend on. Index creation
// is idempotent, so this runs on every startup.
func RunMigrations(db *mongo.Database, cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("creating database indexes")

	orderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := db.Collection(cfg.OrderCollection).Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return err
	}

	reviewIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "review_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "status", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "flag_count", Value: 1}}},
	}
	if _, err := db.Collection(cfg.ReviewCollection).Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return err
	}

	restaurantIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "avg_rating", Value: -1}}},
	}
	if _, err := db.Collection(cfg.RestaurantCollection).Indexes().CreateMany(ctx, restaurantIndexes); err != nil {
		return err
	}

	log.Info("database indexes created")
	return nil
}
