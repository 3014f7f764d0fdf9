package repository

import (
	"context"
	"time"

	"menu_platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type RestaurantRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error)
	UpdateRating(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error
}

type restaurantRepository struct {
	collection *mongo.Collection
}

func NewRestaurantRepository(collection *mongo.Collection) RestaurantRepository {
	return &restaurantRepository{collection: collection}
}

func (r *restaurantRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&restaurant)
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) UpdateRating(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"avg_rating":   avgRating,
		"review_count": reviewCount,
		"updated_at":   time.Now().UTC(),
	}})
	return err
}
