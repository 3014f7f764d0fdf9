package repository

import (
	"context"

	"menu_platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewFilter narrows a paginated review listing. Listings only ever see
// active, published reviews.
type ReviewFilter struct {
	CustomerID   string
	RestaurantID string
	MinRating    int
	MaxRating    int
	SortBy       string // "date" or "helpful"
	Page         int
	Limit        int
}

type ReviewRepository interface {
	Insert(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetByReviewNumber(ctx context.Context, reviewNumber string) (*models.Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]models.Review, int64, error)
	FindPublished(ctx context.Context, restaurantID string) ([]models.Review, error)
	CountByRating(ctx context.Context, restaurantID string, rating int) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error)
	IncrementCounter(ctx context.Context, id primitive.ObjectID, field string) error
	EscalateFlagged(ctx context.Context, id primitive.ObjectID, threshold int) (bool, error)
}

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(collection *mongo.Collection) ReviewRepository {
	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Insert(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByReviewNumber(ctx context.Context, reviewNumber string) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"review_number": reviewNumber, "is_active": true}).Decode(&review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]models.Review, int64, error) {
	query := bson.M{"is_active": true, "status": string(models.ReviewPublished)}
	if filter.CustomerID != "" {
		query["customer_id"] = filter.CustomerID
	}
	if filter.RestaurantID != "" {
		query["restaurant_id"] = filter.RestaurantID
	}
	if filter.MinRating > 0 || filter.MaxRating > 0 {
		rating := bson.M{}
		if filter.MinRating > 0 {
			rating["$gte"] = filter.MinRating
		}
		if filter.MaxRating > 0 {
			rating["$lte"] = filter.MaxRating
		}
		query["rating"] = rating
	}

	sortField := "date"
	if filter.SortBy == "helpful" {
		sortField = "helpful_count"
	}

	skip := int64((filter.Page - 1) * filter.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}

	totalCount, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return reviews, totalCount, nil
}

func (r *reviewRepository) FindPublished(ctx context.Context, restaurantID string) ([]models.Review, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"restaurant_id": restaurantID,
		"is_active":     true,
		"status":        string(models.ReviewPublished),
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) CountByRating(ctx context.Context, restaurantID string, rating int) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"restaurant_id": restaurantID,
		"is_active":     true,
		"status":        string(models.ReviewPublished),
		"rating":        rating,
	})
}

func (r *reviewRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error) {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *reviewRepository) IncrementCounter(ctx context.Context, id primitive.ObjectID, field string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: 1}})
	return err
}

// EscalateFlagged flips a published review to under_review once its flag
// count has reached the threshold. The condition lives in the update filter
// so concurrent flag requests cannot double-fire the transition.
func (r *reviewRepository) EscalateFlagged(ctx context.Context, id primitive.ObjectID, threshold int) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":        id,
			"status":     string(models.ReviewPublished),
			"flag_count": bson.M{"$gte": threshold},
		},
		bson.M{"$set": bson.M{"status": string(models.ReviewUnderReview)}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}
