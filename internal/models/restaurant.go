package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Restaurant holds the cached rating aggregate the review engine writes back.
type Restaurant struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID      string             `json:"owner_id" bson:"owner_id"`
	CuisineTypes []string           `json:"cuisine_types,omitempty" bson:"cuisine_types,omitempty"`
	PriceRange   string             `json:"price_range,omitempty" bson:"price_range,omitempty"`

	AvgRating   float64 `json:"avg_rating" bson:"avg_rating"`
	ReviewCount int64   `json:"review_count" bson:"review_count"`

	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
