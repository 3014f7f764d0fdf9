package services

import (
	"context"

	"menu_platform/internal/models"
	"menu_platform/internal/redis"
	"menu_platform/internal/repository"

	"go.uber.org/zap"
)

// RatingSnapshotReader serves the cached rating aggregate on the read path.
type RatingSnapshotReader interface {
	GetRatingSnapshot(restaurantID string) (*redis.RatingSnapshot, error)
}

type RestaurantService interface {
	GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error)
}

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
	cache          RatingSnapshotReader
	log            *zap.Logger
}

func NewRestaurantService(restaurantRepo repository.RestaurantRepository, cache RatingSnapshotReader, log *zap.Logger) RestaurantService {
	return &restaurantService{restaurantRepo: restaurantRepo, cache: cache, log: log}
}

// GetRestaurantByID returns the restaurant document, overlaying the cached
// rating snapshot when one is present. A cache miss falls through silently.
func (s *restaurantService) GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	if s.cache != nil {
		if snapshot, err := s.cache.GetRatingSnapshot(id); err == nil {
			restaurant.AvgRating = snapshot.AvgRating
			restaurant.ReviewCount = snapshot.ReviewCount
		}
	}

	return restaurant, nil
}
