package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// RatingSnapshot is the cached copy of a restaurant's aggregate rating,
// refreshed every time the review engine recomputes it.
type RatingSnapshot struct {
	AvgRating   float64   `json:"avg_rating"`
	ReviewCount int64     `json:"review_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) SetRatingSnapshot(restaurantID string, snapshot *RatingSnapshot, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal rating snapshot: %w", err)
	}

	return c.rdb.Set(ctx, "rating:"+restaurantID, jsonData, ttl).Err()
}

func (c *Client) GetRatingSnapshot(restaurantID string) (*RatingSnapshot, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "rating:"+restaurantID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("rating snapshot not found")
		}
		return nil, fmt.Errorf("failed to get rating snapshot: %w", err)
	}

	var snapshot RatingSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rating snapshot: %w", err)
	}

	return &snapshot, nil
}

func (c *Client) DeleteRatingSnapshot(restaurantID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "rating:"+restaurantID).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
