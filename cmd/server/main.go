package main

import (
	"context"
	"time"

	"menu_platform/internal/auth"
	"menu_platform/internal/config"
	"menu_platform/internal/database"
	"menu_platform/internal/handlers"
	"menu_platform/internal/migrations"
	"menu_platform/internal/redis"
	"menu_platform/internal/repository"
	"menu_platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Initialize database
	client, err := database.Initialize(cfg.MongoURI)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DatabaseName)

	// Ensure indexes exist before serving traffic
	if err := migrations.RunMigrations(db, cfg, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis
	cache, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db.Collection(cfg.OrderCollection))
	reviewRepo := repository.NewReviewRepository(db.Collection(cfg.ReviewCollection))
	restaurantRepo := repository.NewRestaurantRepository(db.Collection(cfg.RestaurantCollection))

	// Initialize services
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	orderService := services.NewOrderService(orderRepo, log)
	reviewService := services.NewReviewService(reviewRepo, restaurantRepo, cache, cfg.FlagThreshold, cacheTTL, log)
	restaurantService := services.NewRestaurantService(restaurantRepo, cache, log)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, log)
	reviewHandler := handlers.NewReviewHandler(reviewService, log)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService, log)

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	// Setup routes; every endpoint sits behind the identity verifier
	router := gin.Default()

	api := router.Group("/api")
	api.Use(auth.Middleware(verifier))
	{
		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.PUT("/orders/:id", orderHandler.UpdateOrder)
		api.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
		api.DELETE("/orders/:id", orderHandler.CancelOrder)

		api.POST("/reviews", reviewHandler.CreateReview)
		api.GET("/reviews", reviewHandler.ListReviews)
		api.GET("/reviews/:id", reviewHandler.GetReview)
		api.PUT("/reviews/:id", reviewHandler.UpdateReview)
		api.DELETE("/reviews/:id", reviewHandler.DeleteReview)
		api.PUT("/reviews/:id/respond", reviewHandler.RespondToReview)
		api.POST("/reviews/:id/helpful", reviewHandler.MarkHelpful)
		api.POST("/reviews/:id/flag", reviewHandler.FlagReview)
		api.PUT("/reviews/:id/moderate", reviewHandler.ModerateReview)
		api.PUT("/reviews/:id/feature", reviewHandler.FeatureReview)

		api.GET("/restaurants/:id", restaurantHandler.GetRestaurant)
	}

	// Start server
	log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
