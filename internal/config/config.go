package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI             string
	DatabaseName         string
	OrderCollection      string
	ReviewCollection     string
	RestaurantCollection string
	RedisURL             string
	JWTSecret            string
	JWTIssuer            string
	JWTAudience          string
	ServerPort           string
	FlagThreshold        int
	CacheTTL             int
}

func Load() *Config {
	// Load .env file if exists
	godotenv.Load()

	return &Config{
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:         getEnv("DATABASE_NAME", "PromptMenuDB"),
		OrderCollection:      getEnv("ORDER_COLLECTION", "Orders"),
		ReviewCollection:     getEnv("REVIEW_COLLECTION", "Reviews"),
		RestaurantCollection: getEnv("RESTAURANT_COLLECTION", "Restaurants"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:            getEnv("JWT_SECRET", "your_jwt_secret"),
		JWTIssuer:            getEnv("JWT_ISSUER", "menu-platform"),
		JWTAudience:          getEnv("JWT_AUDIENCE", "menu-platform-api"),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		FlagThreshold:        getEnvAsInt("FLAG_THRESHOLD", 5),
		CacheTTL:             getEnvAsInt("CACHE_TTL", 1800),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
