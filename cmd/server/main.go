package main

import (
	"context"                             // context package is needed for Redis operations
	"fortune_gateway/internal/api"        // Custom package for API handlers
	"fortune_gateway/internal/backend"    // Remote backend client
	"fortune_gateway/internal/checkout"   // Checkout workflow
	"fortune_gateway/internal/config"     // Custom package for configuration
	"fortune_gateway/internal/journal"    // Checkout journal
	"fortune_gateway/internal/middleware" // Custom package for middleware
	"fortune_gateway/internal/utils"      // Cache helpers
	"log"                                 // log package is needed for logging
	"time"                                // Guard TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the journal database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the checkout workflow: backend client, in-flight guard, journal
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	guard := checkout.NewRedisGuard(redisClient, 30*time.Second)
	journalStore := journal.NewStore(db)
	checkoutService := checkout.NewService(backendClient, guard, journalStore)
	cache := utils.NewCache(redisClient)
	limiter := middleware.NewRateLimiter(5, 10) // 5 req/s per client, burst 10

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	r.Use(middleware.RequestID())                        // Request id on every route
	r.Use(limiter.Middleware())                          // Per-client rate limit
	r.GET("/health", api.HealthHandler(db, redisClient)) // Liveness endpoint

	// Checkout routes (protected by JWT)
	checkoutGroup := r.Group("/checkout")
	checkoutGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	checkoutGroup.GET("/:service_id", api.PreviewCheckoutHandler(checkoutService, cache)) // Checkout preview endpoint
	checkoutGroup.POST("", api.ConfirmCheckoutHandler(checkoutService, cache))            // Checkout confirm endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware())
	adminGroup.GET("/checkouts", api.ListCheckoutsHandler(journalStore, cache)) // Journal listing endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
