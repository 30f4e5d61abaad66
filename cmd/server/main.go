package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging
	"time"    // Request deadline duration

	"bank_cards/internal/api"        // Custom package for API handlers
	"bank_cards/internal/config"     // Custom package for configuration
	"bank_cards/internal/domain"     // Domain models and roles
	"bank_cards/internal/middleware" // Custom package for middleware
	"bank_cards/internal/service"    // Business services
	"bank_cards/internal/utils"      // Card number cipher

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

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Card numbers are encrypted at rest; the key must be 16, 24 or 32 bytes
	cipher, err := utils.NewCardCipher([]byte(cfg.CardEncKey))
	if err != nil {
		logrus.Fatalf("failed to initialize card cipher: %v", err)
	}

	users := service.NewUserService(db)
	cards := service.NewCardService(db, cipher)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Every request carries a deadline so store lock waits surface as a
	// 503 instead of hanging. Identity middleware runs on every route and
	// fails open: invalid or missing tokens continue unauthenticated and
	// the per-route role checks reject them. /auth stays reachable
	// without a token because no role check guards it.
	r.Use(middleware.RequestTimeout(time.Duration(cfg.ReqTimeout) * time.Second))
	r.Use(middleware.IdentityMiddleware(cfg.JWTSecret))

	// Auth routes (public)
	auth := r.Group("/auth")
	auth.POST("/register", api.RegisterHandler(users)) // Self-registration, role forced to USER
	auth.POST("/login", api.LoginHandler(users, cfg.JWTSecret))

	// Card routes (ADMIN or USER; admin-only operations tightened per route)
	cardGroup := r.Group("/cards")
	cardGroup.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleUser))
	cardGroup.POST("", middleware.RequireRole(domain.RoleAdmin), api.CreateCardHandler(cards, redisClient))
	cardGroup.GET("", api.ListCardsHandler(cards, redisClient))
	cardGroup.GET("/:id", api.GetCardHandler(cards))
	cardGroup.PUT("/:id/block", middleware.RequireRole(domain.RoleAdmin), api.SetStatusHandler(cards, redisClient, domain.CardBlocked))
	cardGroup.PUT("/:id/activate", middleware.RequireRole(domain.RoleAdmin), api.SetStatusHandler(cards, redisClient, domain.CardActive))
	cardGroup.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), api.DeleteCardHandler(cards, redisClient))
	cardGroup.PUT("/:id/request-block", middleware.RequireRole(domain.RoleUser), api.RequestBlockHandler(cards, redisClient))
	cardGroup.POST("/transfer", middleware.RequireRole(domain.RoleUser), api.TransferHandler(cards, redisClient))

	// User management routes (ADMIN only, /users/me open to any caller)
	userGroup := r.Group("/users")
	userGroup.GET("/me", middleware.RequireRole(domain.RoleAdmin, domain.RoleUser), api.MeHandler(users))
	userGroup.POST("", middleware.RequireRole(domain.RoleAdmin), api.CreateUserHandler(users, redisClient))
	userGroup.GET("", middleware.RequireRole(domain.RoleAdmin), api.ListUsersHandler(users, redisClient))
	userGroup.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), api.DeleteUserHandler(users, redisClient))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
