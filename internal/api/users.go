package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"bank_cards/internal/domain"     // Domain models
	"bank_cards/internal/middleware" // Identity extraction
	"bank_cards/internal/service"    // User service
	"bank_cards/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CreateUserRequest is the admin user-creation payload; unlike
// self-registration the role is explicit.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`       // Username must be provided
	Password string `json:"password" binding:"required,min=8"` // Password must be provided
	Role     string `json:"role" binding:"required"`           // USER or ADMIN
}

const userListCacheKey = "users:all"

// CreateUserHandler creates a user with an explicit role (ADMIN only).
func CreateUserHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := users.Create(c.Request.Context(), req.Username, req.Password, req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
		}).Info("User created by admin")
		_ = utils.DeleteCache(c.Request.Context(), rdb, userListCacheKey)
		c.JSON(http.StatusCreated, user)
	}
}

// ListUsersHandler returns all users (ADMIN only), cached for 60 seconds.
func ListUsersHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []domain.User
		found, err := utils.GetCache(ctx, rdb, userListCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"users": cached, "cached": true})
			return
		}
		list, err := users.List(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, userListCacheKey, list, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"users": list, "cached": false})
	}
}

// DeleteUserHandler removes a user unconditionally (ADMIN only). Owned
// cards are not cascade-checked.
func DeleteUserHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		if err := users.Delete(c.Request.Context(), uint(id)); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("user_id", id).Info("User deleted")
		_ = utils.DeleteCache(c.Request.Context(), rdb, userListCacheKey)
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// MeHandler returns the caller's own user record.
func MeHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.GetByUsername(c.Request.Context(), identity.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
