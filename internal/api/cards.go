package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"bank_cards/internal/domain"     // Domain models
	"bank_cards/internal/middleware" // Identity extraction
	"bank_cards/internal/service"    // Card service
	"bank_cards/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CreateCardRequest carries the card fields; the owner comes from the
// userId query parameter.
type CreateCardRequest struct {
	Number     string  `json:"number" binding:"required"`         // Plaintext card number
	Expiration string  `json:"expiration" binding:"required"`     // Expiration date, MM/YY
	Balance    float64 `json:"balance" binding:"omitempty,gte=0"` // Initial balance
}

// TransferRequest represents a card-to-card transfer
type TransferRequest struct {
	FromCardID uint    `json:"from_card_id" binding:"required"` // Source card ID
	ToCardID   uint    `json:"to_card_id" binding:"required"`   // Target card ID
	Amount     float64 `json:"amount" binding:"required,gt=0"`  // Transfer amount
}

const cardCacheTTL = 60 * time.Second

// cardListKey is the redis key for a caller's card listing.
func cardListKey(identity domain.Identity) string {
	if identity.IsAdmin() {
		return "cards:admin"
	}
	return "cards:user:" + strconv.Itoa(int(identity.UserID))
}

// invalidateCardCaches drops the admin listing and each owner's listing.
func invalidateCardCaches(ctx context.Context, rdb *redis.Client, ownerIDs ...uint) {
	_ = utils.DeleteCache(ctx, rdb, "cards:admin")
	for _, id := range ownerIDs {
		_ = utils.DeleteCache(ctx, rdb, "cards:user:"+strconv.Itoa(int(id)))
	}
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateCardHandler creates a card for the owner given in the userId
// query parameter (ADMIN only, enforced by the router).
func CreateCardHandler(cards *service.CardService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := strconv.ParseUint(c.Query("userId"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
			return
		}
		var req CreateCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		card, err := cards.Create(ctx, req.Number, req.Expiration, req.Balance, uint(ownerID))
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"card_id":  card.ID,
			"owner_id": card.OwnerID,
			"balance":  card.Balance,
		}).Info("Card created")
		invalidateCardCaches(ctx, rdb, card.OwnerID)
		c.JSON(http.StatusCreated, card)
	}
}

// ListCardsHandler lists the cards visible to the caller: ADMIN sees
// every card, USER only owned cards. Listings are cached for 60 seconds
// in their stored form — card numbers stay ciphertext in redis and are
// decrypted only on the way out, cache hit or miss alike.
func ListCardsHandler(cards *service.CardService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := cardListKey(identity)
		var cached []domain.Card
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			if err := cards.DecryptNumbers(cached); err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"cards": cached, "cached": true})
			return
		}
		stored, err := cards.ListStoredForCaller(ctx, identity)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, stored, cardCacheTTL)
		if err := cards.DecryptNumbers(stored); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cards": stored, "cached": false})
	}
}

// GetCardHandler fetches one card if it is visible to the caller.
func GetCardHandler(cards *service.CardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		card, err := cards.Get(c.Request.Context(), id, identity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, card)
	}
}

// SetStatusHandler sets the card status directly (ADMIN only). Both
// directions are allowed unconditionally.
func SetStatusHandler(cards *service.CardService, rdb *redis.Client, status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		ownerID, err := cards.SetStatus(ctx, id, status)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"card_id": id,
			"status":  status,
		}).Info("Card status changed")
		invalidateCardCaches(ctx, rdb, ownerID)
		c.JSON(http.StatusOK, gin.H{"message": "Card status updated"})
	}
}

// RequestBlockHandler lets a user immediately block an owned card.
func RequestBlockHandler(cards *service.CardService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := cards.RequestBlock(ctx, id, identity.UserID); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"card_id": id,
			"user_id": identity.UserID,
		}).Info("Card blocked on user request")
		invalidateCardCaches(ctx, rdb, identity.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Card blocked"})
	}
}

// DeleteCardHandler removes a card unconditionally (ADMIN only).
func DeleteCardHandler(cards *service.CardService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		ownerID, err := cards.Delete(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("card_id", id).Info("Card deleted")
		invalidateCardCaches(ctx, rdb, ownerID)
		c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
	}
}

// TransferHandler moves funds between two cards atomically.
func TransferHandler(cards *service.CardService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		from, to, err := cards.Transfer(ctx, req.FromCardID, req.ToCardID, req.Amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"from_card_id": req.FromCardID,
				"to_card_id":   req.ToCardID,
				"amount":       req.Amount,
				"error":        err.Error(),
			}).Warn("Transfer failed")
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"from_card_id": from.ID,
			"to_card_id":   to.ID,
			"amount":       req.Amount,
			"timestamp":    time.Now().Format(time.RFC3339),
		}).Info("Transfer completed")
		invalidateCardCaches(ctx, rdb, from.OwnerID, to.OwnerID)
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful"})
	}
}
