package api

import (
	"context"  // Deadline detection for store timeouts
	"errors"   // Error kind matching
	"net/http" // HTTP status codes

	"bank_cards/internal/service" // Typed domain failures

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError maps a service failure onto the HTTP taxonomy:
// not-found → 404, duplicate/conflict → 409, bad input → 400,
// bad credentials → 401, anything unexpected → 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrOwnerNotFound),
		errors.Is(err, service.ErrSourceCardNotFound),
		errors.Is(err, service.ErrTargetCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBadAmount),
		errors.Is(err, service.ErrSameCard),
		errors.Is(err, service.ErrBadRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		// Lock waits and store stalls surface as a timeout, not a hang
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
	default:
		logrus.WithField("error", err.Error()).Error("Unexpected failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
