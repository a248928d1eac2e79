package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

// respondError translates pipeline failures into the error taxonomy the
// client sees. Raw upstream bodies and stack traces stay in the logs.
func respondError(c *gin.Context, err error) {
	var estErr *services.EstimationError
	switch {
	case errors.Is(err, services.ErrMissingOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "owner could not be resolved"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.As(err, &estErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       "estimation failed",
			"kind":        string(estErr.Kind),
			"hint":        estErr.Hint,
			"recoverable": true,
		})
	case errors.Is(err, services.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "estimation provider unavailable, retry or log manually"})
	default:
		utils.Log.Errorf("unhandled request error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ownerID pulls the owner resolved by the auth middleware.
func ownerID(c *gin.Context) string {
	return c.GetString("ownerID")
}
