package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/logger"
)

// RespondError maps a service error onto the HTTP response. Typed errors get
// their natural status; anything else is a 500 with the detail kept
// server-side.
func RespondError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case IsRetryableConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case IsPricingGap(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case IsGateway(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		logger.ErrorLogger.Errorf("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
