package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/shared_models"
)

// GetUserIDFromContext extracts the authenticated user ID set by the auth
// middleware under the "sub" key.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("sub")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, fmt.Errorf("authentication required: user ID not found")
	}

	userIDStr, ok := raw.(string)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a string, actual type: %T", raw)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format in context")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse user ID string '%s' to UUID: %v", userIDStr, err)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format")
	}
	return userID, nil
}

// GetOrganizationIDFromContext extracts the tenant scope set by the tenant
// middleware. Every mutating operation must reject when it is absent.
func GetOrganizationIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("organization_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("organization context required")
	}
	orgIDStr, ok := raw.(string)
	if !ok {
		logger.ErrorLogger.Errorf("Organization ID in context is not a string, actual type: %T", raw)
		return uuid.Nil, fmt.Errorf("internal server error: invalid organization ID format in context")
	}
	orgID, err := uuid.Parse(orgIDStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse organization ID '%s': %v", orgIDStr, err)
		return uuid.Nil, fmt.Errorf("internal server error: invalid organization ID format")
	}
	return orgID, nil
}

// GetRoleFromContext extracts the caller's role set by the auth middleware.
func GetRoleFromContext(c *gin.Context) (shared_models.Role, error) {
	raw, exists := c.Get("role")
	if !exists {
		return "", fmt.Errorf("authentication required: role not found")
	}
	roleStr, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("internal server error: invalid role format in context")
	}
	return shared_models.ParseRole(roleStr)
}
