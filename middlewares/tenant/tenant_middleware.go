package tenant

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/org_models"
	"github.com/courtbook/courtbook/utils"
)

// resolveSlug picks the tenant slug from the X-Organization-Slug header,
// falling back to the first Host label (acme.example.com -> acme).
func resolveSlug(c *gin.Context) string {
	if slug := c.GetHeader("X-Organization-Slug"); slug != "" {
		return strings.ToLower(slug)
	}
	host := c.Request.Host
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 3 {
		return strings.ToLower(parts[0])
	}
	return ""
}

// TenantMiddleware resolves the organization for the request and publishes
// "organization_id" into the context. Requests that name no tenant pass
// through; handlers that need tenant scope reject them later.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := resolveSlug(c)
		if slug == "" {
			c.Next()
			return
		}

		org, err := org_models.GetOrganizationBySlug(c.Request.Context(), db.DB, slug)
		if err != nil {
			if utils.IsNotFound(err) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "organization not found"})
				return
			}
			logger.ErrorLogger.Errorf("Tenant resolution failed for slug %q: %v", slug, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set("organization_id", org.ID.String())
		c.Next()
	}
}
