package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/controllers/auth_controller"
	middleware "github.com/courtbook/courtbook/middlewares"
)

// RegisterAuthRoutes registers the login endpoint. Tight limits; failed
// logins are the abuse magnet.
func RegisterAuthRoutes(router *gin.Engine) {
	authService := auth_controller.NewAuthService(db.DB)

	router.POST("/auth/login",
		middleware.CombinedRateLimiter("login", "5-1m", "20-1h"),
		authService.Login)
}
