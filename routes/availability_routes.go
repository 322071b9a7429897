package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/controllers/availability_controller"
	middleware "github.com/courtbook/courtbook/middlewares"
)

// RegisterAvailabilityRoutes registers the public availability surface.
func RegisterAvailabilityRoutes(router *gin.Engine) {
	availabilityService := availability_controller.NewAvailabilityService(db.DB)

	router.GET("/courts/:court_id/availability",
		middleware.NewRateLimiter("60-1m", "court-availability"),
		availabilityService.GetAvailability)

	router.GET("/venues/:venue_id/courts",
		middleware.NewRateLimiter("60-1m", "venue-courts"),
		availabilityService.ListVenueCourts)
}
