package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/controllers/booking_controller"
	"github.com/courtbook/courtbook/controllers/pricing_controller"
	"github.com/courtbook/courtbook/controllers/report_controller"
	"github.com/courtbook/courtbook/controllers/schedule_controller"
	middleware "github.com/courtbook/courtbook/middlewares"
	"github.com/courtbook/courtbook/middlewares/auth"
)

// RegisterManagerRoutes registers the court-management surface: schedules,
// pricing rules, the booking report, and manual cancellation.
func RegisterManagerRoutes(router *gin.Engine) {
	scheduleService := schedule_controller.NewScheduleService(db.DB)
	pricingService := pricing_controller.NewPricingService(db.DB)
	reportService := report_controller.NewReportService(db.DB)
	bookingService := booking_controller.NewBookingService(db.DB, newGateway(), currency())

	courts := router.Group("/courts")
	courts.Use(auth.AuthMiddleware())
	{
		courts.PUT("/:court_id/availability/recurring",
			middleware.NewRateLimiter("20-1m", "set-recurring"),
			scheduleService.SetRecurringAvailability)

		courts.PUT("/:court_id/availability/overrides",
			middleware.NewRateLimiter("20-1m", "set-override"),
			scheduleService.SetDateOverride)

		courts.POST("/:court_id/pricing-rules",
			middleware.NewRateLimiter("20-1m", "create-pricing-rule"),
			pricingService.CreateRule)

		courts.GET("/:court_id/pricing-rules",
			middleware.NewRateLimiter("30-1m", "list-pricing-rules"),
			pricingService.ListRules)
	}

	manage := router.Group("/manage")
	manage.Use(auth.AuthMiddleware())
	{
		manage.GET("/courts",
			middleware.NewRateLimiter("30-1m", "managed-courts"),
			reportService.ListManagedCourts)

		manage.GET("/bookings",
			middleware.NewRateLimiter("30-1m", "manage-bookings"),
			reportService.ListBookings)

		manage.GET("/bookings/export",
			middleware.NewRateLimiter("5-1m", "export-bookings"),
			reportService.ExportBookings)

		manage.POST("/bookings/:booking_id/cancel",
			middleware.CombinedRateLimiter("cancel-booking", "3-1m", "10-10m"),
			bookingService.CancelBookingHandler)
	}
}
