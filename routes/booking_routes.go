package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/clients"
	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/controllers/booking_controller"
	middleware "github.com/courtbook/courtbook/middlewares"
	"github.com/courtbook/courtbook/middlewares/auth"
)

// newGateway builds the Razorpay gateway from env. Shared by the booking and
// webhook routes.
func newGateway() clients.PaymentGateway {
	return clients.NewRazorpayGateway(
		os.Getenv("RAZORPAY_KEY_ID"),
		os.Getenv("RAZORPAY_KEY_SECRET"),
		os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	)
}

func currency() string {
	if c := os.Getenv("CURRENCY"); c != "" {
		return c
	}
	return "INR"
}

// RegisterBookingRoutes registers the authenticated booking surface.
func RegisterBookingRoutes(router *gin.Engine) {
	bookingService := booking_controller.NewBookingService(db.DB, newGateway(), currency())

	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.CombinedRateLimiter("initiate-booking", "5-1m", "20-10m"),
			bookingService.InitiateBooking)

		protected.GET("",
			middleware.NewRateLimiter("20-1m", "my-bookings"),
			bookingService.GetMyBookings)

		protected.GET("/:booking_id",
			middleware.NewRateLimiter("15-30s", "get-booking"),
			bookingService.GetBooking)

		protected.POST("/:booking_id/payment-order",
			middleware.CombinedRateLimiter("payment-order", "5-1m", "20-10m"),
			bookingService.CreateOrder)

		protected.GET("/:booking_id/invoice",
			middleware.NewRateLimiter("10-1m", "download-invoice"),
			bookingService.DownloadInvoice)
	}
}
