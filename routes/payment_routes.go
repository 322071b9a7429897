package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/controllers/payment_controller"
	"github.com/courtbook/courtbook/utils/mail"
)

// RegisterPaymentRoutes registers the gateway webhook. The route is public;
// authenticity comes from the signature check, not from a session.
func RegisterPaymentRoutes(router *gin.Engine) {
	var mailer payment_controller.ConfirmationMailer
	if m := mail.NewMailerFromEnv(); m != nil {
		mailer = m
	}
	paymentService := payment_controller.NewPaymentService(db.DB, newGateway(), mailer)

	router.POST("/webhooks/razorpay", paymentService.HandleWebhook)
}
