package payment_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/courtbook/courtbook/clients"
	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/metrics"
	"github.com/courtbook/courtbook/models/booking_models"
	"github.com/courtbook/courtbook/models/payment_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
	"github.com/courtbook/courtbook/utils/invoice"
)

// ConfirmationMailer sends the post-confirmation email. *mail.Mailer
// satisfies it; a nil Mailer disables sending.
type ConfirmationMailer interface {
	SendBookingConfirmation(*booking_models.BookingDetail) error
}

// PaymentService reconciles gateway webhook deliveries against payment and
// booking state.
type PaymentService struct {
	DB      shared_models.DB
	Gateway clients.PaymentGateway
	Mailer  ConfirmationMailer
}

func NewPaymentService(db shared_models.DB, gateway clients.PaymentGateway, mailer ConfirmationMailer) *PaymentService {
	return &PaymentService{DB: db, Gateway: gateway, Mailer: mailer}
}

// webhookPayload is the Razorpay webhook envelope, reduced to the fields
// reconciliation needs.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

const (
	eventPaymentCaptured = "payment.captured"
	eventPaymentFailed   = "payment.failed"
	eventOrderPaid       = "order.paid"
)

// RecordPaymentEvent applies a gateway outcome to the payment and its
// booking, idempotently. Deliveries for unknown orders are acknowledged and
// dropped; deliveries against a terminal payment are no-ops; only genuine
// store failures propagate so the gateway retries.
func (s *PaymentService) RecordPaymentEvent(ctx context.Context, orderID string, success bool, gatewayPaymentID *string, raw []byte) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin reconciliation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	payment, err := payment_models.LockPaymentByGatewayOrderID(ctx, tx, orderID)
	if err != nil {
		if utils.IsNotFound(err) {
			logger.WarnLogger.Warnf("Webhook for unknown gateway order %s, dropping", orderID)
			return nil
		}
		return err
	}

	if payment.Status.Terminal() {
		logger.InfoLogger.Infof("Webhook replay for payment %s (already %s), no-op", payment.ID, payment.Status)
		return nil
	}

	booking, err := booking_models.GetBookingForUpdate(ctx, tx, payment.BookingID)
	if err != nil {
		return err
	}

	confirmed := false
	if success {
		if err := payment_models.MarkPaymentOutcome(ctx, tx, payment.ID, shared_models.PaymentSuccess, gatewayPaymentID, raw); err != nil {
			return err
		}
		// A booking already in a terminal state (e.g. cancelled while the
		// customer paid) keeps that state; only the payment is recorded.
		if !booking.Status.Terminal() {
			invoiceNumber, err := invoice.GenerateInvoiceNumber(booking.OrganizationID)
			if err != nil {
				return err
			}
			if _, err := booking_models.ConfirmBooking(ctx, tx, booking.ID, invoiceNumber); err != nil {
				return err
			}
			confirmed = true
		}
	} else {
		if err := payment_models.MarkPaymentOutcome(ctx, tx, payment.ID, shared_models.PaymentFailed, gatewayPaymentID, raw); err != nil {
			return err
		}
		if !booking.Status.Terminal() {
			if err := booking_models.UpdateBookingStatus(ctx, tx, booking.ID, shared_models.BookingFailed); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	if confirmed {
		s.sendConfirmationEmail(ctx, booking)
	}
	return nil
}

// sendConfirmationEmail is best effort and runs only after commit.
func (s *PaymentService) sendConfirmationEmail(ctx context.Context, booking *booking_models.Booking) {
	if s.Mailer == nil {
		return
	}
	detail, err := booking_models.GetBookingDetail(ctx, s.DB, booking.ID, booking.OrganizationID)
	if err != nil {
		logger.WarnLogger.Warnf("Could not load booking %s for confirmation email: %v", booking.ID, err)
		return
	}
	if err := s.Mailer.SendBookingConfirmation(detail); err != nil {
		logger.WarnLogger.Warnf("Confirmation email for booking %s failed: %v", booking.ID, err)
	}
}

// HandleWebhook handles POST /webhooks/razorpay. The signature check runs
// against the raw body before any parsing. Unrecognized events are
// acknowledged so the gateway stops retrying them.
func (s *PaymentService) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" || !s.Gateway.VerifyWebhookSignature(string(body), signature) {
		metrics.IncWebhookEvent("unknown", "bad_signature")
		logger.WarnLogger.Warn("Webhook rejected: bad or missing signature")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.IncWebhookEvent("unknown", "bad_payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var success bool
	switch payload.Event {
	case eventPaymentCaptured, eventOrderPaid:
		success = true
	case eventPaymentFailed:
		success = false
	default:
		metrics.IncWebhookEvent(payload.Event, "ignored")
		logger.InfoLogger.Infof("Ignoring webhook event %q", payload.Event)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	orderID := payload.Payload.Payment.Entity.OrderID
	if orderID == "" {
		orderID = payload.Payload.Order.Entity.ID
	}
	if orderID == "" {
		metrics.IncWebhookEvent(payload.Event, "bad_payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload missing order id"})
		return
	}

	var gatewayPaymentID *string
	if id := payload.Payload.Payment.Entity.ID; id != "" {
		gatewayPaymentID = &id
	}

	if err := s.RecordPaymentEvent(c.Request.Context(), orderID, success, gatewayPaymentID, body); err != nil {
		metrics.IncWebhookEvent(payload.Event, "error")
		logger.ErrorLogger.Errorf("Webhook reconciliation failed for order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	metrics.IncWebhookEvent(payload.Event, "ok")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
