package payment_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// Payment is the one-to-one money record for a booking. Raw gateway payloads
// are kept verbatim for reconciliation.
type Payment struct {
	ID               uuid.UUID                   `json:"id"`
	BookingID        uuid.UUID                   `json:"booking_id"`
	Gateway          *string                     `json:"gateway,omitempty"`
	GatewayOrderID   *string                     `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string                     `json:"gateway_payment_id,omitempty"`
	Amount           float64                     `json:"amount"`
	Currency         string                      `json:"currency"`
	Status           shared_models.PaymentStatus `json:"status"`
	RawRequest       []byte                      `json:"-"`
	RawResponse      []byte                      `json:"-"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

const paymentColumns = `id, booking_id, gateway, gateway_order_id, gateway_payment_id,
		amount, currency, status, raw_request, raw_response, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	var status string
	if err := row.Scan(&p.ID, &p.BookingID, &p.Gateway, &p.GatewayOrderID,
		&p.GatewayPaymentID, &p.Amount, &p.Currency, &status,
		&p.RawRequest, &p.RawResponse, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	p.Status, err = shared_models.ParsePaymentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt payment row %s: %w", p.ID, err)
	}
	return &p, nil
}

// CreatePayment inserts the CREATED payment alongside its booking, normally
// in the same admission transaction.
func CreatePayment(ctx context.Context, q shared_models.Querier, p *Payment) (*Payment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	p.ID = id
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = shared_models.PaymentCreated
	}

	_, err = q.Exec(ctx, `
		INSERT INTO payments
			(id, booking_id, gateway, gateway_order_id, gateway_payment_id,
			 amount, currency, status, raw_request, raw_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.BookingID, p.Gateway, p.GatewayOrderID, p.GatewayPaymentID,
		p.Amount, p.Currency, string(p.Status), p.RawRequest, p.RawResponse,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	logger.InfoLogger.Infof("Payment %s created for booking %s (%.2f %s)",
		p.ID, p.BookingID, p.Amount, p.Currency)
	return p, nil
}

// GetPaymentByBookingID returns the booking's payment record.
func GetPaymentByBookingID(ctx context.Context, q shared_models.Querier, bookingID uuid.UUID) (*Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE booking_id = $1`, paymentColumns)
	p, err := scanPayment(q.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "payment"}
		}
		return nil, fmt.Errorf("database error fetching payment: %w", err)
	}
	return p, nil
}

// LockPaymentByBookingID locks the booking's payment row for the duration of
// the transaction, serializing gateway order creation per booking.
func LockPaymentByBookingID(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE booking_id = $1 FOR UPDATE`, paymentColumns)
	p, err := scanPayment(tx.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "payment"}
		}
		return nil, fmt.Errorf("database error locking payment: %w", err)
	}
	return p, nil
}

// LockPaymentByGatewayOrderID locks the payment addressed by the gateway's
// order id, the correlation key webhooks carry, so concurrent deliveries for
// the same order serialize.
func LockPaymentByGatewayOrderID(ctx context.Context, tx pgx.Tx, orderID string) (*Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE gateway_order_id = $1 FOR UPDATE`, paymentColumns)
	p, err := scanPayment(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "payment"}
		}
		return nil, fmt.Errorf("database error locking payment: %w", err)
	}
	return p, nil
}

// SetGatewayOrder records the gateway order created for the payment, along
// with the raw request and response payloads.
func SetGatewayOrder(ctx context.Context, q shared_models.Querier, paymentID uuid.UUID, gateway, orderID string, rawRequest, rawResponse []byte) error {
	tag, err := q.Exec(ctx, `
		UPDATE payments
		SET gateway = $2, gateway_order_id = $3, raw_request = $4,
		    raw_response = $5, updated_at = now()
		WHERE id = $1`,
		paymentID, gateway, orderID, rawRequest, rawResponse)
	if err != nil {
		return fmt.Errorf("failed to record gateway order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &utils.NotFoundError{Resource: "payment"}
	}
	logger.InfoLogger.Infof("Payment %s linked to %s order %s", paymentID, gateway, orderID)
	return nil
}

// MarkPaymentOutcome records the final gateway outcome and the raw webhook
// payload that carried it.
func MarkPaymentOutcome(ctx context.Context, q shared_models.Querier, paymentID uuid.UUID, status shared_models.PaymentStatus, gatewayPaymentID *string, rawResponse []byte) error {
	tag, err := q.Exec(ctx, `
		UPDATE payments
		SET status = $2, gateway_payment_id = COALESCE($3, gateway_payment_id),
		    raw_response = $4, updated_at = now()
		WHERE id = $1`,
		paymentID, string(status), gatewayPaymentID, rawResponse)
	if err != nil {
		return fmt.Errorf("failed to record payment outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &utils.NotFoundError{Resource: "payment"}
	}
	logger.InfoLogger.Infof("Payment %s marked %s", paymentID, status)
	return nil
}
