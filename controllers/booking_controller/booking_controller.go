package booking_controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/courtbook/courtbook/clients"
	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/metrics"
	"github.com/courtbook/courtbook/models/availability_models"
	"github.com/courtbook/courtbook/models/booking_models"
	"github.com/courtbook/courtbook/models/court_models"
	"github.com/courtbook/courtbook/models/payment_models"
	"github.com/courtbook/courtbook/models/pricing_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
	"github.com/courtbook/courtbook/utils/invoice"
)

// BookingService handles booking admission and the payment order flow.
type BookingService struct {
	DB       shared_models.DB
	Gateway  clients.PaymentGateway
	Currency string
}

func NewBookingService(db shared_models.DB, gateway clients.PaymentGateway, currency string) *BookingService {
	return &BookingService{DB: db, Gateway: gateway, Currency: currency}
}

// InitiateBookingRequest is the booking admission payload.
type InitiateBookingRequest struct {
	CourtID   string  `json:"court_id" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Notes     *string `json:"notes"`
}

const lockTimeout = "3s"

// AdmitBooking runs the admission transaction: lock the court row, check the
// requested range against open windows and concurrent bookings, price it, and
// insert the PENDING_PAYMENT booking with its CREATED payment. A lock-wait
// timeout surfaces as a retryable conflict; a real overlap as a definitive one.
func (s *BookingService) AdmitBooking(ctx context.Context, organizationID, userID, courtID uuid.UUID, start, end time.Time, notes *string) (*booking_models.Booking, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin admission transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	court, err := court_models.LockCourtInOrganization(ctx, tx, courtID, organizationID)
	if err != nil {
		return nil, admissionError(err)
	}
	if !court.IsActive {
		metrics.IncAdmissionConflict("validation")
		return nil, utils.Validationf("court is not open for booking")
	}

	if err := court.ValidateDuration(start, end); err != nil {
		metrics.IncAdmissionConflict("validation")
		return nil, err
	}

	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	startTod, endTod := dayRange(start, end)
	windows, err := availability_models.ResolveDayWindows(ctx, tx, courtID, date)
	if err != nil {
		return nil, err
	}
	if !withinWindows(windows, startTod, endTod) {
		metrics.IncAdmissionConflict("validation")
		return nil, utils.Validationf("requested time is outside the court's open hours")
	}

	overlapping, err := booking_models.LockOverlapping(ctx, tx, courtID, start, end)
	if err != nil {
		return nil, admissionError(err)
	}
	if len(overlapping) > 0 {
		metrics.IncAdmissionConflict("overlap")
		return nil, &utils.ConflictError{Msg: "requested time overlaps an existing booking"}
	}

	price, err := pricing_models.CalculateBookingPrice(ctx, tx, courtID, date, startTod, endTod)
	if err != nil {
		if utils.IsPricingGap(err) {
			metrics.IncAdmissionConflict("pricing_gap")
		}
		return nil, err
	}

	booking := &booking_models.Booking{
		OrganizationID: organizationID,
		UserID:         userID,
		CourtID:        courtID,
		VenueID:        court.VenueID,
		StartTime:      start,
		EndTime:        end,
		TotalPrice:     price,
		Status:         shared_models.BookingPendingPayment,
		Notes:          notes,
	}
	if _, err := booking_models.CreateBooking(ctx, tx, booking); err != nil {
		return nil, admissionError(err)
	}

	payment := &payment_models.Payment{
		BookingID: booking.ID,
		Amount:    price,
		Currency:  s.Currency,
		Status:    shared_models.PaymentCreated,
	}
	if _, err := payment_models.CreatePayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, admissionError(fmt.Errorf("failed to commit admission: %w", err))
	}

	metrics.IncBookingAdmitted()
	return booking, nil
}

// dayRange maps the booking's wall-clock bounds onto the booked day. An end
// landing on midnight is the day's exclusive upper bound, not minute zero of
// the following day.
func dayRange(start, end time.Time) (shared_models.TimeOfDay, shared_models.TimeOfDay) {
	s := shared_models.FromClock(start)
	e := shared_models.FromClock(end)
	if e == 0 {
		e = shared_models.MinutesPerDay
	}
	return s, e
}

// withinWindows reports whether [start, end) fits entirely inside one open
// window. A range straddling two adjacent windows does not qualify.
func withinWindows(windows []availability_models.Window, start, end shared_models.TimeOfDay) bool {
	for _, w := range windows {
		if w.Start <= start && end <= w.End {
			return true
		}
	}
	return false
}

// admissionError translates store-level failures into the admission error
// taxonomy. 55P03 is a lock-wait timeout, 23505 a uniqueness race.
func admissionError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			metrics.IncAdmissionConflict("lock_timeout")
			return &utils.ConflictError{Msg: "court is busy, please retry", Retryable: true}
		case "23505":
			metrics.IncAdmissionConflict("overlap")
			return &utils.ConflictError{Msg: "requested time overlaps an existing booking"}
		}
	}
	return err
}

// CreatePaymentOrder opens a gateway order for a pending booking. The payment
// row is locked for the duration, so concurrent calls for the same booking
// serialize and the second one returns the order the first created.
func (s *BookingService) CreatePaymentOrder(ctx context.Context, organizationID, userID, bookingID uuid.UUID) (map[string]interface{}, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin payment order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := booking_models.GetBookingInOrganization(ctx, tx, bookingID, organizationID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, &utils.NotFoundError{Resource: "booking"}
	}
	if booking.Status != shared_models.BookingPendingPayment {
		return nil, &utils.ConflictError{Msg: fmt.Sprintf("booking is %s, not awaiting payment", booking.Status)}
	}

	payment, err := payment_models.LockPaymentByBookingID(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if payment.GatewayOrderID != nil {
		return existingOrder(payment), nil
	}

	orderData := map[string]interface{}{
		"amount":   int(booking.TotalPrice * 100),
		"currency": payment.Currency,
		"receipt":  booking.ID.String(),
	}
	order, err := s.Gateway.CreateOrder(orderData)
	if err != nil {
		return nil, &utils.GatewayError{Op: "create order", Err: err}
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, &utils.GatewayError{Op: "create order", Err: errors.New("order response missing id")}
	}

	rawRequest, _ := json.Marshal(orderData)
	rawResponse, _ := json.Marshal(order)
	if err := payment_models.SetGatewayOrder(ctx, tx, payment.ID, clients.RazorpayName, orderID, rawRequest, rawResponse); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment order: %w", err)
	}
	return order, nil
}

// existingOrder reconstructs the order payload for a payment that already
// has a gateway order.
func existingOrder(payment *payment_models.Payment) map[string]interface{} {
	return map[string]interface{}{
		"id":       *payment.GatewayOrderID,
		"amount":   int(payment.Amount * 100),
		"currency": payment.Currency,
	}
}

// CancelBooking moves a non-terminal booking to CANCELLED_MANUAL. Managers
// may cancel bookings on courts they manage; super admins may cancel any
// booking in the organization.
func (s *BookingService) CancelBooking(ctx context.Context, organizationID, actorID uuid.UUID, role shared_models.Role, bookingID uuid.UUID) (*booking_models.Booking, error) {
	if !utils.CanCancelBooking(role) {
		return nil, &utils.NotFoundError{Resource: "booking"}
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancellation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := booking_models.GetBookingForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OrganizationID != organizationID {
		return nil, &utils.NotFoundError{Resource: "booking"}
	}

	if !utils.IsSuperAdmin(role) {
		manages, err := court_models.IsCourtManager(ctx, tx, booking.CourtID, actorID)
		if err != nil {
			return nil, err
		}
		if !manages {
			return nil, &utils.NotFoundError{Resource: "booking"}
		}
	}

	if booking.Status.Terminal() {
		return nil, &utils.ConflictError{Msg: fmt.Sprintf("booking is already %s", booking.Status)}
	}

	if err := booking_models.UpdateBookingStatus(ctx, tx, bookingID, shared_models.BookingCancelledManual); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	booking.Status = shared_models.BookingCancelledManual
	logger.InfoLogger.Infof("Booking %s cancelled by %s", bookingID, actorID)
	return booking, nil
}

// --- Gin Handlers ---

// InitiateBooking handles POST /bookings.
func (s *BookingService) InitiateBooking(c *gin.Context) {
	var req InitiateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courtID, err := uuid.Parse(req.CourtID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid court_id"})
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time, expected RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time, expected RFC3339"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}
	if start.YearDay() != end.Add(-time.Nanosecond).YearDay() || start.Year() != end.Add(-time.Nanosecond).Year() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking cannot span midnight"})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}

	booking, err := s.AdmitBooking(c.Request.Context(), organizationID, userID, courtID, start, end, req.Notes)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// CreateOrder handles POST /bookings/:booking_id/payment-order.
func (s *BookingService) CreateOrder(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}

	order, err := s.CreatePaymentOrder(c.Request.Context(), organizationID, userID, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetBooking handles GET /bookings/:booking_id.
func (s *BookingService) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}

	booking, err := booking_models.GetBookingInOrganization(c.Request.Context(), s.DB, bookingID, organizationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	role, _ := utils.GetRoleFromContext(c)
	if booking.UserID != userID && !utils.CanManageCourts(role) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	payment, err := payment_models.GetPaymentByBookingID(c.Request.Context(), s.DB, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "payment": payment})
}

// GetMyBookings handles GET /bookings.
func (s *BookingService) GetMyBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}

	bookings, err := booking_models.ListBookings(c.Request.Context(), s.DB, organizationID,
		booking_models.BookingFilter{UserID: &userID})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBookingHandler handles POST /bookings/:booking_id/cancel.
func (s *BookingService) CancelBookingHandler(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	actorID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}
	role, err := utils.GetRoleFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	booking, err := s.CancelBooking(c.Request.Context(), organizationID, actorID, role, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// DownloadInvoice handles GET /bookings/:booking_id/invoice, returning the
// PDF for a confirmed booking.
func (s *BookingService) DownloadInvoice(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}

	detail, err := booking_models.GetBookingDetail(c.Request.Context(), s.DB, bookingID, organizationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	role, _ := utils.GetRoleFromContext(c)
	if detail.UserID != userID && !utils.CanManageCourts(role) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if detail.Status != shared_models.BookingConfirmed || detail.InvoiceNumber == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "invoice is only available for confirmed bookings"})
		return
	}

	pdf, err := invoice.GeneratePDF(invoice.Data{
		InvoiceNumber: *detail.InvoiceNumber,
		BookingID:     detail.ID,
		CustomerName:  detail.UserName,
		VenueName:     detail.VenueName,
		CourtName:     detail.CourtName,
		StartTime:     detail.StartTime,
		EndTime:       detail.EndTime,
		TotalPrice:    detail.TotalPrice,
		Currency:      s.Currency,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=invoice-"+*detail.InvoiceNumber+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
