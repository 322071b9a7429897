package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/availability_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/models/user_models"
	"github.com/courtbook/courtbook/utils"
)

type Booking struct {
	ID             uuid.UUID                  `json:"id"`
	OrganizationID uuid.UUID                  `json:"organization_id"`
	UserID         uuid.UUID                  `json:"user_id"`
	CourtID        uuid.UUID                  `json:"court_id"`
	VenueID        uuid.UUID                  `json:"venue_id"`
	StartTime      time.Time                  `json:"start_time"`
	EndTime        time.Time                  `json:"end_time"`
	TotalPrice     float64                    `json:"total_price"`
	Status         shared_models.BookingStatus `json:"status"`
	InvoiceNumber  *string                    `json:"invoice_number,omitempty"`
	Notes          *string                    `json:"notes,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// BookingDetail carries the joined names an invoice or confirmation email
// needs alongside the booking itself.
type BookingDetail struct {
	Booking
	CourtName  string `json:"court_name"`
	VenueName  string `json:"venue_name"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
}

// Slot is a bookable 30-minute unit on a concrete date.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Overlaps reports whether two half-open ranges [s1,e1) and [s2,e2) share
// any time. Back-to-back ranges touching at an endpoint do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// TileWindows cuts each open window into consecutive slots of slotMinutes.
// A trailing remainder shorter than a slot is dropped.
func TileWindows(date time.Time, windows []availability_models.Window, slotMinutes int) []Slot {
	var slots []Slot
	for _, w := range windows {
		for tod := w.Start; tod+shared_models.TimeOfDay(slotMinutes) <= w.End; tod += shared_models.TimeOfDay(slotMinutes) {
			slots = append(slots, Slot{
				StartTime: tod.At(date),
				EndTime:   (tod + shared_models.TimeOfDay(slotMinutes)).At(date),
			})
		}
	}
	return slots
}

const bookingColumns = `id, organization_id, user_id, court_id, venue_id,
		start_time, end_time, total_price, status, invoice_number, notes,
		created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*Booking, error) {
	var b Booking
	var status string
	if err := row.Scan(&b.ID, &b.OrganizationID, &b.UserID, &b.CourtID, &b.VenueID,
		&b.StartTime, &b.EndTime, &b.TotalPrice, &status, &b.InvoiceNumber,
		&b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	b.Status, err = shared_models.ParseBookingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt booking row %s: %w", b.ID, err)
	}
	return &b, nil
}

// LockOverlapping locks and returns the blocking bookings that overlap
// [start, end) on the court. Must run inside the admission transaction after
// the court row is locked; the FOR UPDATE here serializes against concurrent
// admissions for the same slots.
func LockOverlapping(ctx context.Context, tx pgx.Tx, courtID uuid.UUID, start, end time.Time) ([]Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE court_id = $1
		  AND status IN ('PENDING_PAYMENT', 'CONFIRMED')
		  AND start_time < $3 AND end_time > $2
		FOR UPDATE`, bookingColumns)

	rows, err := tx.Query(ctx, query, courtID, start, end)
	if err != nil {
		return nil, fmt.Errorf("database error locking overlapping bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// blockingForDay returns the blocking bookings that touch the given day,
// for slot filtering.
func blockingForDay(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, date time.Time) ([]Booking, error) {
	dayStart := date.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE court_id = $1
		  AND status IN ('PENDING_PAYMENT', 'CONFIRMED')
		  AND start_time < $3 AND end_time > $2
		ORDER BY start_time`, bookingColumns)

	rows, err := q.Query(ctx, query, courtID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("database error fetching bookings for day: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// AvailableSlots resolves the court's open windows for the date, tiles them
// into slots, and drops every slot a blocking booking overlaps.
func AvailableSlots(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, date time.Time, slotMinutes int) ([]Slot, error) {
	windows, err := availability_models.ResolveDayWindows(ctx, q, courtID, date)
	if err != nil {
		return nil, err
	}
	slots := TileWindows(date, windows, slotMinutes)
	if len(slots) == 0 {
		return []Slot{}, nil
	}

	booked, err := blockingForDay(ctx, q, courtID, date)
	if err != nil {
		return nil, err
	}

	free := make([]Slot, 0, len(slots))
	for _, s := range slots {
		blocked := false
		for _, b := range booked {
			if Overlaps(s.StartTime, s.EndTime, b.StartTime, b.EndTime) {
				blocked = true
				break
			}
		}
		if !blocked {
			free = append(free, s)
		}
	}
	return free, nil
}

// CreateBooking inserts a booking, normally inside the admission transaction.
func CreateBooking(ctx context.Context, q shared_models.Querier, b *Booking) (*Booking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	b.ID = id
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err = q.Exec(ctx, `
		INSERT INTO bookings
			(id, organization_id, user_id, court_id, venue_id, start_time, end_time,
			 total_price, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.OrganizationID, b.UserID, b.CourtID, b.VenueID, b.StartTime,
		b.EndTime, b.TotalPrice, string(b.Status), b.Notes, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s created for court %s %s-%s (%.2f, %s)",
		b.ID, b.CourtID, b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339),
		b.TotalPrice, b.Status)
	return b, nil
}

// GetBookingInOrganization fetches a booking scoped to the tenant. A booking
// in another organization reads as not found.
func GetBookingInOrganization(ctx context.Context, q shared_models.Querier, bookingID, organizationID uuid.UUID) (*Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 AND organization_id = $2`, bookingColumns)
	b, err := scanBooking(q.QueryRow(ctx, query, bookingID, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetBookingForUpdate locks a single booking row inside a transaction.
func GetBookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, bookingColumns)
	b, err := scanBooking(tx.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// UpdateBookingStatus moves a booking to the given status.
func UpdateBookingStatus(ctx context.Context, q shared_models.Querier, bookingID uuid.UUID, status shared_models.BookingStatus) error {
	tag, err := q.Exec(ctx, `
		UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`,
		bookingID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &utils.NotFoundError{Resource: "booking"}
	}
	logger.InfoLogger.Infof("Booking %s moved to %s", bookingID, status)
	return nil
}

// ConfirmBooking marks a booking CONFIRMED and assigns an invoice number.
// COALESCE keeps the first invoice number if a replayed webhook confirms the
// same booking twice; the returned value is whichever number stuck.
func ConfirmBooking(ctx context.Context, q shared_models.Querier, bookingID uuid.UUID, invoiceNumber string) (string, error) {
	var assigned string
	err := q.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'CONFIRMED',
		    invoice_number = COALESCE(invoice_number, $2),
		    updated_at = now()
		WHERE id = $1
		RETURNING invoice_number`, bookingID, invoiceNumber).Scan(&assigned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &utils.NotFoundError{Resource: "booking"}
		}
		return "", fmt.Errorf("failed to confirm booking: %w", err)
	}
	logger.InfoLogger.Infof("Booking %s confirmed with invoice %s", bookingID, assigned)
	return assigned, nil
}

// BookingFilter narrows ListBookings. Nil fields match everything.
type BookingFilter struct {
	CourtID *uuid.UUID
	UserID  *uuid.UUID
	Status  *shared_models.BookingStatus
	Date    *time.Time
}

// ListBookings returns the organization's bookings newest first, optionally
// filtered by court, user, status, or calendar date.
func ListBookings(ctx context.Context, q shared_models.Querier, organizationID uuid.UUID, f BookingFilter) ([]Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE organization_id = $1`, bookingColumns)
	args := []any{organizationID}

	if f.CourtID != nil {
		args = append(args, *f.CourtID)
		query += fmt.Sprintf(" AND court_id = $%d", len(args))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Date != nil {
		dayStart := f.Date.Truncate(24 * time.Hour)
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
		query += fmt.Sprintf(" AND start_time >= $%d AND start_time < $%d", len(args)-1, len(args))
	}
	query += " ORDER BY start_time DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for organization %s: %v", organizationID, err)
		return nil, fmt.Errorf("database error listing bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// GetBookingDetail fetches a booking with the court, venue, and user names
// joined in, tenant scoped.
func GetBookingDetail(ctx context.Context, q shared_models.Querier, bookingID, organizationID uuid.UUID) (*BookingDetail, error) {
	query := `
		SELECT b.id, b.organization_id, b.user_id, b.court_id, b.venue_id,
		       b.start_time, b.end_time, b.total_price, b.status, b.invoice_number,
		       b.notes, b.created_at, b.updated_at,
		       c.name, v.name,
		       u.first_name, u.last_name, u.email
		FROM bookings b
		JOIN courts c ON c.id = b.court_id
		JOIN venues v ON v.id = b.venue_id
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1 AND b.organization_id = $2`

	var d BookingDetail
	var status string
	var owner user_models.User
	err := q.QueryRow(ctx, query, bookingID, organizationID).Scan(
		&d.ID, &d.OrganizationID, &d.UserID, &d.CourtID, &d.VenueID,
		&d.StartTime, &d.EndTime, &d.TotalPrice, &status, &d.InvoiceNumber,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt,
		&d.CourtName, &d.VenueName, &owner.FirstName, &owner.LastName, &d.UserEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("database error fetching booking detail: %w", err)
	}
	d.UserName = owner.FullName()
	d.Status, err = shared_models.ParseBookingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt booking row %s: %w", d.ID, err)
	}
	return &d, nil
}
