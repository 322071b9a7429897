package shared_models

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SlotMinutes is the booking granularity. Availability tiling, duration
// validation and pricing all operate on this unit.
const SlotMinutes = 30

// BookingStatus is the closed set of booking lifecycle states.
type BookingStatus string

const (
	BookingPendingPayment  BookingStatus = "PENDING_PAYMENT"
	BookingConfirmed       BookingStatus = "CONFIRMED"
	BookingFailed          BookingStatus = "FAILED"
	BookingCancelledManual BookingStatus = "CANCELLED_MANUAL"
)

// ParseBookingStatus validates a raw status string at the boundary.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingPendingPayment, BookingConfirmed, BookingFailed, BookingCancelledManual:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("invalid booking status %q", s)
}

// Terminal reports whether no further transition may leave this state.
func (s BookingStatus) Terminal() bool {
	return s == BookingConfirmed || s == BookingFailed || s == BookingCancelledManual
}

// Blocking reports whether a booking in this state occupies its time range.
// FAILED and CANCELLED_MANUAL bookings release their slot immediately.
func (s BookingStatus) Blocking() bool {
	return s == BookingPendingPayment || s == BookingConfirmed
}

// PaymentStatus mirrors the booking lifecycle on the gateway side. It is
// tracked independently because gateways re-report on retry.
type PaymentStatus string

const (
	PaymentCreated PaymentStatus = "CREATED"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentCreated, PaymentSuccess, PaymentFailed:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("invalid payment status %q", s)
}

func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// OverrideType distinguishes one-time closures from special open hours.
type OverrideType string

const (
	OverrideOpen  OverrideType = "OPEN"
	OverrideClose OverrideType = "CLOSE"
)

func ParseOverrideType(s string) (OverrideType, error) {
	switch OverrideType(s) {
	case OverrideOpen, OverrideClose:
		return OverrideType(s), nil
	}
	return "", fmt.Errorf("invalid override type %q", s)
}

// RuleType distinguishes weekly pricing patterns from date-specific ones.
type RuleType string

const (
	RuleRecurring RuleType = "RECURRING"
	RuleOneTime   RuleType = "ONE_TIME"
)

func ParseRuleType(s string) (RuleType, error) {
	switch RuleType(s) {
	case RuleRecurring, RuleOneTime:
		return RuleType(s), nil
	}
	return "", fmt.Errorf("invalid rule type %q", s)
}

// Role is the closed set of user roles.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleManager    Role = "MANAGER"
	RoleUser       Role = "USER"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleManager, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// DayOfWeek maps a timestamp to the 0-6 scheme used by availability and
// pricing rows, with Monday=0 and Sunday=6.
func DayOfWeek(t time.Time) int16 {
	return int16((int(t.Weekday()) + 6) % 7)
}

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// Availability windows and pricing rules use it for containment checks
// without dragging a date along.
type TimeOfDay int

// MinutesPerDay is the exclusive upper bound of a day's TimeOfDay range.
// A window or booking ending at midnight ends at this value, never at 0.
const MinutesPerDay TimeOfDay = 24 * 60

// ParseTimeOfDay accepts "15:04" or "15:04:05" (seconds are discarded).
// "24:00" is valid as an exclusive end of day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "24:00" || s == "24:00:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// FromClock extracts the TimeOfDay of a timestamp in its own location.
func FromClock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(d)/60, int(d)%60)
}

// At anchors the time of day onto a calendar date in the date's location.
func (d TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(d)/60, int(d)%60, 0, 0, date.Location())
}

// Microseconds converts to the representation Postgres TIME columns use.
func (d TimeOfDay) Microseconds() int64 {
	return int64(d) * 60 * 1_000_000
}

// TimeOfDayFromMicroseconds converts back from a scanned TIME value.
func TimeOfDayFromMicroseconds(us int64) TimeOfDay {
	return TimeOfDay(us / (60 * 1_000_000))
}

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so model queries run unchanged inside the admission transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the pool surface transactional services depend on. *pgxpool.Pool
// satisfies it.
type DB interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}
