package availability_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/shared_models"
)

// RecurringAvailability is a weekly-repeating open window for a court.
// Multiple disjoint windows per court/day are allowed.
type RecurringAvailability struct {
	ID        uuid.UUID               `json:"id"`
	CourtID   uuid.UUID               `json:"court_id"`
	DayOfWeek int16                   `json:"day_of_week"`
	StartTime shared_models.TimeOfDay `json:"start_time"`
	EndTime   shared_models.TimeOfDay `json:"end_time"`
	IsActive  bool                    `json:"is_active"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// DateOverride is a one-time exception for a specific date. CLOSE voids all
// recurring windows for the date; OPEN replaces them with its own window.
// At most one override exists per court/date (unique constraint).
type DateOverride struct {
	ID           uuid.UUID                `json:"id"`
	CourtID      uuid.UUID                `json:"court_id"`
	Date         time.Time                `json:"date"`
	OverrideType shared_models.OverrideType `json:"override_type"`
	StartTime    *shared_models.TimeOfDay `json:"start_time"`
	EndTime      *shared_models.TimeOfDay `json:"end_time"`
	Reason       *string                  `json:"reason"`
	CreatedBy    *uuid.UUID               `json:"created_by"`
	CreatedAt    time.Time                `json:"created_at"`
}

// Window is an open time range within a single day.
type Window struct {
	Start shared_models.TimeOfDay `json:"start"`
	End   shared_models.TimeOfDay `json:"end"`
}

// ResolveWindows layers a date override over the recurring template.
// CLOSE yields no windows; OPEN replaces the template entirely with the
// override's own window; no override passes the recurring windows through.
// Absence of data means closed.
func ResolveWindows(override *DateOverride, recurring []RecurringAvailability) []Window {
	if override != nil {
		if override.OverrideType == shared_models.OverrideClose {
			return nil
		}
		if override.StartTime != nil && override.EndTime != nil {
			return []Window{{Start: *override.StartTime, End: *override.EndTime}}
		}
		return nil
	}

	windows := make([]Window, 0, len(recurring))
	for _, r := range recurring {
		windows = append(windows, Window{Start: r.StartTime, End: r.EndTime})
	}
	return windows
}

func pgTime(d shared_models.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

// GetOverrideForDate returns the override for a court/date, or nil when the
// date has none.
func GetOverrideForDate(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, date time.Time) (*DateOverride, error) {
	ov := &DateOverride{}
	var overrideType string
	var start, end pgtype.Time

	query := `
		SELECT id, court_id, date, override_type, start_time, end_time, reason, created_by, created_at
		FROM court_date_overrides
		WHERE court_id = $1 AND date = $2`

	err := q.QueryRow(ctx, query, courtID, date).Scan(
		&ov.ID, &ov.CourtID, &ov.Date, &overrideType, &start, &end,
		&ov.Reason, &ov.CreatedBy, &ov.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.ErrorLogger.Errorf("Failed to fetch date override for court %s on %s: %v",
			courtID, date.Format("2006-01-02"), err)
		return nil, fmt.Errorf("database error fetching date override: %w", err)
	}

	ov.OverrideType, err = shared_models.ParseOverrideType(overrideType)
	if err != nil {
		return nil, fmt.Errorf("corrupt override row %s: %w", ov.ID, err)
	}
	if start.Valid {
		t := shared_models.TimeOfDayFromMicroseconds(start.Microseconds)
		ov.StartTime = &t
	}
	if end.Valid {
		t := shared_models.TimeOfDayFromMicroseconds(end.Microseconds)
		ov.EndTime = &t
	}
	return ov, nil
}

// GetRecurringForDay returns the active recurring windows for a court/day.
func GetRecurringForDay(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, dayOfWeek int16) ([]RecurringAvailability, error) {
	query := `
		SELECT id, court_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM court_recurring_availability
		WHERE court_id = $1 AND day_of_week = $2 AND is_active = TRUE
		ORDER BY start_time`

	rows, err := q.Query(ctx, query, courtID, dayOfWeek)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch recurring availability for court %s day %d: %v", courtID, dayOfWeek, err)
		return nil, fmt.Errorf("database error fetching recurring availability: %w", err)
	}
	defer rows.Close()

	var out []RecurringAvailability
	for rows.Next() {
		var r RecurringAvailability
		var start, end pgtype.Time
		if err := rows.Scan(&r.ID, &r.CourtID, &r.DayOfWeek, &start, &end,
			&r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recurring availability: %w", err)
		}
		r.StartTime = shared_models.TimeOfDayFromMicroseconds(start.Microseconds)
		r.EndTime = shared_models.TimeOfDayFromMicroseconds(end.Microseconds)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResolveDayWindows is the availability resolver: open windows for a court
// on a date, overrides layered over the weekly template.
func ResolveDayWindows(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, date time.Time) ([]Window, error) {
	override, err := GetOverrideForDate(ctx, q, courtID, date)
	if err != nil {
		return nil, err
	}

	var recurring []RecurringAvailability
	if override == nil {
		recurring, err = GetRecurringForDay(ctx, q, courtID, shared_models.DayOfWeek(date))
		if err != nil {
			return nil, err
		}
	}
	return ResolveWindows(override, recurring), nil
}

// ReplaceRecurring sets the single recurring window for a court/day,
// deleting whatever was there before. Full-replace semantics per (court, day).
func ReplaceRecurring(ctx context.Context, db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}, courtID uuid.UUID, dayOfWeek int16, start, end shared_models.TimeOfDay) (*RecurringAvailability, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM court_recurring_availability
		WHERE court_id = $1 AND day_of_week = $2`, courtID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("failed to clear recurring availability: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	now := time.Now()
	r := &RecurringAvailability{
		ID: id, CourtID: courtID, DayOfWeek: dayOfWeek,
		StartTime: start, EndTime: end, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO court_recurring_availability
			(id, court_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.CourtID, r.DayOfWeek, pgTime(r.StartTime), pgTime(r.EndTime),
		r.IsActive, r.CreatedAt, r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert recurring availability: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recurring availability: %w", err)
	}

	logger.InfoLogger.Infof("Recurring availability replaced for court %s day %d: %s-%s",
		courtID, dayOfWeek, start, end)
	return r, nil
}

// UpsertDateOverride creates or replaces the override for a court/date.
// The unique (court_id, date) constraint makes duplicates unrepresentable.
func UpsertDateOverride(ctx context.Context, q shared_models.Querier, ov *DateOverride) (*DateOverride, error) {
	if ov.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID: %w", err)
		}
		ov.ID = id
	}
	if ov.CreatedAt.IsZero() {
		ov.CreatedAt = time.Now()
	}

	var start, end pgtype.Time
	if ov.StartTime != nil {
		start = pgTime(*ov.StartTime)
	}
	if ov.EndTime != nil {
		end = pgTime(*ov.EndTime)
	}

	query := `
		INSERT INTO court_date_overrides
			(id, court_id, date, override_type, start_time, end_time, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (court_id, date) DO UPDATE SET
			override_type = EXCLUDED.override_type,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			reason = EXCLUDED.reason,
			created_by = EXCLUDED.created_by
		RETURNING id`

	err := q.QueryRow(ctx, query,
		ov.ID, ov.CourtID, ov.Date, string(ov.OverrideType), start, end,
		ov.Reason, ov.CreatedBy, ov.CreatedAt,
	).Scan(&ov.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to upsert date override for court %s: %v", ov.CourtID, err)
		return nil, fmt.Errorf("failed to save date override: %w", err)
	}

	logger.InfoLogger.Infof("Date override %s saved for court %s on %s (%s)",
		ov.ID, ov.CourtID, ov.Date.Format("2006-01-02"), ov.OverrideType)
	return ov, nil
}
