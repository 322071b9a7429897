package court_models

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

// Court is the bookable unit. Min/max booking minutes bound admission
// duration; both are multiples of the slot granularity.
type Court struct {
	ID                uuid.UUID `json:"id"`
	VenueID           uuid.UUID `json:"venue_id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	MinBookingMinutes int       `json:"min_booking_minutes"`
	MaxBookingMinutes int       `json:"max_booking_minutes"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Venue is a physical location owning courts within an organization.
type Venue struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	City           *string   `json:"city"`
	State          *string   `json:"state"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidateDuration checks a requested range against the slot granularity and
// this court's booking bounds. Pure; the caller supplies a court row it has
// already locked when used inside the admission transaction.
func (c *Court) ValidateDuration(start, end time.Time) error {
	minutes := int(end.Sub(start).Minutes())
	if minutes <= 0 {
		return utils.Validationf("booking end must be after start")
	}
	if minutes%shared_models.SlotMinutes != 0 {
		return utils.Validationf("booking duration must be in %d-minute increments", shared_models.SlotMinutes)
	}
	if minutes < c.MinBookingMinutes {
		return utils.Validationf("minimum booking duration is %d minutes", c.MinBookingMinutes)
	}
	if minutes > c.MaxBookingMinutes {
		return utils.Validationf("maximum booking duration is %d minutes", c.MaxBookingMinutes)
	}
	return nil
}

const courtColumns = `c.id, c.venue_id, c.name, c.description, c.min_booking_minutes,
		       c.max_booking_minutes, c.is_active, c.created_at, c.updated_at`

func scanCourt(row pgx.Row) (*Court, error) {
	court := &Court{}
	err := row.Scan(
		&court.ID, &court.VenueID, &court.Name, &court.Description,
		&court.MinBookingMinutes, &court.MaxBookingMinutes,
		&court.IsActive, &court.CreatedAt, &court.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return court, nil
}

// GetCourtInOrganization fetches a court scoped to a tenant via its venue.
// Cross-tenant ids surface as not-found.
func GetCourtInOrganization(ctx context.Context, q shared_models.Querier, courtID, organizationID uuid.UUID) (*Court, error) {
	query := `
		SELECT ` + courtColumns + `
		FROM courts c
		JOIN venues v ON v.id = c.venue_id
		WHERE c.id = $1 AND v.organization_id = $2`

	court, err := scanCourt(q.QueryRow(ctx, query, courtID, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "court"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch court %s: %v", courtID, err)
		return nil, fmt.Errorf("database error fetching court: %w", err)
	}
	return court, nil
}

// LockCourtInOrganization is GetCourtInOrganization with an exclusive lock on
// the court row, so concurrent admission attempts for the same court
// serialize. Must run inside a transaction.
func LockCourtInOrganization(ctx context.Context, tx shared_models.Querier, courtID, organizationID uuid.UUID) (*Court, error) {
	query := `
		SELECT ` + courtColumns + `
		FROM courts c
		JOIN venues v ON v.id = c.venue_id
		WHERE c.id = $1 AND v.organization_id = $2
		FOR UPDATE OF c`

	court, err := scanCourt(tx.QueryRow(ctx, query, courtID, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "court"}
		}
		return nil, fmt.Errorf("database error locking court: %w", err)
	}
	return court, nil
}

// GetCourtByID fetches a court without tenant scoping. Used by the public
// availability endpoint, which may be queried pre-authentication.
func GetCourtByID(ctx context.Context, q shared_models.Querier, courtID uuid.UUID) (*Court, error) {
	query := `
		SELECT ` + courtColumns + `
		FROM courts c
		WHERE c.id = $1`

	court, err := scanCourt(q.QueryRow(ctx, query, courtID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "court"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch court %s: %v", courtID, err)
		return nil, fmt.Errorf("database error fetching court: %w", err)
	}
	return court, nil
}

// IsCourtManager reports whether the user is assigned to the court in
// court_managers. Super admins bypass this check at the call site.
func IsCourtManager(ctx context.Context, q shared_models.Querier, courtID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM court_managers
			WHERE court_id = $1 AND manager_id = $2
		)`
	if err := q.QueryRow(ctx, query, courtID, userID).Scan(&exists); err != nil {
		logger.ErrorLogger.Errorf("Failed to check manager access for court %s: %v", courtID, err)
		return false, fmt.Errorf("database error checking manager access: %w", err)
	}
	return exists, nil
}

// ListManagedCourts returns the courts a manager is assigned to.
func ListManagedCourts(ctx context.Context, q shared_models.Querier, managerID uuid.UUID) ([]Court, error) {
	query := `
		SELECT ` + courtColumns + `
		FROM courts c
		JOIN court_managers cm ON cm.court_id = c.id
		WHERE cm.manager_id = $1
		ORDER BY c.name`

	rows, err := q.Query(ctx, query, managerID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list managed courts for %s: %v", managerID, err)
		return nil, fmt.Errorf("database error listing managed courts: %w", err)
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		court, err := scanCourt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, *court)
	}
	return courts, rows.Err()
}

// ListCourtsForVenue returns active courts of a venue, tenant-scoped.
func ListCourtsForVenue(ctx context.Context, q shared_models.Querier, venueID, organizationID uuid.UUID) ([]Court, error) {
	query := `
		SELECT ` + courtColumns + `
		FROM courts c
		JOIN venues v ON v.id = c.venue_id
		WHERE c.venue_id = $1 AND v.organization_id = $2 AND c.is_active = TRUE
		ORDER BY c.name`

	rows, err := q.Query(ctx, query, venueID, organizationID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list courts for venue %s: %v", venueID, err)
		return nil, fmt.Errorf("database error listing courts: %w", err)
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		court, err := scanCourt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, *court)
	}
	return courts, rows.Err()
}

// GetVenueByID fetches a venue row.
func GetVenueByID(ctx context.Context, q shared_models.Querier, venueID uuid.UUID) (*Venue, error) {
	venue := &Venue{}
	query := `
		SELECT id, organization_id, name, city, state, is_active, created_at, updated_at
		FROM venues
		WHERE id = $1`

	err := q.QueryRow(ctx, query, venueID).Scan(
		&venue.ID, &venue.OrganizationID, &venue.Name, &venue.City, &venue.State,
		&venue.IsActive, &venue.CreatedAt, &venue.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "venue"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch venue %s: %v", venueID, err)
		return nil, fmt.Errorf("database error fetching venue: %w", err)
	}
	return venue, nil
}
