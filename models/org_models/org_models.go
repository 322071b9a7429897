package org_models

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

// Organization is a tenant. Every venue, court, pricing rule and booking is
// scoped by its id; the slug doubles as the tenant subdomain.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetOrganizationBySlug resolves a tenant from its subdomain slug.
func GetOrganizationBySlug(ctx context.Context, q shared_models.Querier, slug string) (*Organization, error) {
	org := &Organization{}
	query := `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM organizations
		WHERE slug = $1 AND is_active = TRUE`

	err := q.QueryRow(ctx, query, slug).Scan(
		&org.ID, &org.Name, &org.Slug, &org.IsActive, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "organization"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch organization by slug %s: %v", slug, err)
		return nil, fmt.Errorf("database error fetching organization: %w", err)
	}
	return org, nil
}

// GetOrganizationByID fetches a tenant by id.
func GetOrganizationByID(ctx context.Context, q shared_models.Querier, id uuid.UUID) (*Organization, error) {
	org := &Organization{}
	query := `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1`

	err := q.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Slug, &org.IsActive, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "organization"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch organization %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching organization: %w", err)
	}
	return org, nil
}
