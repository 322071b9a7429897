package user_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// User is a system account. Identity issuance lives outside this service;
// this model exists so the auth middleware can validate tokens against a
// live row and so bookings/invoices can name their owner.
type User struct {
	ID             uuid.UUID          `json:"id"`
	OrganizationID *uuid.UUID         `json:"organization_id"`
	Email          string             `json:"email"`
	PasswordHash   *string            `json:"-"`
	FirstName      string             `json:"first_name"`
	LastName       *string            `json:"last_name"`
	Phone          *string            `json:"phone"`
	Role           shared_models.Role `json:"role"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// FullName joins first and last name for display on invoices and emails.
func (u *User) FullName() string {
	if u.LastName != nil && *u.LastName != "" {
		return u.FirstName + " " + *u.LastName
	}
	return u.FirstName
}

// CheckPassword compares a plaintext password against the stored bcrypt
// hash. A user without a hash (externally provisioned) never matches.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) == nil
}

// GetUserByID fetches an active user row.
func GetUserByID(ctx context.Context, q shared_models.Querier, id uuid.UUID) (*User, error) {
	user := &User{}
	var role string
	query := `
		SELECT id, organization_id, email, password_hash, first_name, last_name,
		       phone, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := q.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Phone, &role,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "user"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	user.Role, err = shared_models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail fetches a user for credential checks. Emails are unique
// across the system.
func GetUserByEmail(ctx context.Context, q shared_models.Querier, email string) (*User, error) {
	user := &User{}
	var role string
	query := `
		SELECT id, organization_id, email, password_hash, first_name, last_name,
		       phone, role, is_active, created_at, updated_at
		FROM users
		WHERE email = $1`

	err := q.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Phone, &role,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.NotFoundError{Resource: "user"}
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	user.Role, err = shared_models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", user.ID, err)
	}
	return user, nil
}
