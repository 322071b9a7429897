package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/courtbook/courtbook/models/shared_models"
)

func TestErrorTaxonomy(t *testing.T) {
	validation := Validationf("bad input %d", 42)
	assert.True(t, IsValidation(validation))
	assert.Equal(t, "bad input 42", validation.Error())
	assert.False(t, IsConflict(validation))

	conflict := &ConflictError{Msg: "slot taken"}
	assert.True(t, IsConflict(conflict))
	assert.False(t, IsRetryableConflict(conflict))

	retryable := &ConflictError{Msg: "busy", Retryable: true}
	assert.True(t, IsConflict(retryable))
	assert.True(t, IsRetryableConflict(retryable))

	gap := &PricingGapError{CourtID: uuid.New(), At: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)}
	assert.True(t, IsPricingGap(gap))
	assert.Contains(t, gap.Error(), "2026-08-24 12:00")

	notFound := &NotFoundError{Resource: "booking"}
	assert.True(t, IsNotFound(notFound))
	assert.Equal(t, "booking not found", notFound.Error())

	gateway := &GatewayError{Op: "create order", Err: errors.New("timeout")}
	assert.True(t, IsGateway(gateway))
	assert.ErrorContains(t, gateway, "timeout")
}

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("admitting booking: %w", &ConflictError{Msg: "overlap"})
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsRetryableConflict(wrapped))

	inner := errors.New("connection refused")
	assert.True(t, errors.Is(&GatewayError{Op: "order", Err: inner}, inner))
}

func TestRoleChecks(t *testing.T) {
	assert.True(t, IsSuperAdmin(shared_models.RoleSuperAdmin))
	assert.False(t, IsSuperAdmin(shared_models.RoleManager))

	assert.True(t, CanManageCourts(shared_models.RoleSuperAdmin))
	assert.True(t, CanManageCourts(shared_models.RoleManager))
	assert.False(t, CanManageCourts(shared_models.RoleUser))

	assert.True(t, CanCancelBooking(shared_models.RoleManager))
	assert.False(t, CanCancelBooking(shared_models.RoleUser))
}
