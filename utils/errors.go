package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError is a client-correctable request problem. Not retryable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError means the requested time range could not be admitted.
// Retryable distinguishes lock-wait timeouts (the caller may try again)
// from a definitive "slot already booked" rejection.
type ConflictError struct {
	Msg       string
	Retryable bool
}

func (e *ConflictError) Error() string { return e.Msg }

// PricingGapError means no active pricing rule covers part of the requested
// range. A configuration problem for the tenant's manager, never transient.
type PricingGapError struct {
	CourtID uuid.UUID
	At      time.Time
}

func (e *PricingGapError) Error() string {
	return fmt.Sprintf("no pricing rule for court %s at %s", e.CourtID, e.At.Format("2006-01-02 15:04"))
}

// NotFoundError covers both genuinely missing rows and rows outside the
// caller's tenant scope, so cross-tenant existence never leaks.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// GatewayError wraps a payment-provider communication failure.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsRetryableConflict reports a conflict the client may simply retry.
func IsRetryableConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c) && c.Retryable
}

func IsPricingGap(err error) bool {
	var p *PricingGapError
	return errors.As(err, &p)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsGateway(err error) bool {
	var g *GatewayError
	return errors.As(err, &g)
}
