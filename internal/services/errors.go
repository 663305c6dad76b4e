package services

import (
	"errors"
	"fmt"
	"strings"

	"rental-backend/internal/models"
)

// Error taxonomy for the booking core. Handlers map these onto HTTP statuses;
// nothing here is retried internally.

// ValidationError carries one message per violated field, not just the first.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// NotFoundError reports an unresolved vehicle or booking id.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// ConflictError reports an overlap detected at commit time. The caller owns
// retry policy; the scheduler never retries.
type ConflictError struct {
	VehicleID string
	Window    models.TimeWindow
}

func (e *ConflictError) Error() string {
	return "vehicle is already booked for the selected time period"
}

// InvalidTransitionError reports a status change the lifecycle disallows.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// ErrNotBookingOwner is returned when the requester does not own the booking.
var ErrNotBookingOwner = errors.New("not authorized to modify this booking")

// ErrVehicleInUse blocks deleting a vehicle that still has active bookings.
var ErrVehicleInUse = errors.New("vehicle has active bookings")
