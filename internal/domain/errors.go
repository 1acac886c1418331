package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound          = errors.New("record not found")
	ErrEditConflict            = errors.New("edit conflict")
	ErrAdminAlreadyExists      = errors.New("admin already exists")
	ErrMovieNotFound           = errors.New("movie not found")
	ErrInvalidSeatFormat       = errors.New("seat label must be an uppercase letter followed by one or two digits")
	ErrInvalidSlot             = errors.New("slot must be one of morning, noon, evening, night")
	ErrInvalidStatus           = errors.New("status must be one of pending, confirmed, cancelled")
	ErrInvalidStatusTransition = errors.New("booking status transition is not allowed")
	ErrMovieHasActiveBookings  = errors.New("movie has active bookings")
	ErrStorageTimeout          = errors.New("storage operation timed out")
	ErrStorageUnavailable      = errors.New("storage is unavailable")
	ErrRequestCanceled         = errors.New("request canceled")
)

// Violation describes a single invalid field of a request.
type Violation struct {
	Field string
	Issue string
}

// ValidationError carries every violation found in a request.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	issues := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		issues[i] = fmt.Sprintf("%s %s", v.Field, v.Issue)
	}

	return "validation failed: " + strings.Join(issues, "; ")
}

// DuplicateSeatError is returned when a request names the same seat more than once.
type DuplicateSeatError struct {
	Seats []SeatLabel
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("duplicate seats in request: %s", joinSeats(e.Seats))
}

// SeatConflictError reports the requested seats already held by another booking
// for the same movie, date and slot.
type SeatConflictError struct {
	Seats []SeatLabel
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already taken: %s", joinSeats(e.Seats))
}

func joinSeats(seats []SeatLabel) string {
	labels := make([]string, len(seats))
	for i, s := range seats {
		labels[i] = s.String()
	}

	return strings.Join(labels, ", ")
}
