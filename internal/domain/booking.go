package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Prices are stored as numeric(12, 2).
const PriceScale = 2

var MaxPrice = decimal.New(1, 10)

// IsValidPrice reports whether p is non-negative, below MaxPrice and has no more
// than PriceScale decimal places, so it is stored without rounding.
func IsValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThan(MaxPrice) && p.Equal(p.Truncate(PriceScale))
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch status := BookingStatus(s); status {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Holds reports whether a booking in this status keeps its seats.
func (s BookingStatus) Holds() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	default:
		return false
	}
}

type Booking struct {
	ID         uuid.UUID
	MovieID    uuid.UUID
	Date       time.Time
	Slot       Slot
	Seats      []SeatLabel
	Name       string
	Email      *string
	TotalPrice decimal.Decimal
	Status     BookingStatus
	CreatedAt  time.Time
}

func (b *Booking) Key() BookingKey {
	return NewBookingKey(b.MovieID, b.Date, b.Slot)
}

// BookingKey is the partition over which seat uniqueness is enforced.
type BookingKey struct {
	MovieID uuid.UUID
	Date    time.Time
	Slot    Slot
}

// NewBookingKey truncates date to its calendar day so keys built from
// different clocks compare equal.
func NewBookingKey(movieID uuid.UUID, date time.Time, slot Slot) BookingKey {
	return BookingKey{
		MovieID: movieID,
		Date:    CalendarDate(date),
		Slot:    slot,
	}
}

func (k BookingKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.MovieID, k.Date.Format(DateLayout), k.Slot)
}

// CalendarDate drops the time of day and location of t.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BookingRepository persists bookings. Insert must check the requested seats
// against the seats held for the booking's key and persist the booking as one
// indivisible step with respect to other inserts on the same key.
type BookingRepository interface {
	FindHeldSeats(ctx context.Context, key BookingKey) ([]SeatLabel, error)
	Insert(ctx context.Context, booking *Booking) error
	FindById(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindMostRecent(ctx context.Context) (*Booking, error)
	UpdateStatus(ctx context.Context, booking *Booking, status BookingStatus) error
	DeleteById(ctx context.Context, id uuid.UUID) error
}
