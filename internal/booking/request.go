package booking

import (
	"strings"

	"github.com/shopspring/decimal"
)

type SeatInput struct {
	SeatNumber string `json:"seatNumber" validate:"required,seat"`
}

type SlotInput struct {
	Label string `json:"label" validate:"required,slot"`
}

// Request is a booking request as submitted by a client, before validation.
type Request struct {
	Movie      string           `json:"movie" validate:"required,uuid"`
	Date       string           `json:"date" validate:"required,datetime=2006-01-02"`
	Seats      []SeatInput      `json:"seats" validate:"required,min=1,dive"`
	Slot       SlotInput        `json:"slot"`
	Name       string           `json:"name" validate:"required,max=200"`
	Email      *string          `json:"email" validate:"omitempty,email"`
	TotalPrice *decimal.Decimal `json:"totalPrice" validate:"required,nonneg,price"`
	Status     *string          `json:"status" validate:"omitempty,booking_status"`
}

func (r *Request) normalize() {
	r.Name = strings.TrimSpace(r.Name)

	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		if email == "" {
			r.Email = nil
		} else {
			r.Email = &email
		}
	}
}
