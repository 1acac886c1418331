package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/booking"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/oapi-codegen/runtime/types"
)

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	created, err := app.bookings.Create(r.Context(), toBookingRequest(input))
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	logger.Info("booking admitted",
		"booking_id", created.ID,
		"movie_id", created.MovieID,
		"key", created.Key().String(),
		"seats", joinSeatLabels(created.Seats))

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/booking/%s", created.ID))

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(created), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMostRecentBooking(w http.ResponseWriter, r *http.Request) {
	found, err := app.bookings.MostRecent(r.Context())
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(found), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingById(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID) {
	found, err := app.bookings.Get(r.Context(), bookingId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(found), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateBookingStatus(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID) {
	logger := app.contextGetLogger(r)

	var input api.UpdateBookingStatusRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	status, err := domain.ParseBookingStatus(input.Status)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updated, err := app.bookings.UpdateStatus(r.Context(), bookingId, status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) {
			logger.Warn("rejected booking status transition", "booking_id", bookingId, "error", err)
		}

		app.bookingErrorResponse(w, r, err)
		return
	}

	logger.Info("booking status changed", "booking_id", bookingId, "status", updated.Status)

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(updated), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteBooking(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID) {
	err := app.bookings.Delete(r.Context(), bookingId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("booking deleted", "booking_id", bookingId)

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) GetHeldSeats(
	w http.ResponseWriter,
	r *http.Request,
	movieId uuid.UUID,
	params api.GetHeldSeatsParams) {

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	slot, err := domain.ParseSlot(params.Slot)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	key := domain.NewBookingKey(movieId, params.Date.Time, slot)

	seats, err := app.bookings.HeldSeats(r.Context(), key)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.HeldSeatsResponse{
		Movie: movieId,
		Date:  types.Date{Time: key.Date},
		Slot:  slot.String(),
		Seats: seatStrings(seats),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingRequest(input api.CreateBookingRequest) booking.Request {
	seats := make([]booking.SeatInput, len(input.Seats))
	for i, s := range input.Seats {
		seats[i] = booking.SeatInput{SeatNumber: s.SeatNumber}
	}

	return booking.Request{
		Movie:      input.Movie,
		Date:       input.Date,
		Seats:      seats,
		Slot:       booking.SlotInput{Label: input.Slot.Label},
		Name:       input.Name,
		Email:      input.Email,
		TotalPrice: input.TotalPrice,
		Status:     input.Status,
	}
}

func toBookingResponse(b *domain.Booking) api.BookingResponse {
	seats := make([]api.BookingSeat, len(b.Seats))
	for i, s := range b.Seats {
		seats[i] = api.BookingSeat{SeatNumber: s.String()}
	}

	return api.BookingResponse{
		Id:         b.ID,
		Movie:      b.MovieID,
		Date:       types.Date{Time: b.Date},
		Seats:      seats,
		Slot:       api.BookingSlot{Label: b.Slot.String()},
		Name:       b.Name,
		Email:      b.Email,
		TotalPrice: b.TotalPrice,
		Status:     api.BookingStatus(b.Status),
		CreatedAt:  b.CreatedAt,
	}
}
