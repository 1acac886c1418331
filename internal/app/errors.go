package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	appvalidator "github.com/metinatakli/movie-booking-api/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrMethodNotAllowed   = "The method is not supported for this resource"
	ErrBadRequest         = "The request could not be processed"
	ErrValidationFailed   = "One or more fields are invalid"
	ErrInvalidCredentials = "Invalid authentication credentials"
	ErrUnauthorized       = "You must be authenticated as an admin to access this resource"
	ErrEditConflict       = "Unable to update the record due to an edit conflict, please try again"
	ErrSeatConflict       = "One or more seats are already taken for this movie, date and slot"
	ErrMovieNotFound      = "The requested movie not found"
	ErrActiveBookings     = "The movie has pending or confirmed bookings and cannot be deleted"
	ErrUnavailable        = "The service is temporarily unavailable, please try again"
)

// statusClientClosedRequest is recorded when the client gave up before the
// response was ready. Nothing reads the body.
const statusClientClosedRequest = 499

// retryAfterSeconds is advertised on 503 responses. Admissions never leave
// partial state behind, so the whole request is safe to repeat.
const retryAfterSeconds = "1"

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.errorResponseWithHeaders(w, r, status, message, nil)
}

func (app *Application) errorResponseWithHeaders(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	headers http.Header) {

	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, headers)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}

// badRequestResponse echoes err to the client except in production, where the
// details stay in the logs.
func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	message := err.Error()

	if app.config.IsProduction() {
		app.contextGetLogger(r).Warn("bad request", "error", err)
		message = ErrBadRequest
	}

	app.errorResponse(w, r, http.StatusBadRequest, message)
}

// paramErrorResponse reports path and query parameters that could not be bound.
func (app *Application) paramErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var requiredErr *api.RequiredParamError
	if errors.As(err, &requiredErr) {
		app.validationErrorResponse(w, r, []domain.Violation{{
			Field: requiredErr.ParamName,
			Issue: "is required",
		}})
		return
	}

	var paramErr *api.InvalidParamFormatError
	if errors.As(err, &paramErr) {
		app.validationErrorResponse(w, r, []domain.Violation{{
			Field: paramErr.ParamName,
			Issue: "is missing or has an invalid format",
		}})
		return
	}

	app.badRequestResponse(w, r, err)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	violations, err := appvalidator.Violations(err)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.validationErrorResponse(w, r, violations)
}

func (app *Application) validationErrorResponse(w http.ResponseWriter, r *http.Request, violations []domain.Violation) {
	validationErrors := make([]api.ValidationError, len(violations))
	for i, v := range violations {
		validationErrors[i] = api.ValidationError{
			Field: v.Field,
			Issue: v.Issue,
		}
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrValidationFailed,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: validationErrors,
	}

	err := app.writeJSON(w, http.StatusBadRequest, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, seats []domain.SeatLabel) {
	resp := api.SeatConflictResponse{
		Message:   ErrSeatConflict,
		Seats:     seatStrings(seats),
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, http.StatusConflict, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) storageUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	headers := http.Header{}
	headers.Set("Retry-After", retryAfterSeconds)

	app.errorResponseWithHeaders(w, r, http.StatusServiceUnavailable, ErrUnavailable, headers)
}

func (app *Application) requestCanceledResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.contextGetLogger(r).Warn("request canceled by client", "error", err)

	w.WriteHeader(statusClientClosedRequest)
}

func (app *Application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, ErrEditConflict)
}

func (app *Application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrInvalidCredentials)
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")

	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorized)
}

// storageErrorResponse maps the failures shared by every store call. It
// reports whether it wrote a response.
func (app *Application) storageErrorResponse(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case errors.Is(err, domain.ErrRequestCanceled), errors.Is(err, context.Canceled):
		app.requestCanceledResponse(w, r, err)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrStorageTimeout), errors.Is(err, domain.ErrStorageUnavailable):
		app.storageUnavailableResponse(w, r, err)
	default:
		return false
	}

	return true
}

// bookingErrorResponse maps every error kind of the booking service to its response.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger := app.contextGetLogger(r)

	var (
		validationErr *domain.ValidationError
		duplicateErr  *domain.DuplicateSeatError
		conflictErr   *domain.SeatConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		app.validationErrorResponse(w, r, validationErr.Violations)
	case errors.As(err, &duplicateErr):
		app.validationErrorResponse(w, r, []domain.Violation{{
			Field: "seats",
			Issue: fmt.Sprintf("must not repeat seat(s) %s", joinSeatLabels(duplicateErr.Seats)),
		}})
	case errors.As(err, &conflictErr):
		logger.Warn("seat conflict", "seats", joinSeatLabels(conflictErr.Seats))
		app.seatConflictResponse(w, r, conflictErr.Seats)
	case errors.Is(err, domain.ErrMovieNotFound):
		logger.Warn("booking for unknown movie")
		app.errorResponse(w, r, http.StatusNotFound, ErrMovieNotFound)
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		app.errorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEditConflict):
		app.editConflictResponse(w, r)
	default:
		if !app.storageErrorResponse(w, r, err) {
			app.serverErrorResponse(w, r, err)
		}
	}
}
