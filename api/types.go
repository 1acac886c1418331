package api

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices are written as JSON numbers, matching the schema in api.yaml.
	decimal.MarshalJSONWithoutQuotes = true
}

// BookingStatus defines model for BookingStatus.
type BookingStatus string

const (
	Cancelled BookingStatus = "cancelled"
	Confirmed BookingStatus = "confirmed"
	Pending   BookingStatus = "pending"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidationError defines model for ValidationError.
type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationErrorResponse defines model for ValidationErrorResponse.
type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// SeatConflictResponse defines model for SeatConflictResponse.
type SeatConflictResponse struct {
	Message   string    `json:"message"`
	Seats     []string  `json:"seats"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

// SystemInfo defines model for SystemInfo.
type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// HealthcheckResponse defines model for HealthcheckResponse.
type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

// BookingSeat defines model for BookingSeat.
type BookingSeat struct {
	SeatNumber string `json:"seatNumber"`
}

// BookingSlot defines model for BookingSlot.
type BookingSlot struct {
	Label string `json:"label"`
}

// CreateBookingRequest defines model for CreateBookingRequest.
type CreateBookingRequest struct {
	Date       string           `json:"date"`
	Email      *string          `json:"email,omitempty"`
	Movie      string           `json:"movie"`
	Name       string           `json:"name"`
	Seats      []BookingSeat    `json:"seats"`
	Slot       BookingSlot      `json:"slot"`
	Status     *string          `json:"status,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
}

// BookingResponse defines model for BookingResponse.
type BookingResponse struct {
	CreatedAt  time.Time          `json:"createdAt"`
	Date       openapi_types.Date `json:"date"`
	Email      *string            `json:"email,omitempty"`
	Id         uuid.UUID          `json:"id"`
	Movie      uuid.UUID          `json:"movie"`
	Name       string             `json:"name"`
	Seats      []BookingSeat      `json:"seats"`
	Slot       BookingSlot        `json:"slot"`
	Status     BookingStatus      `json:"status"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
}

// UpdateBookingStatusRequest defines model for UpdateBookingStatusRequest.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,booking_status"`
}

// HeldSeatsResponse defines model for HeldSeatsResponse.
type HeldSeatsResponse struct {
	Date  openapi_types.Date `json:"date"`
	Movie uuid.UUID          `json:"movie"`
	Seats []string           `json:"seats"`
	Slot  string             `json:"slot"`
}

// GetHeldSeatsParams defines parameters for GetHeldSeats.
type GetHeldSeatsParams struct {
	Date openapi_types.Date `form:"date" json:"date"`
	Slot string             `form:"slot" json:"slot" validate:"required,slot"`
}

// CreateMovieRequest defines model for CreateMovieRequest.
type CreateMovieRequest struct {
	Cast        []string           `json:"cast" validate:"required,min=1,dive,required"`
	Description string             `json:"description" validate:"required"`
	Director    string             `json:"director" validate:"required"`
	Duration    int                `json:"duration" validate:"required,min=1"`
	Featured    *bool              `json:"featured,omitempty"`
	Genre       []string           `json:"genre" validate:"required,min=1,dive,required"`
	PosterUrl   string             `json:"posterUrl" validate:"required,url"`
	ReleaseDate openapi_types.Date `json:"releaseDate" validate:"required,past_date"`
	Title       string             `json:"title" validate:"required,max=500"`
}

// UpdateMovieRequest defines model for UpdateMovieRequest.
type UpdateMovieRequest struct {
	Cast        []string            `json:"cast,omitempty" validate:"omitempty,min=1,dive,required"`
	Description *string             `json:"description,omitempty" validate:"omitempty,min=1"`
	Director    *string             `json:"director,omitempty" validate:"omitempty,min=1"`
	Duration    *int                `json:"duration,omitempty" validate:"omitempty,min=1"`
	Featured    *bool               `json:"featured,omitempty"`
	Genre       []string            `json:"genre,omitempty" validate:"omitempty,min=1,dive,required"`
	PosterUrl   *string             `json:"posterUrl,omitempty" validate:"omitempty,url"`
	ReleaseDate *openapi_types.Date `json:"releaseDate,omitempty" validate:"omitempty,past_date"`
	Title       *string             `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
}

// MovieResponse defines model for MovieResponse.
type MovieResponse struct {
	Admin       *uuid.UUID         `json:"admin,omitempty"`
	Cast        []string           `json:"cast"`
	Description string             `json:"description"`
	Director    string             `json:"director"`
	Duration    int                `json:"duration"`
	Featured    bool               `json:"featured"`
	Genre       []string           `json:"genre"`
	Id          uuid.UUID          `json:"id"`
	PosterUrl   string             `json:"posterUrl"`
	ReleaseDate openapi_types.Date `json:"releaseDate"`
	Title       string             `json:"title"`
	Version     int                `json:"version"`
}

// MovieListResponse defines model for MovieListResponse.
type MovieListResponse struct {
	Movies []MovieResponse `json:"movies"`
}

// AdminCredentials defines model for AdminCredentials.
type AdminCredentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AdminResponse defines model for AdminResponse.
type AdminResponse struct {
	AddedMovies []uuid.UUID `json:"addedMovies"`
	CreatedAt   time.Time   `json:"createdAt"`
	Email       string      `json:"email"`
	Id          uuid.UUID   `json:"id"`
}

// AdminListResponse defines model for AdminListResponse.
type AdminListResponse struct {
	Admins []AdminResponse `json:"admins"`
}

// LoginResponse defines model for LoginResponse.
type LoginResponse struct {
	AdminId   uuid.UUID `json:"adminId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
}
