package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/metinatakli/movie-booking-api/internal/mailer"
	appvalidator "github.com/metinatakli/movie-booking-api/internal/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultTimeout = 3 * time.Second

	instrumentationName = "github.com/metinatakli/movie-booking-api/internal/booking"
	receiptTemplate     = "booking_receipt.tmpl"
)

// Service admits bookings and manages their lifecycle. It holds no mutable state
// shared between requests apart from the stores behind it.
type Service struct {
	catalog   domain.MovieRepository
	bookings  domain.BookingRepository
	validator *validator.Validate
	mailer    mailer.Mailer
	logger    *slog.Logger
	timeout   time.Duration

	admissions metric.Int64Counter
	receipts   sync.WaitGroup
}

func NewService(
	catalog domain.MovieRepository,
	bookings domain.BookingRepository,
	validator *validator.Validate,
	mailer mailer.Mailer,
	logger *slog.Logger,
	timeout time.Duration) *Service {

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	admissions, err := otel.Meter(instrumentationName).Int64Counter(
		"booking.admissions",
		metric.WithDescription("Booking admission attempts by outcome"),
	)
	if err != nil {
		logger.Error("failed to create admissions counter", "error", err)
	}

	return &Service{
		catalog:    catalog,
		bookings:   bookings,
		validator:  validator,
		mailer:     mailer,
		logger:     logger,
		timeout:    timeout,
		admissions: admissions,
	}
}

// Create validates req, confirms the movie exists and admits the booking. The
// held seat check and the insert are a single store operation, so of two
// concurrent requests for an overlapping seat on the same key only one succeeds.
func (s *Service) Create(ctx context.Context, req Request) (*domain.Booking, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "booking.Create")
	defer span.End()

	booking, err := s.create(ctx, req)

	outcome := admissionOutcome(err)
	if s.admissions != nil {
		s.admissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}

	span.SetAttributes(attribute.String("booking.outcome", outcome))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.id", booking.ID.String()))

	return booking, nil
}

func (s *Service) create(ctx context.Context, req Request) (*domain.Booking, error) {
	booking, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	movie, err := s.resolveMovie(ctx, booking.MovieID)
	if err != nil {
		return nil, err
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.bookings.Insert(insertCtx, booking)
	if err != nil {
		return nil, storageError(err)
	}

	if booking.Email != nil {
		s.sendReceipt(ctx, booking, movie)
	}

	return booking, nil
}

// parse turns a request into a booking without touching storage. Field
// violations take precedence over duplicate seats.
func (s *Service) parse(req Request) (*domain.Booking, error) {
	req.normalize()

	err := s.validator.Struct(req)
	if err != nil {
		violations, err := appvalidator.Violations(err)
		if err != nil {
			return nil, err
		}

		return nil, &domain.ValidationError{Violations: violations}
	}

	movieID, err := uuid.Parse(req.Movie)
	if err != nil {
		return nil, invalidField("movie", "must be a valid identifier")
	}

	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		return nil, invalidField("date", "must be a date in YYYY-MM-DD format")
	}

	slot, err := domain.ParseSlot(req.Slot.Label)
	if err != nil {
		return nil, invalidField("slot.label", err.Error())
	}

	seats := make([]domain.SeatLabel, len(req.Seats))
	for i, in := range req.Seats {
		seat, err := domain.ParseSeat(in.SeatNumber)
		if err != nil {
			return nil, invalidField(fmt.Sprintf("seats[%d].seatNumber", i), err.Error())
		}
		seats[i] = seat
	}

	if duplicates := domain.DuplicateSeats(seats); len(duplicates) > 0 {
		return nil, &domain.DuplicateSeatError{Seats: duplicates}
	}

	status := domain.BookingPending
	if req.Status != nil {
		status, err = domain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, invalidField("status", err.Error())
		}
	}

	return &domain.Booking{
		MovieID:    movieID,
		Date:       domain.CalendarDate(date),
		Slot:       slot,
		Seats:      seats,
		Name:       req.Name,
		Email:      req.Email,
		TotalPrice: *req.TotalPrice,
		Status:     status,
	}, nil
}

func invalidField(field, issue string) error {
	return &domain.ValidationError{Violations: []domain.Violation{{Field: field, Issue: issue}}}
}

// resolveMovie is the catalog lookup that must succeed before any seat is reserved.
func (s *Service) resolveMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	movie, err := s.catalog.GetById(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrMovieNotFound
		}

		return nil, storageError(err)
	}

	return movie, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.bookings.FindById(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}

	return booking, nil
}

func (s *Service) MostRecent(ctx context.Context) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.bookings.FindMostRecent(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	return booking, nil
}

// HeldSeats lists the seats taken for the key, failing with ErrMovieNotFound for
// an unknown movie.
func (s *Service) HeldSeats(ctx context.Context, key domain.BookingKey) ([]domain.SeatLabel, error) {
	if _, err := s.resolveMovie(ctx, key.MovieID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	seats, err := s.bookings.FindHeldSeats(ctx, key)
	if err != nil {
		return nil, storageError(err)
	}

	return seats, nil
}

// UpdateStatus applies a lifecycle transition. Cancelling releases the seats.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.bookings.FindById(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}

	if !booking.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, booking.Status, status)
	}

	err = s.bookings.UpdateStatus(ctx, booking, status)
	if err != nil {
		return nil, storageError(err)
	}

	return booking, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return storageError(s.bookings.DeleteById(ctx, id))
}

// Wait blocks until every receipt mail in flight has been handed to the mailer.
func (s *Service) Wait() {
	s.receipts.Wait()
}

func (s *Service) sendReceipt(ctx context.Context, booking *domain.Booking, movie *domain.Movie) {
	if s.mailer == nil {
		return
	}

	recipient := *booking.Email
	data := map[string]any{
		"bookingID":  booking.ID.String(),
		"name":       booking.Name,
		"movieTitle": movie.Title,
		"date":       booking.Date.Format(domain.DateLayout),
		"slot":       booking.Slot.String(),
		"seats":      seatStrings(booking.Seats),
		"totalPrice": booking.TotalPrice.StringFixed(2),
		"status":     string(booking.Status),
	}

	// The mail outlives the request, so only the trace context is carried over.
	mailCtx := context.WithoutCancel(ctx)

	s.receipts.Add(1)
	go func() {
		defer s.receipts.Done()

		logger := s.logger.With("booking_id", data["bookingID"])

		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(mailCtx, "panic occurred during sending booking receipt", "panic", err)
			}
		}()

		err := s.mailer.Send(recipient, receiptTemplate, data)
		if err != nil {
			logger.ErrorContext(mailCtx, "failed to send booking receipt", "error", err)
			return
		}

		logger.InfoContext(mailCtx, "booking receipt sent")
	}()
}

func seatStrings(seats []domain.SeatLabel) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.String()
	}

	return out
}

// storageError turns an expired deadline into the retryable ErrStorageTimeout
// and a caller that went away into ErrRequestCanceled.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", domain.ErrRequestCanceled, err)
	case errors.Is(err, domain.ErrStorageTimeout), errors.Is(err, domain.ErrStorageUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrStorageTimeout, err)
	default:
		return err
	}
}

func admissionOutcome(err error) string {
	var (
		validationErr *domain.ValidationError
		duplicateErr  *domain.DuplicateSeatError
		conflictErr   *domain.SeatConflictError
	)

	switch {
	case err == nil:
		return "admitted"
	case errors.As(err, &validationErr), errors.As(err, &duplicateErr):
		return "invalid"
	case errors.As(err, &conflictErr):
		return "conflict"
	case errors.Is(err, domain.ErrMovieNotFound):
		return "movie_not_found"
	case errors.Is(err, domain.ErrStorageTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrRequestCanceled):
		return "canceled"
	default:
		return "error"
	}
}
