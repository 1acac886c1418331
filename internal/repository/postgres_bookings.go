package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-api/internal/domain"
)

const (
	defaultAdmitTries = 3
	heldSeatsPKey     = "held_seats_pkey"
)

type PostgresBookingRepository struct {
	db       *pgxpool.Pool
	maxTries uint
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db:       db,
		maxTries: defaultAdmitTries,
	}
}

func (p *PostgresBookingRepository) FindHeldSeats(ctx context.Context, key domain.BookingKey) ([]domain.SeatLabel, error) {
	query := `
		SELECT seat_label
		FROM held_seats
		WHERE movie_id = $1 AND show_date = $2 AND slot = $3
		ORDER BY seat_label
	`

	rows, err := p.db.Query(ctx, query, key.MovieID, key.Date, key.Slot.String())
	if err != nil {
		return nil, classify(err)
	}

	labels, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify(err)
	}

	return seatLabels(labels), nil
}

// Insert admits the booking. The key is serialized with a transaction scoped
// advisory lock, so the held seat check and the inserts below cannot
// interleave with another admission on the same movie, date and slot.
// Serialization failures, deadlocks and a lost race on the held_seats primary
// key are retried; the retry re-reads the held seats and reports the conflict.
func (p *PostgresBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	operation := func() (struct{}, error) {
		err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
			return p.admit(ctx, tx, booking)
		})
		if err != nil && !isRetryableAdmission(err) {
			return struct{}{}, backoff.Permanent(err)
		}

		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(newAdmitBackOff()),
		backoff.WithMaxTries(p.maxTries),
	)

	return classify(err)
}

func (p *PostgresBookingRepository) admit(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	key := booking.Key()

	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String())
	if err != nil {
		return err
	}

	// Shared lock on the movie row keeps a concurrent delete out until commit.
	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM movies WHERE id = $1 FOR SHARE`, key.MovieID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMovieNotFound
		}

		return err
	}

	requested := seatStrings(booking.Seats)

	query := `
		SELECT seat_label
		FROM held_seats
		WHERE movie_id = $1 AND show_date = $2 AND slot = $3 AND seat_label = ANY($4)
	`

	rows, err := tx.Query(ctx, query, key.MovieID, key.Date, key.Slot.String(), requested)
	if err != nil {
		return err
	}

	taken, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}

	if len(taken) > 0 {
		held := make(map[domain.SeatLabel]struct{}, len(taken))
		for _, label := range taken {
			held[domain.SeatLabel(label)] = struct{}{}
		}

		return &domain.SeatConflictError{Seats: domain.ConflictingSeats(booking.Seats, held)}
	}

	query = `
		INSERT INTO bookings (id, movie_id, show_date, slot, seats, name, email, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err = tx.QueryRow(ctx, query,
		booking.ID,
		key.MovieID,
		key.Date,
		key.Slot.String(),
		requested,
		booking.Name,
		booking.Email,
		toNumeric(booking.TotalPrice),
		string(booking.Status),
	).Scan(&booking.CreatedAt)
	if err != nil {
		return err
	}

	if !booking.Status.Holds() {
		return nil
	}

	rowsToCopy := make([][]any, 0, len(requested))
	for _, seat := range requested {
		rowsToCopy = append(rowsToCopy, []any{key.MovieID, key.Date, key.Slot.String(), seat, booking.ID})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"held_seats"},
		[]string{"movie_id", "show_date", "slot", "seat_label", "booking_id"},
		pgx.CopyFromRows(rowsToCopy),
	)

	return err
}

func isRetryableAdmission(err error) bool {
	code, constraint := pgErrorCode(err)

	switch code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	case pgerrcode.UniqueViolation:
		return constraint == heldSeatsPKey
	default:
		return false
	}
}

func newAdmitBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	return b
}

const bookingColumns = `id, movie_id, show_date, slot, seats, name, email, total_price, status, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		booking domain.Booking
		slot    string
		status  string
		seats   []string
		price   pgtype.Numeric
	)

	err := row.Scan(
		&booking.ID,
		&booking.MovieID,
		&booking.Date,
		&slot,
		&seats,
		&booking.Name,
		&booking.Email,
		&price,
		&status,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, classify(err)
	}

	booking.Slot = domain.Slot(slot)
	booking.Status = domain.BookingStatus(status)
	booking.Seats = seatLabels(seats)
	booking.TotalPrice = fromNumeric(price)

	return &booking, nil
}

func (p *PostgresBookingRepository) FindById(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	return scanBooking(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresBookingRepository) FindMostRecent(ctx context.Context) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY seq DESC LIMIT 1`

	return scanBooking(p.db.QueryRow(ctx, query))
}

// UpdateStatus moves the booking to status only if it is still in the status the
// caller read. Leaving a seat holding status releases the held seats.
func (p *PostgresBookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking, status domain.BookingStatus) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = $1
			WHERE id = $2 AND status = $3
		`

		tag, err := tx.Exec(ctx, query, string(status), booking.ID, string(booking.Status))
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrEditConflict
		}

		if status.Holds() {
			return nil
		}

		_, err = tx.Exec(ctx, `DELETE FROM held_seats WHERE booking_id = $1`, booking.ID)

		return err
	})
	if err != nil {
		return classify(err)
	}

	booking.Status = status

	return nil
}

func (p *PostgresBookingRepository) DeleteById(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
