package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/internal/domain"
)

type bookingRecord struct {
	booking domain.Booking
	seq     uint64
}

// MemoryBookingRepository serializes admissions per booking key with a one slot
// semaphore, so waiting for the key honours the caller's context deadline.
type MemoryBookingRepository struct {
	catalog *MemoryMovieRepository

	locksMu sync.Mutex
	locks   map[domain.BookingKey]chan struct{}

	mu      sync.RWMutex
	seq     uint64
	records map[uuid.UUID]*bookingRecord
	held    map[domain.BookingKey]map[domain.SeatLabel]uuid.UUID
}

func NewMemoryBookingRepository(catalog *MemoryMovieRepository) *MemoryBookingRepository {
	r := &MemoryBookingRepository{
		catalog: catalog,
		locks:   make(map[domain.BookingKey]chan struct{}),
		records: make(map[uuid.UUID]*bookingRecord),
		held:    make(map[domain.BookingKey]map[domain.SeatLabel]uuid.UUID),
	}

	catalog.mu.Lock()
	catalog.bookings = r
	catalog.mu.Unlock()

	return r
}

func cloneBooking(b domain.Booking) *domain.Booking {
	b.Seats = slices.Clone(b.Seats)
	if b.Email != nil {
		email := *b.Email
		b.Email = &email
	}

	return &b
}

func (r *MemoryBookingRepository) keyLock(key domain.BookingKey) chan struct{} {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	lock, ok := r.locks[key]
	if !ok {
		lock = make(chan struct{}, 1)
		r.locks[key] = lock
	}

	return lock
}

func (r *MemoryBookingRepository) FindHeldSeats(ctx context.Context, key domain.BookingKey) ([]domain.SeatLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	held := r.held[key]
	labels := make([]domain.SeatLabel, 0, len(held))
	for label := range held {
		labels = append(labels, label)
	}

	slices.Sort(labels)

	return labels, nil
}

func (r *MemoryBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	key := booking.Key()
	lock := r.keyLock(key)

	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock }()

	// Blocks Delete of the movie until the booking is stored.
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()

	if !r.catalog.exists(key.MovieID) {
		return domain.ErrMovieNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if conflicts := domain.ConflictingSeats(booking.Seats, toSet(r.held[key])); len(conflicts) > 0 {
		return &domain.SeatConflictError{Seats: conflicts}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Date = key.Date
	booking.CreatedAt = time.Now().UTC()

	r.seq++
	r.records[booking.ID] = &bookingRecord{booking: *cloneBooking(*booking), seq: r.seq}

	if booking.Status.Holds() {
		r.hold(key, booking.ID, booking.Seats)
	}

	return nil
}

func toSet(held map[domain.SeatLabel]uuid.UUID) map[domain.SeatLabel]struct{} {
	set := make(map[domain.SeatLabel]struct{}, len(held))
	for label := range held {
		set[label] = struct{}{}
	}

	return set
}

// hold and release must be called with r.mu held.
func (r *MemoryBookingRepository) hold(key domain.BookingKey, id uuid.UUID, seats []domain.SeatLabel) {
	held, ok := r.held[key]
	if !ok {
		held = make(map[domain.SeatLabel]uuid.UUID, len(seats))
		r.held[key] = held
	}

	for _, s := range seats {
		held[s] = id
	}
}

func (r *MemoryBookingRepository) release(b *domain.Booking) {
	key := b.Key()
	held := r.held[key]

	for _, s := range b.Seats {
		if held[s] == b.ID {
			delete(held, s)
		}
	}

	if len(held) == 0 {
		delete(r.held, key)
	}
}

func (r *MemoryBookingRepository) FindById(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return cloneBooking(rec.booking), nil
}

func (r *MemoryBookingRepository) FindMostRecent(ctx context.Context) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *bookingRecord
	for _, rec := range r.records {
		if latest == nil || rec.seq > latest.seq {
			latest = rec
		}
	}

	if latest == nil {
		return nil, domain.ErrRecordNotFound
	}

	return cloneBooking(latest.booking), nil
}

func (r *MemoryBookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking, status domain.BookingStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[booking.ID]
	if !ok || rec.booking.Status != booking.Status {
		return domain.ErrEditConflict
	}

	rec.booking.Status = status
	if !status.Holds() {
		r.release(&rec.booking)
	}

	booking.Status = status

	return nil
}

func (r *MemoryBookingRepository) DeleteById(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	r.release(&rec.booking)
	delete(r.records, id)

	return nil
}

func (r *MemoryBookingRepository) hasActive(movieID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.booking.MovieID == movieID && rec.booking.Status.Holds() {
			return true
		}
	}

	return false
}

func (r *MemoryBookingRepository) removeMovie(movieID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.records {
		if rec.booking.MovieID == movieID {
			r.release(&rec.booking)
			delete(r.records, id)
		}
	}
}

// bookingIDs returns the stored ids in creation order.
func (r *MemoryBookingRepository) bookingIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]*bookingRecord, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	ids := make([]uuid.UUID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.booking.ID
	}

	return ids
}
