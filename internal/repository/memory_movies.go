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

// MemoryMovieRepository keeps the catalog in process memory for single
// instance deployments and tests.
type MemoryMovieRepository struct {
	mu       sync.RWMutex
	items    map[uuid.UUID]domain.Movie
	bookings *MemoryBookingRepository
}

func NewMemoryMovieRepository() *MemoryMovieRepository {
	return &MemoryMovieRepository{
		items: make(map[uuid.UUID]domain.Movie),
	}
}

func cloneMovie(m domain.Movie) *domain.Movie {
	m.Genres = slices.Clone(m.Genres)
	m.CastMembers = slices.Clone(m.CastMembers)
	if m.AdminID != nil {
		id := *m.AdminID
		m.AdminID = &id
	}

	return &m
}

func (s *MemoryMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	movie.CreatedAt = time.Now().UTC()
	movie.Version = 1

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[movie.ID] = *cloneMovie(*movie)

	return nil
}

func (s *MemoryMovieRepository) GetAll(ctx context.Context) ([]*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Movie, 0, len(s.items))
	for _, m := range s.items {
		out = append(out, cloneMovie(m))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out, nil
}

func (s *MemoryMovieRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.items[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return cloneMovie(m), nil
}

func (s *MemoryMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[movie.ID]
	if !ok || current.Version != movie.Version {
		return domain.ErrEditConflict
	}

	movie.Version++
	s.items[movie.ID] = *cloneMovie(*movie)

	return nil
}

func (s *MemoryMovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrRecordNotFound
	}

	if s.bookings != nil {
		if s.bookings.hasActive(id) {
			return domain.ErrMovieHasActiveBookings
		}
		s.bookings.removeMovie(id)
	}

	delete(s.items, id)

	return nil
}

// exists must be called with s.mu held.
func (s *MemoryMovieRepository) exists(id uuid.UUID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *MemoryMovieRepository) byAdmin(adminID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var movies []domain.Movie
	for _, m := range s.items {
		if m.AdminID != nil && *m.AdminID == adminID {
			movies = append(movies, m)
		}
	}

	sort.Slice(movies, func(i, j int) bool {
		return movies[i].CreatedAt.Before(movies[j].CreatedAt)
	})

	ids := make([]uuid.UUID, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}

	return ids
}
