package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/internal/domain"
)

type MemoryAdminRepository struct {
	catalog *MemoryMovieRepository

	mu      sync.RWMutex
	byEmail map[string]domain.Admin
}

func NewMemoryAdminRepository(catalog *MemoryMovieRepository) *MemoryAdminRepository {
	return &MemoryAdminRepository{
		catalog: catalog,
		byEmail: make(map[string]domain.Admin),
	}
}

func (s *MemoryAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := strings.ToLower(admin.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return domain.ErrAdminAlreadyExists
	}

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CreatedAt = time.Now().UTC()

	s.byEmail[key] = *admin

	return nil
}

func (s *MemoryAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &admin, nil
}

func (s *MemoryAdminRepository) GetAll(ctx context.Context) ([]*domain.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	admins := make([]*domain.Admin, 0, len(s.byEmail))
	for _, a := range s.byEmail {
		admin := a
		admins = append(admins, &admin)
	}
	s.mu.RUnlock()

	sort.Slice(admins, func(i, j int) bool {
		return admins[i].CreatedAt.Before(admins[j].CreatedAt)
	})

	for _, admin := range admins {
		admin.AddedMovies = s.catalog.byAdmin(admin.ID)
	}

	return admins, nil
}
