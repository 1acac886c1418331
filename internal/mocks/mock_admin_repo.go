package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-api/internal/domain"
)

type MockAdminRepo struct {
	domain.AdminRepository
	CreateFunc     func(ctx context.Context, admin *domain.Admin) error
	GetByEmailFunc func(ctx context.Context, email string) (*domain.Admin, error)
	GetAllFunc     func(ctx context.Context) ([]*domain.Admin, error)
}

func (m *MockAdminRepo) Create(ctx context.Context, admin *domain.Admin) error {
	return m.CreateFunc(ctx, admin)
}

func (m *MockAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *MockAdminRepo) GetAll(ctx context.Context) ([]*domain.Admin, error) {
	return m.GetAllFunc(ctx)
}
