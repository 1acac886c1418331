package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-api/internal/domain"
)

type PostgresAdminRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAdminRepository(db *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{
		db: db,
	}
}

func (p *PostgresAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}

	query := `INSERT INTO admins (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := p.db.QueryRow(ctx, query, admin.ID, admin.Email, admin.Password.Hash).Scan(&admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAdminAlreadyExists
		}

		return classify(err)
	}

	return nil
}

func (p *PostgresAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT id, email, password_hash, created_at
		FROM admins
		WHERE lower(email) = lower($1)`

	var admin domain.Admin

	err := p.db.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.Password.Hash,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, classify(err)
	}

	return &admin, nil
}

func (p *PostgresAdminRepository) GetAll(ctx context.Context) ([]*domain.Admin, error) {
	query := `
		SELECT a.id, a.email, a.created_at,
			COALESCE(array_agg(m.id ORDER BY m.created_at) FILTER (WHERE m.id IS NOT NULL), '{}')
		FROM admins a
		LEFT JOIN movies m ON m.admin_id = a.id
		GROUP BY a.id
		ORDER BY a.created_at, a.id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	admins := []*domain.Admin{}

	for rows.Next() {
		var admin domain.Admin

		err := rows.Scan(&admin.ID, &admin.Email, &admin.CreatedAt, &admin.AddedMovies)
		if err != nil {
			return nil, classify(err)
		}

		admins = append(admins, &admin)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return admins, nil
}
