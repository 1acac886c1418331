package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-api/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

const movieColumns = `id, title, genres, release_date, duration, description, director,
	cast_members, poster_url, featured, admin_id, created_at, version`

func scanMovie(row pgx.Row) (*domain.Movie, error) {
	var movie domain.Movie

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genres,
		&movie.ReleaseDate,
		&movie.Duration,
		&movie.Description,
		&movie.Director,
		&movie.CastMembers,
		&movie.PosterUrl,
		&movie.Featured,
		&movie.AdminID,
		&movie.CreatedAt,
		&movie.Version,
	)
	if err != nil {
		return nil, err
	}

	return &movie, nil
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}

	query := `
		INSERT INTO movies (id, title, genres, release_date, duration, description, director,
			cast_members, poster_url, featured, admin_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, version
	`

	err := p.db.QueryRow(ctx, query,
		movie.ID,
		movie.Title,
		movie.Genres,
		movie.ReleaseDate,
		movie.Duration,
		movie.Description,
		movie.Director,
		movie.CastMembers,
		movie.PosterUrl,
		movie.Featured,
		movie.AdminID,
	).Scan(&movie.CreatedAt, &movie.Version)

	return classify(err)
}

func (p *PostgresMovieRepository) GetAll(ctx context.Context) ([]*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY title, id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	movies := []*domain.Movie{}

	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, classify(err)
		}

		movies = append(movies, movie)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	return movies, nil
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	movie, err := scanMovie(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, classify(err)
	}

	return movie, nil
}

func (p *PostgresMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	query := `
		UPDATE movies
		SET title = $1, genres = $2, release_date = $3, duration = $4, description = $5,
			director = $6, cast_members = $7, poster_url = $8, featured = $9, version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`

	err := p.db.QueryRow(ctx, query,
		movie.Title,
		movie.Genres,
		movie.ReleaseDate,
		movie.Duration,
		movie.Description,
		movie.Director,
		movie.CastMembers,
		movie.PosterUrl,
		movie.Featured,
		movie.ID,
		movie.Version,
	).Scan(&movie.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		return classify(err)
	}

	return nil
}

// Delete removes the movie together with its cancelled bookings. The row lock
// waits for in-flight admissions, which hold a shared lock on the same row.
func (p *PostgresMovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var exists int
		err := tx.QueryRow(ctx, `SELECT 1 FROM movies WHERE id = $1 FOR UPDATE`, id).Scan(&exists)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		query := `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE movie_id = $1 AND status IN ('pending', 'confirmed')
			)
		`

		var active bool
		err = tx.QueryRow(ctx, query, id).Scan(&active)
		if err != nil {
			return err
		}

		if active {
			return domain.ErrMovieHasActiveBookings
		}

		_, err = tx.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)

		return err
	})

	return classify(err)
}
