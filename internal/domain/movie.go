package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Movie struct {
	ID          uuid.UUID
	Title       string
	Genres      []string
	ReleaseDate time.Time
	Duration    int
	Description string
	Director    string
	CastMembers []string
	PosterUrl   string
	Featured    bool
	AdminID     *uuid.UUID
	CreatedAt   time.Time
	Version     int
}

// MoviePatch holds the fields of a partial update. Nil fields are left untouched.
type MoviePatch struct {
	Title       *string
	Genres      []string
	ReleaseDate *time.Time
	Duration    *int
	Description *string
	Director    *string
	CastMembers []string
	PosterUrl   *string
	Featured    *bool
}

func (p MoviePatch) Apply(movie *Movie) {
	if p.Title != nil {
		movie.Title = *p.Title
	}
	if p.Genres != nil {
		movie.Genres = p.Genres
	}
	if p.ReleaseDate != nil {
		movie.ReleaseDate = CalendarDate(*p.ReleaseDate)
	}
	if p.Duration != nil {
		movie.Duration = *p.Duration
	}
	if p.Description != nil {
		movie.Description = *p.Description
	}
	if p.Director != nil {
		movie.Director = *p.Director
	}
	if p.CastMembers != nil {
		movie.CastMembers = p.CastMembers
	}
	if p.PosterUrl != nil {
		movie.PosterUrl = *p.PosterUrl
	}
	if p.Featured != nil {
		movie.Featured = *p.Featured
	}
}

// MovieRepository is the catalog store. Update fails with ErrEditConflict when
// the stored version differs from movie.Version; Delete fails with
// ErrMovieHasActiveBookings while pending or confirmed bookings reference the movie.
type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetAll(ctx context.Context) ([]*Movie, error)
	GetById(ctx context.Context, id uuid.UUID) (*Movie, error)
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
}
