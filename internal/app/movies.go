package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/oapi-codegen/runtime/types"
)

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := app.movieRepo.GetAll(r.Context())
	if err != nil {
		if !app.storageErrorResponse(w, r, err) {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.MovieListResponse{
		Movies: make([]api.MovieResponse, len(movies)),
	}
	for i, movie := range movies {
		resp.Movies[i] = toMovieResponse(movie)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateMovieRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	adminID, err := app.contextGetAdmin(r).AdminID()
	if err != nil {
		app.unauthorizedAccessResponse(w, r)
		return
	}

	movie := &domain.Movie{
		Title:       input.Title,
		Genres:      input.Genre,
		ReleaseDate: domain.CalendarDate(input.ReleaseDate.Time),
		Duration:    input.Duration,
		Description: input.Description,
		Director:    input.Director,
		CastMembers: input.Cast,
		PosterUrl:   input.PosterUrl,
		Featured:    true,
		AdminID:     &adminID,
	}
	if input.Featured != nil {
		movie.Featured = *input.Featured
	}

	err = app.movieRepo.Create(r.Context(), movie)
	if err != nil {
		if !app.storageErrorResponse(w, r, err) {
			logger.Error("failed to create movie", "error", err)
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	logger.Info("movie created", "movie_id", movie.ID)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/movie/%s", movie.ID))

	err = app.writeJSON(w, http.StatusCreated, toMovieResponse(movie), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieById(w http.ResponseWriter, r *http.Request, movieId uuid.UUID) {
	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		if !app.storageErrorResponse(w, r, err) {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateMovie(w http.ResponseWriter, r *http.Request, movieId uuid.UUID) {
	logger := app.contextGetLogger(r)

	var input api.UpdateMovieRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		if !app.storageErrorResponse(w, r, err) {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	toMoviePatch(input).Apply(movie)

	// Empty lists pass the field rules above as absent values, so the merged
	// movie is checked against the creation rules before it is stored.
	err = app.validator.Struct(toCreateMovieRequest(movie))
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	err = app.movieRepo.Update(r.Context(), movie)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			logger.Warn("movie edit conflict", "movie_id", movieId)
			app.editConflictResponse(w, r)
		default:
			if !app.storageErrorResponse(w, r, err) {
				logger.Error("failed to update movie", "movie_id", movieId, "error", err)
				app.serverErrorResponse(w, r, err)
			}
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteMovie(w http.ResponseWriter, r *http.Request, movieId uuid.UUID) {
	logger := app.contextGetLogger(r)

	err := app.movieRepo.Delete(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMovieHasActiveBookings):
			logger.Warn("refused to delete movie with active bookings", "movie_id", movieId)
			app.errorResponse(w, r, http.StatusConflict, ErrActiveBookings)
		default:
			if !app.storageErrorResponse(w, r, err) {
				logger.Error("failed to delete movie", "movie_id", movieId, "error", err)
				app.serverErrorResponse(w, r, err)
			}
		}
		return
	}

	logger.Info("movie deleted", "movie_id", movieId)

	w.WriteHeader(http.StatusNoContent)
}

func toMoviePatch(input api.UpdateMovieRequest) domain.MoviePatch {
	patch := domain.MoviePatch{
		Title:       input.Title,
		Genres:      input.Genre,
		Duration:    input.Duration,
		Description: input.Description,
		Director:    input.Director,
		CastMembers: input.Cast,
		PosterUrl:   input.PosterUrl,
		Featured:    input.Featured,
	}

	if input.ReleaseDate != nil {
		releaseDate := input.ReleaseDate.Time
		patch.ReleaseDate = &releaseDate
	}

	return patch
}

func toCreateMovieRequest(movie *domain.Movie) api.CreateMovieRequest {
	return api.CreateMovieRequest{
		Title:       movie.Title,
		Genre:       movie.Genres,
		ReleaseDate: types.Date{Time: movie.ReleaseDate},
		Duration:    movie.Duration,
		Description: movie.Description,
		Director:    movie.Director,
		Cast:        movie.CastMembers,
		PosterUrl:   movie.PosterUrl,
		Featured:    &movie.Featured,
	}
}

func toMovieResponse(movie *domain.Movie) api.MovieResponse {
	if movie == nil {
		return api.MovieResponse{}
	}

	return api.MovieResponse{
		Id:          movie.ID,
		Title:       movie.Title,
		Genre:       nonNil(movie.Genres),
		ReleaseDate: types.Date{Time: movie.ReleaseDate},
		Duration:    movie.Duration,
		Description: movie.Description,
		Director:    movie.Director,
		Cast:        nonNil(movie.CastMembers),
		PosterUrl:   movie.PosterUrl,
		Featured:    movie.Featured,
		Admin:       movie.AdminID,
		Version:     movie.Version,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
