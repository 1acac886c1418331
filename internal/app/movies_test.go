package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/metinatakli/movie-booking-api/internal/mocks"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReleaseDate = time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC)

func catalogMovie() *domain.Movie {
	return &domain.Movie{
		ID:          testMovieID,
		Title:       "Arrival",
		Genres:      []string{"Drama", "Sci-Fi"},
		ReleaseDate: testReleaseDate,
		Duration:    116,
		Description: "A linguist works with the military to communicate with alien lifeforms.",
		Director:    "Denis Villeneuve",
		CastMembers: []string{"Amy Adams", "Jeremy Renner"},
		PosterUrl:   "https://example.com/arrival.jpg",
		Featured:    true,
		AdminID:     &testAdminID,
		Version:     1,
	}
}

func validMovieBody() map[string]any {
	return map[string]any{
		"title":       "Arrival",
		"genre":       []string{"Drama", "Sci-Fi"},
		"releaseDate": "2016-11-11",
		"duration":    116,
		"description": "A linguist works with the military to communicate with alien lifeforms.",
		"director":    "Denis Villeneuve",
		"cast":        []string{"Amy Adams", "Jeremy Renner"},
		"posterUrl":   "https://example.com/arrival.jpg",
	}
}

func TestGetMovies(t *testing.T) {
	tests := []struct {
		name           string
		getAllFunc     func(context.Context) ([]*domain.Movie, error)
		wantStatus     int
		wantErrMessage string
		wantResponse   *api.MovieListResponse
	}{
		{
			name: "lists movies",
			getAllFunc: func(ctx context.Context) ([]*domain.Movie, error) {
				return []*domain.Movie{catalogMovie()}, nil
			},
			wantStatus: http.StatusOK,
			wantResponse: &api.MovieListResponse{
				Movies: []api.MovieResponse{{
					Id:          testMovieID,
					Title:       "Arrival",
					Genre:       []string{"Drama", "Sci-Fi"},
					ReleaseDate: types.Date{Time: testReleaseDate},
					Duration:    116,
					Description: "A linguist works with the military to communicate with alien lifeforms.",
					Director:    "Denis Villeneuve",
					Cast:        []string{"Amy Adams", "Jeremy Renner"},
					PosterUrl:   "https://example.com/arrival.jpg",
					Featured:    true,
					Admin:       &testAdminID,
					Version:     1,
				}},
			},
		},
		{
			name: "empty catalog",
			getAllFunc: func(ctx context.Context) ([]*domain.Movie, error) {
				return nil, nil
			},
			wantStatus:   http.StatusOK,
			wantResponse: &api.MovieListResponse{Movies: []api.MovieResponse{}},
		},
		{
			name: "database error",
			getAllFunc: func(ctx context.Context) ([]*domain.Movie, error) {
				return nil, fmt.Errorf("database error")
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(func(a *Application) {
				a.movieRepo = &mocks.MockMovieRepo{GetAllFunc: tt.getAllFunc}
			})

			w, r := executeRequest(t, http.MethodGet, "/movie", nil)
			app.Routes().ServeHTTP(w, r)

			if tt.wantResponse != nil {
				require.Equal(t, tt.wantStatus, w.Code)

				var response api.MovieListResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				if err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if diff := cmp.Diff(tt.wantResponse, &response); diff != "" {
					t.Errorf("Mismatch (-want +got):\n%s", diff)
				}
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func TestCreateMovie(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(domain.DateLayout)

	tests := []struct {
		name           string
		authorized     bool
		body           map[string]any
		createFunc     func(context.Context, *domain.Movie) error
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "requires admin token",
			body:           validMovieBody(),
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrUnauthorized,
		},
		{
			name:       "creates a featured movie owned by the admin",
			authorized: true,
			body:       validMovieBody(),
			createFunc: func(ctx context.Context, movie *domain.Movie) error {
				if movie.AdminID == nil || *movie.AdminID != testAdminID {
					return errors.New("owner not set")
				}
				if !movie.Featured {
					return errors.New("featured should default to true")
				}
				movie.ID = testMovieID
				movie.Version = 1
				return nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "release date in the future",
			authorized: true,
			body: func() map[string]any {
				body := validMovieBody()
				body["releaseDate"] = tomorrow
				return body
			}(),
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "releaseDate must not be in the future",
		},
		{
			name:       "empty genre list",
			authorized: true,
			body: func() map[string]any {
				body := validMovieBody()
				body["genre"] = []string{}
				return body
			}(),
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "genre must contain at least 1 item(s)",
		},
		{
			name:       "invalid poster url",
			authorized: true,
			body: func() map[string]any {
				body := validMovieBody()
				body["posterUrl"] = "poster"
				return body
			}(),
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "posterUrl must be a valid URL",
		},
		{
			name:       "unknown field",
			authorized: true,
			body: func() map[string]any {
				body := validMovieBody()
				body["rating"] = 5
				return body
			}(),
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: `body contains unknown key "rating"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(func(a *Application) {
				a.movieRepo = &mocks.MockMovieRepo{CreateFunc: tt.createFunc}
			})

			w, r := executeRequest(t, http.MethodPost, "/movie", tt.body)
			if tt.authorized {
				r = withBearer(r, adminToken(t, app))
			}

			app.Routes().ServeHTTP(w, r)

			if tt.wantStatus == http.StatusCreated {
				require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

				var response api.MovieResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, testMovieID, response.Id)
				assert.Equal(t, &testAdminID, response.Admin)
				assert.True(t, response.Featured)
				assert.Equal(t, "/movie/"+testMovieID.String(), w.Header().Get("Location"))
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func TestGetMovieById(t *testing.T) {
	app := newTestApplication(func(a *Application) {
		a.movieRepo = existingMovieRepo()
	})

	w, r := executeRequest(t, http.MethodGet, "/movie/"+testMovieID.String(), nil)
	app.Routes().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	w, r = executeRequest(t, http.MethodGet, "/movie/"+uuid.NewString(), nil)
	app.Routes().ServeHTTP(w, r)
	checkErrorResponse(t, w, struct {
		wantStatus     int
		wantErrMessage string
	}{
		wantStatus:     http.StatusNotFound,
		wantErrMessage: ErrNotFound,
	})
}

func TestUpdateMovie(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		updateFunc     func(context.Context, *domain.Movie) error
		wantStatus     int
		wantErrMessage string
		wantTitle      string
	}{
		{
			name: "applies a partial update",
			body: map[string]any{"title": "Arrival (2016)", "featured": false},
			updateFunc: func(ctx context.Context, movie *domain.Movie) error {
				if movie.Director != "Denis Villeneuve" {
					return errors.New("untouched fields must be kept")
				}
				movie.Version++
				return nil
			},
			wantStatus: http.StatusOK,
			wantTitle:  "Arrival (2016)",
		},
		{
			name:           "blank title",
			body:           map[string]any{"title": ""},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "title must be at least 1 characters long",
		},
		{
			name:           "empty cast list",
			body:           map[string]any{"cast": []string{}},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "cast must contain at least 1 item(s)",
		},
		{
			name: "edit conflict",
			body: map[string]any{"duration": 120},
			updateFunc: func(ctx context.Context, movie *domain.Movie) error {
				return domain.ErrEditConflict
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrEditConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(func(a *Application) {
				a.movieRepo = &mocks.MockMovieRepo{
					GetByIdFunc: func(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
						return catalogMovie(), nil
					},
					UpdateFunc: tt.updateFunc,
				}
			})

			w, r := executeRequest(t, http.MethodPatch, "/movie/"+testMovieID.String(), tt.body)
			r = withBearer(r, adminToken(t, app))

			app.Routes().ServeHTTP(w, r)

			if tt.wantStatus == http.StatusOK {
				require.Equal(t, http.StatusOK, w.Code, w.Body.String())

				var response api.MovieResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, tt.wantTitle, response.Title)
				assert.False(t, response.Featured)
				assert.Equal(t, 2, response.Version)
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func TestDeleteMovie(t *testing.T) {
	tests := []struct {
		name           string
		deleteErr      error
		wantStatus     int
		wantErrMessage string
	}{
		{name: "deletes the movie", wantStatus: http.StatusNoContent},
		{name: "unknown movie", deleteErr: domain.ErrRecordNotFound, wantStatus: http.StatusNotFound, wantErrMessage: ErrNotFound},
		{
			name:           "movie with active bookings",
			deleteErr:      domain.ErrMovieHasActiveBookings,
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrActiveBookings,
		},
		{
			name:           "storage timeout",
			deleteErr:      domain.ErrStorageTimeout,
			wantStatus:     http.StatusServiceUnavailable,
			wantErrMessage: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(func(a *Application) {
				a.movieRepo = &mocks.MockMovieRepo{
					DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
						return tt.deleteErr
					},
				}
			})

			w, r := executeRequest(t, http.MethodDelete, "/movie/"+testMovieID.String(), nil)
			r = withBearer(r, adminToken(t, app))

			app.Routes().ServeHTTP(w, r)

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}
