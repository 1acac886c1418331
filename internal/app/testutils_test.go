package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/booking"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/metinatakli/movie-booking-api/internal/mailer"
	"github.com/metinatakli/movie-booking-api/internal/mocks"
	"github.com/metinatakli/movie-booking-api/internal/validator"
)

const testJWTSecret = "handler-test-secret"

var testAdminID = uuid.MustParse("6f1c1c3e-8d0a-4c55-9d6b-2a7e8f0b1a01")

func newTestApplication(opts ...func(*Application)) *Application {
	cfg := Config{
		Env:              "dev",
		Store:            StoreMemory,
		JWTSecret:        testJWTSecret,
		TokenTTL:         time.Hour,
		AdmissionTimeout: time.Second,
		CorsOrigins:      []string{"*"},
	}

	app := NewApp(
		cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
		nil,
		validator.NewValidator(),
		mailer.NewMockMailer(),
		&mocks.MockMovieRepo{},
		&mocks.MockBookingRepo{},
		&mocks.MockAdminRepo{},
	)

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// withStores swaps the catalog and booking stores, rebuilding the booking
// service on top of them.
func withStores(movieRepo domain.MovieRepository, bookingRepo domain.BookingRepository) func(*Application) {
	return func(a *Application) {
		a.movieRepo = movieRepo
		a.bookings = booking.NewService(movieRepo, bookingRepo, a.validator, a.mailer, a.logger, a.config.AdmissionTimeout)
	}
}

// withLogger routes application logs to w. Apply it before withStores so the
// booking service shares the logger.
func withLogger(w io.Writer) func(*Application) {
	return func(a *Application) {
		a.logger = slog.New(slog.NewTextHandler(w, nil))
	}
}

func adminToken(t *testing.T, app *Application) string {
	t.Helper()

	token, _, err := app.tokens.Issue(testAdminID, "admin@example.com")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	return token
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func executeRawRequest(method, url, body string) (*httptest.ResponseRecorder, *http.Request) {
	r := httptest.NewRequest(method, url, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	return httptest.NewRecorder(), r
}

func withBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// errorBody covers every error envelope the API writes.
type errorBody struct {
	Message          string                `json:"message"`
	RequestId        string                `json:"requestId"`
	Seats            []string              `json:"seats"`
	ValidationErrors []api.ValidationError `json:"validationErrors"`
}

// checkErrorResponse asserts the status and, for errors, that wantErrMessage is
// either the message or one of the validation issues.
func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if w.Code != tt.wantStatus {
		t.Fatalf("Status = %d, want %d, body: %s", w.Code, tt.wantStatus, w.Body.String())
	}

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	var resp errorBody
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantErrMessage == "" || resp.Message == tt.wantErrMessage {
		return
	}

	for _, vErr := range resp.ValidationErrors {
		if vErr.Issue == tt.wantErrMessage || vErr.Field+" "+vErr.Issue == tt.wantErrMessage {
			return
		}
	}

	t.Errorf("Error message %q not found in response %+v", tt.wantErrMessage, resp)
}

func ptr[T any](v T) *T {
	return &v
}
