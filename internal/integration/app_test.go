package integration_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-api/internal/app"
	"github.com/metinatakli/movie-booking-api/internal/mailer"
	"github.com/metinatakli/movie-booking-api/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking-api/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	movieRepo := repository.NewPostgresMovieRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	adminRepo := repository.NewPostgresAdminRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		movieRepo,
		bookingRepo,
		adminRepo,
	)

	return &TestApp{
		App:    application,
		DB:     db,
		Redis:  redisClient,
		Mailer: mailer,
	}, nil
}

// reset empties every table and the movie cache.
func (a *TestApp) reset(t testing.TB) {
	t.Helper()

	ctx := context.Background()

	_, err := a.DB.Exec(ctx, "TRUNCATE held_seats, bookings, movies, admins CASCADE")
	require.NoError(t, err)

	require.NoError(t, a.Redis.FlushDB(ctx).Err())

	a.Mailer.Reset()
}

// adminToken signs up an admin and returns a bearer token for it.
func (a *TestApp) adminToken(t testing.TB, email string) string {
	t.Helper()

	credentials := `{"email": "` + email + `", "password": "` + TestAdminPassword + `"}`

	res := a.do(t, "POST", "/admin/signup", strings.NewReader(credentials), nil)
	require.Equal(t, 201, res.StatusCode)

	res = a.do(t, "POST", "/admin/login", strings.NewReader(credentials), nil)
	require.Equal(t, 200, res.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	decodeBody(t, res, &login)

	return login.Token
}
