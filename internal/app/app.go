package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/auth"
	"github.com/metinatakli/movie-booking-api/internal/booking"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/metinatakli/movie-booking-api/internal/mailer"
	"github.com/metinatakli/movie-booking-api/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking-api/internal/validator"
	"github.com/metinatakli/movie-booking-api/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "movie-booking-api"

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer
	tokens    *auth.TokenManager

	movieRepo domain.MovieRepository
	adminRepo domain.AdminRepository
	bookings  *booking.Service
}

// NewApp wires the application. db and redisClient may be nil: without a pool
// the stores are expected to be in memory, without redis the catalog is not cached.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	movieRepo domain.MovieRepository,
	bookingRepo domain.BookingRepository,
	adminRepo domain.AdminRepository) *Application {

	if redisClient != nil {
		movieRepo = repository.NewCachedMovieRepository(movieRepo, redisClient, cfg.MovieCacheTTL, logger)
	}

	return &Application{
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		validator: validator,
		mailer:    mailer,
		tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		movieRepo: movieRepo,
		adminRepo: adminRepo,
		bookings:  booking.NewService(movieRepo, bookingRepo, validator, mailer, logger, cfg.AdmissionTimeout),
	}
}

func Run() error {
	cfg, displayVersion, err := LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stdoutHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(stdoutHandler)

	shutdownTelemetry, err := (&Application{config: cfg, logger: logger}).InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(stdoutHandler, otelslog.NewHandler(serviceName)))
	}

	var (
		db          *pgxpool.Pool
		movieRepo   domain.MovieRepository
		bookingRepo domain.BookingRepository
		adminRepo   domain.AdminRepository
	)

	switch cfg.Store {
	case StoreMemory:
		catalog := repository.NewMemoryMovieRepository()
		movieRepo = catalog
		bookingRepo = repository.NewMemoryBookingRepository(catalog)
		adminRepo = repository.NewMemoryAdminRepository(catalog)
	default:
		db, err = NewDatabasePool(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		movieRepo = repository.NewPostgresMovieRepository(db)
		bookingRepo = repository.NewPostgresBookingRepository(db)
		adminRepo = repository.NewPostgresAdminRepository(db)
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.URL != "" {
		client, err := NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		redisClient = client
	} else {
		logger.Info("redis URL not set, movie lookups are not cached")
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		smtpMailer,
		movieRepo,
		bookingRepo,
		adminRepo,
	)

	return app.run()
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := redisotel.InstrumentTracing(rdb)
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		app.logger.Info("waiting for booking receipts", "addr", srv.Addr)
		app.bookings.Wait()

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "store", app.config.Store)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.enableCORS)

	return api.HandlerWithOptions(app, api.ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      []api.MiddlewareFunc{app.requireAdmin},
		ErrorHandlerFunc: app.paramErrorResponse,
	})
}
