package app

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is read from the environment first. Command-line flags, when given,
// take precedence over the environment.
type Config struct {
	Port             int           `envconfig:"PORT" default:"8080"`
	Env              string        `envconfig:"ENV" default:"dev"`
	Store            string        `envconfig:"STORE" default:"postgres"`
	JWTSecret        string        `envconfig:"JWT_SECRET"`
	TokenTTL         time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	AdmissionTimeout time.Duration `envconfig:"ADMISSION_TIMEOUT" default:"3s"`
	MovieCacheTTL    time.Duration `envconfig:"MOVIE_CACHE_TTL" default:"5m"`
	OtelCollectorUrl string        `envconfig:"OTEL_COLLECTOR_URL"`
	CorsOrigins      []string      `envconfig:"CORS_TRUSTED_ORIGINS" default:"*"`

	DB    DBConfig    `envconfig:"DB"`
	Redis RedisConfig `envconfig:"REDIS"`
	SMTP  SMTPConfig  `envconfig:"SMTP"`
}

type DBConfig struct {
	DSN          string        `envconfig:"DSN"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleTime  time.Duration `envconfig:"MAX_IDLE_TIME" default:"15m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"URL"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	MaxIdleTime  time.Duration `envconfig:"MAX_IDLE_TIME" default:"2m"`
}

type SMTPConfig struct {
	Host     string `envconfig:"HOST" default:"sandbox.smtp.mailtrap.io"`
	Port     int    `envconfig:"PORT" default:"2525"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	Sender   string `envconfig:"SENDER" default:"Movie Booking <no-reply@movie-booking.local>"`
}

func (c Config) IsProduction() bool {
	return c.Env == "prod"
}

// LoadConfig builds the configuration from the environment and args. The
// returned bool reports whether -version was requested.
func LoadConfig(args []string) (Config, bool, error) {
	var cfg Config

	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, false, err
	}

	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", cfg.Port, "server port")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend (postgres|memory)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret used to sign admin tokens")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Lifetime of admin tokens")
	fs.DurationVar(&cfg.AdmissionTimeout, "admission-timeout", cfg.AdmissionTimeout, "Storage timeout of a booking admission")
	fs.DurationVar(&cfg.MovieCacheTTL, "movie-cache-ttl", cfg.MovieCacheTTL, "Lifetime of cached movies")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", cfg.OtelCollectorUrl, "OpenTelemetry collector endpoint")

	fs.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.CorsOrigins = strings.Fields(val)
		return nil
	})

	fs.StringVar(&cfg.DB.DSN, "db-dsn", cfg.DB.DSN, "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", cfg.DB.MaxOpenConns, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", cfg.DB.MaxIdleTime, "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", cfg.Redis.URL, "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", cfg.Redis.MaxOpenConns, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", cfg.Redis.MaxIdleConns, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", cfg.Redis.MaxIdleTime, "Redis max idle time for connections")

	fs.StringVar(&cfg.SMTP.Host, "smtp-host", cfg.SMTP.Host, "SMTP host")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", cfg.SMTP.Port, "SMTP port")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", cfg.SMTP.Username, "SMTP username")
	fs.StringVar(&cfg.SMTP.Password, "smtp-password", cfg.SMTP.Password, "SMTP password")
	fs.StringVar(&cfg.SMTP.Sender, "smtp-sender", cfg.SMTP.Sender, "SMTP sender")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err = fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	if *displayVersion {
		return cfg, true, nil
	}

	err = cfg.validate()
	if err != nil {
		return Config{}, false, err
	}

	return cfg, false, nil
}

func (c Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("a PostgreSQL DSN is required when store is %q", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q, want %q or %q", c.Store, StorePostgres, StoreMemory)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("a JWT secret is required")
	}

	return nil
}
