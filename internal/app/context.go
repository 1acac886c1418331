package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/metinatakli/movie-booking-api/internal/auth"
)

type contextKey string

const (
	loggerContextKey = contextKey("logger")
	adminContextKey  = contextKey("admin")
)

func (app *Application) contextSetLogger(r *http.Request, logger *slog.Logger) *http.Request {
	ctx := context.WithValue(r.Context(), loggerContextKey, logger)
	return r.WithContext(ctx)
}

// contextGetLogger returns the request scoped logger, falling back to the
// application logger outside the middleware chain.
func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}

func (app *Application) contextSetAdmin(r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), adminContextKey, claims)
	return r.WithContext(ctx)
}

func (app *Application) contextGetAdmin(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(adminContextKey).(*auth.Claims)
	if !ok {
		panic("missing admin claims from context")
	}

	return claims
}
