package app

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-booking-api/api"
	"go.opentelemetry.io/otel/trace"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestLogger attaches a logger carrying the request id and, when tracing is
// on, the trace id to the request context.
func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.URL.RequestURI(),
		)

		if span := trace.SpanContextFromContext(r.Context()); span.HasTraceID() {
			logger = logger.With("trace_id", span.TraceID().String())
		}

		next.ServeHTTP(w, app.contextSetLogger(r, logger))
	})
}

// requireAdmin guards the operations the API description marks with bearer
// auth. Other operations pass through untouched.
func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, secured := r.Context().Value(api.BearerAuthScopes).([]string); !secured {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Authorization")

		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		claims, err := app.tokens.Verify(token)
		if err != nil {
			app.contextGetLogger(r).Warn("rejected admin token", "error", err)
			app.unauthorizedAccessResponse(w, r)
			return
		}

		logger := app.contextGetLogger(r).With("admin_id", claims.Subject)
		r = app.contextSetLogger(r, logger)

		next.ServeHTTP(w, app.contextSetAdmin(r, claims))
	})
}

func (app *Application) enableCORS(next http.Handler) http.Handler {
	allowAll := slices.Contains(app.config.CorsOrigins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin == "" || (!allowAll && !slices.Contains(app.config.CorsOrigins, origin)) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")

			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
