package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

type contextKey string

// BearerAuthScopes is set on the request context of operations that require an
// admin bearer token.
const BearerAuthScopes contextKey = "BearerAuth.Scopes"

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /healthcheck)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /openapi.json)
	GetOpenAPISpec(w http.ResponseWriter, r *http.Request)

	// (POST /booking)
	CreateBooking(w http.ResponseWriter, r *http.Request)
	// (GET /booking)
	GetMostRecentBooking(w http.ResponseWriter, r *http.Request)
	// (GET /booking/{bookingId})
	GetBookingById(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID)
	// (PATCH /booking/{bookingId})
	UpdateBookingStatus(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID)
	// (DELETE /booking/{bookingId})
	DeleteBooking(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID)

	// (GET /movie)
	GetMovies(w http.ResponseWriter, r *http.Request)
	// (POST /movie)
	CreateMovie(w http.ResponseWriter, r *http.Request)
	// (GET /movie/{movieId})
	GetMovieById(w http.ResponseWriter, r *http.Request, movieId uuid.UUID)
	// (PATCH /movie/{movieId})
	UpdateMovie(w http.ResponseWriter, r *http.Request, movieId uuid.UUID)
	// (DELETE /movie/{movieId})
	DeleteMovie(w http.ResponseWriter, r *http.Request, movieId uuid.UUID)
	// (GET /movie/{movieId}/seats)
	GetHeldSeats(w http.ResponseWriter, r *http.Request, movieId uuid.UUID, params GetHeldSeatsParams)

	// (POST /admin/signup)
	SignupAdmin(w http.ResponseWriter, r *http.Request)
	// (POST /admin/login)
	LoginAdmin(w http.ResponseWriter, r *http.Request)
	// (GET /admin)
	GetAdmins(w http.ResponseWriter, r *http.Request)
}

type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, secured bool, fn http.HandlerFunc) {
	if secured {
		ctx := context.WithValue(r.Context(), BearerAuthScopes, []string{})
		r = r.WithContext(ctx)
	}

	var handler http.Handler = fn
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID

	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return uuid.Nil, false
	}

	return id, true
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.GetHealth)
}

func (siw *ServerInterfaceWrapper) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.GetOpenAPISpec)
}

func (siw *ServerInterfaceWrapper) CreateBooking(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.CreateBooking)
}

func (siw *ServerInterfaceWrapper) GetMostRecentBooking(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.GetMostRecentBooking)
}

func (siw *ServerInterfaceWrapper) GetBookingById(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.uuidParam(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, false, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetBookingById(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.uuidParam(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateBookingStatus(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.uuidParam(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteBooking(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) GetMovies(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.GetMovies)
}

func (siw *ServerInterfaceWrapper) CreateMovie(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, true, siw.Handler.CreateMovie)
}

func (siw *ServerInterfaceWrapper) GetMovieById(w http.ResponseWriter, r *http.Request) {
	movieId, ok := siw.uuidParam(w, r, "movieId")
	if !ok {
		return
	}

	siw.serve(w, r, false, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetMovieById(w, r, movieId)
	})
}

func (siw *ServerInterfaceWrapper) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	movieId, ok := siw.uuidParam(w, r, "movieId")
	if !ok {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateMovie(w, r, movieId)
	})
}

func (siw *ServerInterfaceWrapper) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	movieId, ok := siw.uuidParam(w, r, "movieId")
	if !ok {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteMovie(w, r, movieId)
	})
}

func (siw *ServerInterfaceWrapper) GetHeldSeats(w http.ResponseWriter, r *http.Request) {
	movieId, ok := siw.uuidParam(w, r, "movieId")
	if !ok {
		return
	}

	var params GetHeldSeatsParams

	query := r.URL.Query()

	for _, name := range []string{"date", "slot"} {
		if _, found := query[name]; !found {
			siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: name})
			return
		}
	}

	err := runtime.BindQueryParameter("form", true, true, "date", query, &params.Date)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "date", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, true, "slot", query, &params.Slot)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "slot", Err: err})
		return
	}

	siw.serve(w, r, false, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHeldSeats(w, r, movieId, params)
	})
}

func (siw *ServerInterfaceWrapper) SignupAdmin(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.SignupAdmin)
}

func (siw *ServerInterfaceWrapper) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.LoginAdmin)
}

func (siw *ServerInterfaceWrapper) GetAdmins(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, true, siw.Handler.GetAdmins)
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching the API description on top of r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL

	r.Group(func(r chi.Router) {
		r.Get(base+"/healthcheck", wrapper.GetHealth)
		r.Get(base+"/openapi.json", wrapper.GetOpenAPISpec)

		r.Post(base+"/booking", wrapper.CreateBooking)
		r.Get(base+"/booking", wrapper.GetMostRecentBooking)
		r.Get(base+"/booking/{bookingId}", wrapper.GetBookingById)
		r.Patch(base+"/booking/{bookingId}", wrapper.UpdateBookingStatus)
		r.Delete(base+"/booking/{bookingId}", wrapper.DeleteBooking)

		r.Get(base+"/movie", wrapper.GetMovies)
		r.Post(base+"/movie", wrapper.CreateMovie)
		r.Get(base+"/movie/{movieId}", wrapper.GetMovieById)
		r.Patch(base+"/movie/{movieId}", wrapper.UpdateMovie)
		r.Delete(base+"/movie/{movieId}", wrapper.DeleteMovie)
		r.Get(base+"/movie/{movieId}/seats", wrapper.GetHeldSeats)

		r.Post(base+"/admin/signup", wrapper.SignupAdmin)
		r.Post(base+"/admin/login", wrapper.LoginAdmin)
		r.Get(base+"/admin", wrapper.GetAdmins)
	})

	return r
}
