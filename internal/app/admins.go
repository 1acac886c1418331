package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/metinatakli/movie-booking-api/api"
	"github.com/metinatakli/movie-booking-api/internal/domain"
)

func (app *Application) SignupAdmin(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.AdminCredentials

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	admin := &domain.Admin{
		Email: strings.ToLower(input.Email),
	}

	err = admin.Password.Set(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.adminRepo.Create(r.Context(), admin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAdminAlreadyExists):
			logger.Warn("signup attempt for existing admin email")
			// the response must not reveal whether the email is taken
			app.errorResponse(w, r, http.StatusBadRequest, "invalid input data")
		default:
			if !app.storageErrorResponse(w, r, err) {
				logger.Error("failed to create admin", "error", err)
				app.serverErrorResponse(w, r, err)
			}
		}

		return
	}

	logger.Info("admin created", "admin_id", admin.ID)

	err = app.writeJSON(w, http.StatusCreated, toAdminResponse(admin), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.AdminCredentials

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	admin, err := app.adminRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("login attempt for unknown admin email")
			app.invalidCredentialsResponse(w, r)
		default:
			if !app.storageErrorResponse(w, r, err) {
				app.serverErrorResponse(w, r, err)
			}
		}

		return
	}

	match, err := admin.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if !match {
		logger.Warn("login attempt with wrong password", "admin_id", admin.ID)
		app.invalidCredentialsResponse(w, r)
		return
	}

	token, expiresAt, err := app.tokens.Issue(admin.ID, admin.Email)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.LoginResponse{
		AdminId:   admin.ID,
		ExpiresAt: expiresAt,
		Token:     token,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := app.adminRepo.GetAll(r.Context())
	if err != nil {
		if !app.storageErrorResponse(w, r, err) {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.AdminListResponse{
		Admins: make([]api.AdminResponse, len(admins)),
	}
	for i, admin := range admins {
		resp.Admins[i] = toAdminResponse(admin)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toAdminResponse(admin *domain.Admin) api.AdminResponse {
	return api.AdminResponse{
		Id:          admin.ID,
		Email:       admin.Email,
		AddedMovies: nonNil(admin.AddedMovies),
		CreatedAt:   admin.CreatedAt,
	}
}
