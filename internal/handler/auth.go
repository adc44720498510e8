package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/service"
)

// AuthHandler owns the two unauthenticated routes: register and login.
//
// INPUT VALIDATION BOUNDARY:
// Request bodies are decoded into typed structs and checked with
// validator/v10 before anything reaches the service layer — the
// Authenticator only ever sees already-validated primitives. The
// `validate` struct tags declare the schema right next to the fields.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, validate *validator.Validate, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		validate: validate,
		logger:   logger,
	}
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=64"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"username","password","first_name","last_name","phone"}
// RESPONSE: 201 {"token": "<jwt>"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	result, err := h.auth.Register(r.Context(), req.Username, req.Password, service.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.logger.Warn("registration failed",
			slog.String("username", req.Username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: result.Token})
}

// HandleLogin verifies credentials and issues a token.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"username","password"}
// RESPONSE: 200 {"token": "<jwt>"}
//
// A failed login is logged without the username — log lines must not
// become the enumeration oracle the API refuses to be.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	result, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Info("login rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: result.Token})
}

// validationError converts validator/v10 output into the taxonomy's
// validation error, naming the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return apperror.ValidationFailed(f.Field(), "field "+f.Field()+" failed on the '"+f.Tag()+"' rule")
	}
	return apperror.ValidationFailed("body", "invalid request body")
}
