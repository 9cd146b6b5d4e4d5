package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// UserHandler handles HTTP requests for user and credential endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registering a user. The
// field names follow the legacy client.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required"`
	ID        int64  `json:"id"`
}

// LoginRequest is the JSON request body for verifying credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// --- Handlers ---

// ListUsers handles GET /api/user
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/user/select/{username}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			httputil.WriteNull(w)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Register handles POST /api/user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) && valErr.HasTag("required") {
			httputil.WriteError(w, r, apperrors.InvalidInput(service.MsgAllFieldsRequired), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}

	user, err := h.service.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		UserID:    req.ID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// LegacyLogin handles GET /api/user/login?username=&password=. A mismatch is
// answered with 200 and a null body.
func (h *UserHandler) LegacyLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	v, err := h.service.VerifyCredentials(r.Context(), q.Get("username"), q.Get("password"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}
	if !v.Authenticated() {
		httputil.WriteNull(w)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, v.User)
}

// Login handles POST /api/user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}

	v, err := h.service.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}
	if !v.Authenticated() {
		httputil.WriteError(w, r, apperrors.Unauthorized("invalid username or password"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, v.User)
}
