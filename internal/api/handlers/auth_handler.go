package handlers

import (
	"net/http"

	"github.com/divvyup/divvy/internal/middleware"
	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/service"
)

// AuthHandler handles HTTP requests for signup, login and sessions.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the sanitized user shape; the password hash never leaves
// the server.
type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Signup handles new user registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if payload.Name == "" || payload.Email == "" {
		badRequest(w, "name and email required")
		return
	}

	user, token, err := h.service.Signup(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: token})
}

// Login handles user authentication and JWT issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), Token: token})
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
