package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/services"
	"github.com/tanushree1025/DESIGN-THEETA/pkg/middleware"
)

type AuthHandler struct {
	users    *services.UserService
	validate *validator.Validate
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{
		users:    users,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin designer client"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	_, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "User already exists"})
			return
		}
		middleware.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "auth handler - register failed", "email", req.Email, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Server error"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"msg": "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid credentials"})
		case errors.Is(err, domain.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"msg": "Too many attempts"})
		default:
			middleware.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "auth handler - login failed", "email", req.Email, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Server error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"id":    user.ID,
		"name":  user.Name,
		"role":  user.Role,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "User not found"})
			return
		}
		middleware.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "auth handler - forgot password failed", "email", req.Email, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Failed to send reset link"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Password reset link sent to your email."})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid or expired token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Password updated successfully"})
}

type createAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateAdmin is mounted behind the admin-only middleware.
func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Role != domain.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"msg": "Admins only"})
		return
	}
	var req createAdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	admin, err := h.users.CreateAdmin(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "User already exists"})
			return
		}
		middleware.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "auth handler - create admin failed", "email", req.Email, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Server error"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"msg":   "Admin created",
		"admin": map[string]string{"name": admin.Name, "email": admin.Email},
	})
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid request"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
