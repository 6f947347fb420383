package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/api/dto"
	"github.com/sanadchat/sanad/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
}

func NewAuthHandler(authService auth.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	_, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Message: "User registered successfully. Please check your email to verify your account.",
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Token is required"})
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), userID, token); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid or expired token"})
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Verification failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Message: "Email verified successfully! You can now log in.",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	token, _, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		case errors.Is(err, auth.ErrEmailNotVerified):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Please verify your email before logging in"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}

func (h *AuthHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	// Always succeeds so callers cannot probe which emails are registered.
	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Request failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Message: "If the email is registered, a password reset link has been sent (valid 15 minutes)",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if err := h.authService.ResetPassword(r.Context(), userID, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid or expired token"})
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Password reset failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password has been reset successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
