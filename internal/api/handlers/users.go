package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/api/dto"
	"github.com/sanadchat/sanad/internal/api/middleware"
	"github.com/sanadchat/sanad/internal/auth"
	"github.com/sanadchat/sanad/internal/database/models"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	authService auth.Authenticator
}

func NewUserHandler(db *gorm.DB, authService auth.Authenticator) *UserHandler {
	return &UserHandler{db: db, authService: authService}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.db.WithContext(r.Context()).
		Preload("Conversations.Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Preload("Conversations").
		Find(&users).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = dto.UserToResponse(&users[i])
	}

	writeJSON(w, http.StatusOK, responses)
}

// requireSelfOrAdmin parses {id} and rejects non-admins acting on another
// user's account.
func requireSelfOrAdmin(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return uuid.Nil, false
	}

	if middleware.GetUserRole(r.Context()) != models.RoleAdmin && userID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		return uuid.Nil, false
	}

	return userID, true
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).
		Preload("Conversations.Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Preload("Conversations").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load user"})
		return
	}

	writeJSON(w, http.StatusOK, dto.UserToResponse(&user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	if req.Role != "" && middleware.GetUserRole(r.Context()) != models.RoleAdmin {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only admins can change roles"})
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load user"})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Image != "" {
		user.Image = req.Image
	}
	if req.Role != "" {
		user.Role = req.Role
	}

	emailChanged := req.Email != "" && req.Email != user.Email
	if emailChanged {
		var count int64
		if err := h.db.WithContext(r.Context()).Model(&models.User{}).
			Where("email = ?", req.Email).
			Count(&count).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update user"})
			return
		}
		if count > 0 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email already exists"})
			return
		}

		// A new address has to be verified again before it can log in.
		user.Email = req.Email
		user.EmailVerified = false
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update user"})
			return
		}
		user.PasswordHash = hash
	}

	if err := h.db.WithContext(r.Context()).Save(&user).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update user"})
		return
	}

	if emailChanged {
		h.authService.BeginEmailVerification(r.Context(), &user)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load user"})
		return
	}

	// Delete bottom-up; SQLite test databases do not enforce the cascade.
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id IN (?)",
			tx.Model(&models.Conversation{}).Select("id").Where("user_id = ?", user.ID),
		).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete user"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
