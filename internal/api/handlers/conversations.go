package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/api/dto"
	"github.com/sanadchat/sanad/internal/api/middleware"
	"github.com/sanadchat/sanad/internal/database/models"
	"gorm.io/gorm"
)

type ConversationHandler struct {
	db *gorm.DB
}

func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	conversation := models.Conversation{
		Title:  req.Title,
		UserID: middleware.GetUserID(r.Context()),
	}

	if err := h.db.WithContext(r.Context()).Create(&conversation).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create conversation"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.ConversationToResponse(&conversation))
}

func (h *ConversationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	currentID := middleware.GetUserID(r.Context())
	if middleware.GetUserRole(r.Context()) != models.RoleAdmin && userID != currentID {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		return
	}

	var conversations []models.Conversation
	if err := h.db.WithContext(r.Context()).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&conversations).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list conversations"})
		return
	}

	responses := make([]dto.ConversationResponse, len(conversations))
	for i := range conversations {
		responses[i] = dto.ConversationToResponse(&conversations[i])
	}

	writeJSON(w, http.StatusOK, responses)
}

func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid conversation ID"})
		return
	}

	var conversation models.Conversation
	if err := h.db.WithContext(r.Context()).First(&conversation, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Conversation not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load conversation"})
		return
	}

	currentID := middleware.GetUserID(r.Context())
	if middleware.GetUserRole(r.Context()) != models.RoleAdmin && conversation.UserID != currentID {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		return
	}

	// Messages go first; SQLite test databases do not enforce the cascade.
	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conversation).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete conversation"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
