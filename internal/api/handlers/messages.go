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

type MessageHandler struct {
	db *gorm.DB
}

func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{db: db}
}

// loadOwnedConversation fetches the conversation and enforces the
// owner-or-admin rule shared by both message endpoints.
func (h *MessageHandler) loadOwnedConversation(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*models.Conversation, bool) {
	var conversation models.Conversation
	if err := h.db.WithContext(r.Context()).First(&conversation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Conversation not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load conversation"})
		return nil, false
	}

	currentID := middleware.GetUserID(r.Context())
	if middleware.GetUserRole(r.Context()) != models.RoleAdmin && conversation.UserID != currentID {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		return nil, false
	}

	return &conversation, true
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid conversation ID"})
		return
	}

	conversation, ok := h.loadOwnedConversation(w, r, conversationID)
	if !ok {
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		Role:           req.Role,
		Content:        req.Content,
	}

	if err := h.db.WithContext(r.Context()).Create(&message).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create message"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageToResponse(&message))
}

func (h *MessageHandler) ListByConversation(w http.ResponseWriter, r *http.Request) {
	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid conversation ID"})
		return
	}

	if _, ok := h.loadOwnedConversation(w, r, conversationID); !ok {
		return
	}

	var messages []models.Message
	if err := h.db.WithContext(r.Context()).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list messages"})
		return
	}

	responses := make([]dto.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = dto.MessageToResponse(&messages[i])
	}

	writeJSON(w, http.StatusOK, responses)
}
