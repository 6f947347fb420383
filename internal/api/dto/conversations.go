package dto

import (
	"time"

	"github.com/sanadchat/sanad/internal/api/validation"
	"github.com/sanadchat/sanad/internal/database/models"
)

type CreateConversationRequest struct {
	Title string `json:"title"`
}

func (r CreateConversationRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}

	return errors
}

type ConversationResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	UserID    string            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []MessageResponse `json:"messages"`
}

func ConversationToResponse(c *models.Conversation) ConversationResponse {
	messages := make([]MessageResponse, len(c.Messages))
	for i := range c.Messages {
		messages[i] = MessageToResponse(&c.Messages[i])
	}

	return ConversationResponse{
		ID:        c.ID.String(),
		Title:     c.Title,
		UserID:    c.UserID.String(),
		CreatedAt: c.CreatedAt,
		Messages:  messages,
	}
}

type CreateMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

func (r CreateMessageRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.ConversationID == "" {
		errors["conversation_id"] = "Conversation ID is required"
	} else if !validation.IsValidUUID(r.ConversationID) {
		errors["conversation_id"] = "Conversation ID must be a valid UUID"
	}
	if r.Role == "" {
		errors["role"] = "Role is required"
	}
	if r.Content == "" {
		errors["content"] = "Content is required"
	}

	return errors
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func MessageToResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
