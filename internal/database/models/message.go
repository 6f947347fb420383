package models

import "github.com/google/uuid"

type Message struct {
	Base
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null" json:"conversation_id"`
	Role           string    `gorm:"not null" json:"role"` // e.g. user, assistant
	Content        string    `gorm:"not null" json:"content"`
}

func (Message) TableName() string {
	return "messages"
}
