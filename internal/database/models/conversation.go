package models

import "github.com/google/uuid"

type Conversation struct {
	Base
	Title  string    `gorm:"not null" json:"title"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	// Messages in insertion order
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages"`
}

func (Conversation) TableName() string {
	return "conversations"
}
