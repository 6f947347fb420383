package models

// Roles assignable to users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Base
	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Image         string `json:"image,omitempty"`
	Role          string `gorm:"default:'user'" json:"role"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`

	// Relationships
	Conversations []Conversation `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"conversations,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
