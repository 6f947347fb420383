package dto

import (
	"github.com/sanadchat/sanad/internal/api/validation"
	"github.com/sanadchat/sanad/internal/database/models"
)

type UserResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Image         string                 `json:"image,omitempty"`
	Role          string                 `json:"role"`
	EmailVerified bool                   `json:"email_verified"`
	Conversations []ConversationResponse `json:"conversations"`
}

func UserToResponse(u *models.User) UserResponse {
	conversations := make([]ConversationResponse, len(u.Conversations))
	for i := range u.Conversations {
		conversations[i] = ConversationToResponse(&u.Conversations[i])
	}

	return UserResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Image:         u.Image,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		Conversations: conversations,
	}
}

// UpdateUserRequest carries a partial profile update. Empty fields are
// left untouched.
type UpdateUserRequest struct {
	Name     string `json:"name,omitempty"`
	Image    string `json:"image,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (r UpdateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email != "" && !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}
	if r.Password != "" {
		if ok, msg := validation.IsValidPassword(r.Password); !ok {
			errors["password"] = msg
		}
	}
	if r.Role != "" && r.Role != models.RoleUser && r.Role != models.RoleAdmin {
		errors["role"] = "Role must be user or admin"
	}

	return errors
}
