package dto

import (
	"github.com/sanadchat/sanad/internal/api/validation"
	"github.com/sanadchat/sanad/internal/database/models"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.Role != "" && r.Role != models.RoleUser && r.Role != models.RoleAdmin {
		errors["role"] = "Role must be user or admin"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}

	return errors
}

type ResetPasswordRequest struct {
	UserID      string `json:"userId"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.UserID == "" {
		errors["userId"] = "User ID is required"
	} else if !validation.IsValidUUID(r.UserID) {
		errors["userId"] = "User ID must be a valid UUID"
	}
	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.NewPassword == "" {
		errors["newPassword"] = "New password is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["newPassword"] = msg
	}

	return errors
}
