package auth

import (
	"github.com/angelmondragon/sweetshop-backend/internal/users"
)

// RegisterRequest captures the fields needed to open an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (RegisterRequest) ValidationMessage() string {
	return allFieldsRequiredMessage
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (LoginRequest) ValidationMessage() string {
	return credentialsRequiredMessage
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
