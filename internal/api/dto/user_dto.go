package dto

import (
	"time"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// UserRegisterRequest payload for new accounts. Presence is checked by the service.
type UserRegisterRequest struct {
	Username string `json:"username" validate:"max=100"`
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"omitempty,oneof=employee admin"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password"`
}

// RegisteredUser is the account echoed back after registration.
type RegisteredUser struct {
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// RegisterResponse body of POST /api/auth/register.
type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// SessionUser is the public projection embedded in the login response.
type SessionUser struct {
	UserID   int64       `json:"userId"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// LoginResponse body of POST /api/auth/login.
type LoginResponse struct {
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

// NewRegisterResponse maps a freshly created user.
func NewRegisterResponse(u *domain.User) RegisterResponse {
	return RegisterResponse{
		Message: "User registered successfully",
		User: RegisteredUser{
			UserID:    u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		},
	}
}

// NewLoginResponse maps a successful login.
func NewLoginResponse(token string, expiresAt time.Time, u *domain.User) LoginResponse {
	return LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		User: SessionUser{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		},
	}
}
