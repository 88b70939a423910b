package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned after sign-up.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Message     string    `json:"message"`
	Name        string    `json:"name"`
	UserID      int64     `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CheckAuthResponse describes the current agent.
type CheckAuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
}

// NewLoginResponse builds the login body.
func NewLoginResponse(user *domain.User, token *domain.Token) LoginResponse {
	return LoginResponse{
		Message:     "Logged in",
		Name:        user.Name,
		UserID:      user.ID,
		AccessToken: token.Value,
		ExpiresAt:   token.ExpiresAt,
	}
}

// NewCheckAuthResponse builds the identity body.
func NewCheckAuthResponse(user *domain.User) CheckAuthResponse {
	return CheckAuthResponse{
		Authenticated: true,
		Name:          user.Name,
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
	}
}

// MessageResponse is the body of plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}
