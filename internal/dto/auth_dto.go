package dto

import (
	"time"

	"task-manager-be/internal/entity"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string             `json:"token"`
	User      entity.UserProfile `json:"user"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// SessionStatusResponse mirrors what the client needs to render the auth
// state: whether the session is live, whether the expiry warning should
// show, and how many seconds remain.
type SessionStatusResponse struct {
	IsAuthenticated bool                `json:"is_authenticated"`
	SessionExpiring bool                `json:"session_expiring"`
	TimeLeftSeconds int64               `json:"time_left_seconds"`
	User            *entity.UserProfile `json:"user,omitempty"`
}
