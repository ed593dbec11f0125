package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest is the admin login form
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=64"`
	Password string `json:"password" form:"password" binding:"required,max=72"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       AdminInfo `json:"admin"`
}

// AdminInfo identifies the signed-in admin
type AdminInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
