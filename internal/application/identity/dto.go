package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// RegisterRequest creates a new account
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150" example:"alice"`
	Email     string `json:"email" binding:"required,email,max=254" example:"alice@example.com"`
	Password  string `json:"password" binding:"required,min=8,max=72" example:"s3cretpass"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// LoginRequest exchanges credentials for a token pair
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// LogoutRequest optionally revokes the refresh token along with the access token
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// UpdateMeRequest patches the authenticated user's account
type UpdateMeRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// ChangePasswordRequest replaces the password after checking the current one
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	TokenType        string    `json:"token_type" example:"Bearer"`
}

// UserResponse represents an account in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsStaff     bool       `json:"is_staff"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	DateJoined  time.Time  `json:"date_joined"`
}

// ToUserResponse converts a domain User
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		LastLoginAt: u.LastLoginAt,
		DateJoined:  u.CreatedAt,
	}
}

func toTokenResponse(p *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		Access:           p.AccessToken,
		Refresh:          p.RefreshToken,
		AccessExpiresAt:  p.AccessTokenExpiresAt,
		RefreshExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:        p.TokenType,
	}
}
