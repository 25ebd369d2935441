package auth

import "github.com/dhruvbhatia/bizdesk-backend/pkg/enums"

// LoginRequest exchanges an access token for a session.
type LoginRequest struct {
	Token string `json:"token" validate:"required,min=8"`
}

// RefreshRequest rotates a session with the previously issued pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest revokes the session behind the provided access token.
type LogoutRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// SessionResponse is the issued credential pair.
type SessionResponse struct {
	Role         enums.Role `json:"role"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
}
