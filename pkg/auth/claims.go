package auth

import (
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Role enums.Role
	JTI  string
}

// AccessTokenClaims represents the typed JWT issued to clients. The role
// claim decides every authorization check for the session's lifetime.
type AccessTokenClaims struct {
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}
