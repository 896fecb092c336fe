package auth

import (
	"github.com/angelmondragon/sweetshop-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the identity bound into a session token.
type AccessTokenPayload struct {
	UserID int64
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID int64      `json:"userId"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID int64
	Email  string
	Role   enums.Role
}

// IsAdmin reports whether the identity may mutate the catalog.
func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

// Identity returns the caller described by the claims.
func (c *AccessTokenClaims) Identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}
}
