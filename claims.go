package tutortime

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUse discriminates the two token families. Session and reset tokens are
// signed with distinct secrets, so neither can be replayed as the other; the
// use claim is a readable marker, not the security boundary.
type TokenUse = string

const (
	TokenUseSession       TokenUse = "session"
	TokenUsePasswordReset TokenUse = "password_reset"
)

// AuthClaims represents structured JWT claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Email() string
	HasRole(role string) bool
	Use() TokenUse
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string         `json:"uid,omitempty"`
	UserRole  string         `json:"role,omitempty"`
	UserEmail string         `json:"email,omitempty"`
	TokenUse  TokenUse       `json:"use,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the user's role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// HasRole checks if the user has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// Use returns the token family marker
func (c *JWTClaims) Use() TokenUse {
	if c.TokenUse == "" {
		return TokenUseSession
	}
	return c.TokenUse
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
