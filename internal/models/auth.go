package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest identifies a principal by email. No password is involved.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty"`
}

// SignupRequest registers an administrator.
type SignupRequest struct {
	UserName string `json:"userName" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
}

// LoginResponse is returned alongside the session cookie.
type LoginResponse struct {
	Message   string    `json:"message"`
	Role      UserRole  `json:"role"`
	Token     string    `json:"token,omitempty"`
	ExpiresIn int64     `json:"expiresIn"`
	User      Principal `json:"user"`
}

// JWTClaims is the session payload: who, acting as what, in which department.
type JWTClaims struct {
	UserID     string   `json:"id"`
	Role       UserRole `json:"role"`
	Department string   `json:"department"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims belong to an administrator.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
