package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the session token payload. Role is advisory only; the
// current role is always read back from the user store.
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
