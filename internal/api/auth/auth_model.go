package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity claim carried by the cookie token. There is no
// server-side session store; the signed claim is the whole session.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
}

// LoginResponse represents the login response body.
type LoginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// MeResponse is the "who am I" payload.
type MeResponse struct {
	Username string `json:"username"`
}
