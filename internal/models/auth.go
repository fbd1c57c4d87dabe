package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims carried by access tokens.
type Claims struct {
	UserID     string   `json:"user_id"`
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	Department string   `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair bundles the access token returned on login.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
