package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest is the sign-up form. Email and password are checked by the auth
// service so each failure can be reported with its own cause.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Religion  string `json:"religion"`
	Birth     string `json:"birth"`
	Photo     string `json:"photo"`
}

// RegisterResponse describes the created account.
type RegisterResponse struct {
	UserID  string  `json:"user_id"`
	Profile Profile `json:"profile"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// TokenPair is the credential set handed out by login and refresh.
// ExpiresIn is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresIn        int64     `json:"expires_in"`
	IssuedAt         time.Time `json:"issued_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoginResponse returns the issued tokens and the signed-in user.
type LoginResponse struct {
	TokenPair
	User UserInfo `json:"user"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse carries the rotated token pair.
type RefreshTokenResponse struct {
	TokenPair
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
