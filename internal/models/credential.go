package models

import (
	"strings"
	"time"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the account returned alongside an access token
type User struct {
	ID         string    `json:"id" yaml:"id"`
	Email      string    `json:"email" yaml:"email"`
	FullName   *string   `json:"full_name" yaml:"full_name,omitempty"`
	IsActive   bool      `json:"is_active" yaml:"is_active"`
	IsAdmin    bool      `json:"is_admin" yaml:"is_admin"`
	IsReviewer bool      `json:"is_reviewer" yaml:"is_reviewer"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// AccessToken is the bearer token issued by the service
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// LoginResponse is the body returned by POST /auth/login
type LoginResponse struct {
	User  User        `json:"user"`
	Token AccessToken `json:"token"`
}

// Credential is the cached access credential stored on disk
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
	IssuedAt    time.Time `json:"issued_at"`
}

// NewCredential builds a Credential from a login response issued at now
func NewCredential(resp LoginResponse, now time.Time) Credential {
	tokenType := resp.Token.TokenType
	if strings.TrimSpace(tokenType) == "" {
		tokenType = "bearer"
	}
	var expiresAt time.Time
	if resp.Token.ExpiresIn > 0 {
		expiresAt = now.Add(time.Duration(resp.Token.ExpiresIn) * time.Second)
	}
	return Credential{
		AccessToken: resp.Token.AccessToken,
		TokenType:   tokenType,
		Email:       resp.User.Email,
		ExpiresAt:   expiresAt,
		IssuedAt:    now,
	}
}

// Expired reports whether the credential can no longer be used at now.
// A zero ExpiresAt never expires.
func (c Credential) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
