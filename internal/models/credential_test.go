package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCredential(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := LoginResponse{
		User:  User{Email: "jan@example.com"},
		Token: AccessToken{AccessToken: "tok", ExpiresIn: 3600},
	}

	cred := NewCredential(resp, now)
	assert.Equal(t, "tok", cred.AccessToken)
	assert.Equal(t, "bearer", cred.TokenType)
	assert.Equal(t, "jan@example.com", cred.Email)
	assert.Equal(t, now, cred.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), cred.ExpiresAt)

	assert.False(t, cred.Expired(now.Add(59*time.Minute)))
	assert.True(t, cred.Expired(now.Add(time.Hour)))
}

func TestCredential_Expired(t *testing.T) {
	now := time.Now()
	assert.True(t, Credential{}.Expired(now))
	assert.False(t, Credential{AccessToken: "tok"}.Expired(now.Add(24*365*time.Hour)))

	noExpiry := NewCredential(LoginResponse{Token: AccessToken{AccessToken: "tok", TokenType: "Bearer"}}, now)
	assert.True(t, noExpiry.ExpiresAt.IsZero())
	assert.Equal(t, "Bearer", noExpiry.TokenType)
}
