package services

import (
	"context"
	"strings"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// AuthClient exchanges account credentials for an access token
type AuthClient struct {
	http   *HTTPClient
	logger *lib.Logger
}

// NewAuthClient creates an AuthClient using the given client
func NewAuthClient(httpClient *HTTPClient, logger *lib.Logger) *AuthClient {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &AuthClient{
		http:   httpClient,
		logger: logger,
	}
}

// Login posts the account credentials and returns the credential to cache
func (c *AuthClient) Login(ctx context.Context, email string, password string) (*models.Credential, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, lib.ErrValidation("email", "Email is required")
	}
	if password == "" {
		return nil, lib.ErrValidation("password", "Password is required")
	}

	c.logger.Info("Logging in", "email", email)

	var resp models.LoginResponse
	err := c.http.PostJSON(ctx, "login", "/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(resp.Token.AccessToken) == "" {
		return nil, lib.ErrMissingReference("login", "login response missing access_token")
	}

	cred := models.NewCredential(resp, time.Now())
	c.logger.Info("Logged in", "email", cred.Email, "expires_at", cred.ExpiresAt)
	return &cred, nil
}
