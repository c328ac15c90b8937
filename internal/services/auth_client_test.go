package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

func TestAuthClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jan@example.com", body.Email)
		assert.Equal(t, "tajne", body.Password)

		_, _ = w.Write([]byte(`{"user":{"id":"U1","email":"jan@example.com","is_active":true},"token":{"access_token":"tok","token_type":"bearer","expires_in":3600}}`))
	}))
	defer srv.Close()

	before := time.Now()
	cred, err := NewAuthClient(newTestClient(t, srv, nil), quietLogger()).Login(context.Background(), " jan@example.com ", "tajne")
	require.NoError(t, err)

	assert.Equal(t, "tok", cred.AccessToken)
	assert.Equal(t, "jan@example.com", cred.Email)
	assert.WithinDuration(t, before.Add(time.Hour), cred.ExpiresAt, 5*time.Second)
}

func TestAuthClient_LoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	}))
	defer srv.Close()

	_, err := NewAuthClient(newTestClient(t, srv, nil), quietLogger()).Login(context.Background(), "jan@example.com", "zle")

	var wfErr *lib.WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, lib.KindServer, wfErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, wfErr.HTTPStatus)
	assert.Equal(t, "Incorrect email or password", wfErr.Message)
}

func TestAuthClient_LoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"email":"jan@example.com"},"token":{}}`))
	}))
	defer srv.Close()

	_, err := NewAuthClient(newTestClient(t, srv, nil), quietLogger()).Login(context.Background(), "jan@example.com", "tajne")
	assert.True(t, lib.IsKind(err, lib.KindMissingReference), "got %v", err)
}

func TestAuthClient_LoginValidation(t *testing.T) {
	client := NewAuthClient(offlineClient(), quietLogger())

	_, err := client.Login(context.Background(), "", "x")
	assert.True(t, lib.IsKind(err, lib.KindValidation))

	_, err = client.Login(context.Background(), "jan@example.com", "")
	assert.True(t, lib.IsKind(err, lib.KindValidation))
}
