package services

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// quietLogger keeps test output free of request logs
func quietLogger() *lib.Logger {
	return lib.NewLoggerWithWriter(lib.LogLevelError, io.Discard)
}

// newTestClient returns a client pointed at srv
func newTestClient(t *testing.T, srv *httptest.Server, tokens TokenSource) *HTTPClient {
	t.Helper()
	return NewHTTPClient(models.APIConfig{
		BaseURL:               srv.URL,
		UploadPath:            "/documents",
		RequestTimeoutSeconds: 5,
	}, tokens, quietLogger())
}

// offlineClient is for calls expected to fail before any request is sent
func offlineClient() *HTTPClient {
	return NewHTTPClient(models.DefaultConfig().API, nil, quietLogger())
}
