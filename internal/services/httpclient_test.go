package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error.message", 400, `{"error":{"code":"INVALID_FILE","message":"Unsupported file"}}`, "Unsupported file"},
		{"detail.error.message", 413, `{"detail":{"error":{"message":"File too large"}}}`, "File too large"},
		{"detail string", 404, `{"detail":"Document not found"}`, "Document not found"},
		{"error.message wins over detail", 400, `{"error":{"message":"first"},"detail":"second"}`, "first"},
		{"detail list", 422, `{"detail":[{"loc":["body","file"],"msg":"field required"}]}`, "HTTP 422"},
		{"empty error message", 500, `{"error":{"message":""}}`, "HTTP 500"},
		{"not json", 502, `<html>Bad Gateway</html>`, "HTTP 502"},
		{"empty body", 503, ``, "HTTP 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractErrorMessage(tt.status, []byte(tt.body)))
		})
	}
}

func TestHTTPClient_AuthorizationHeader(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()
	require.NoError(t, newTestClient(t, srv, StaticToken("secret")).Ping(ctx))
	require.NoError(t, newTestClient(t, srv, StaticToken("")).Ping(ctx))
	require.NoError(t, newTestClient(t, srv, nil).Ping(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer secret", "", ""}, got)
}

func TestHTTPClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(models.APIConfig{BaseURL: srv.URL + "/api/v1/", RequestTimeoutSeconds: 5}, nil, quietLogger())
	assert.Equal(t, srv.URL+"/api/v1/jobs/T1", client.URL("jobs/T1"))
	require.NoError(t, client.Ping(context.Background()))
}

func TestHTTPClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Job not found"}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(t, srv, nil).GetJSON(context.Background(), "poll", "/jobs/nope", nil, &out)

	var wfErr *lib.WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, lib.KindServer, wfErr.Kind)
	assert.Equal(t, "poll", wfErr.Op)
	assert.Equal(t, http.StatusNotFound, wfErr.HTTPStatus)
	assert.Equal(t, "Job not found", wfErr.Message)
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, srv, nil)
	srv.Close()

	err := client.Ping(context.Background())
	assert.True(t, lib.IsKind(err, lib.KindNetwork), "got %v", err)
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestClient(t, srv, nil).Ping(ctx)
	assert.True(t, lib.IsKind(err, lib.KindCancelled), "got %v", err)
}

func TestHTTPClient_GetJSONQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "high", r.URL.Query().Get("risk_level"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := newTestClient(t, srv, nil).GetJSON(context.Background(), "clauses", "/x", url.Values{"risk_level": {"high"}}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestHTTPClient_UndecodableSuccessBody(t *testing.T) {
	for name, body := range map[string]string{
		"empty":     "",
		"html":      "<html>",
		"truncated": `{"id":`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			var out map[string]any
			err := newTestClient(t, srv, nil).GetJSON(context.Background(), "fetch", "/analysis/A1", nil, &out)

			var wfErr *lib.WorkflowError
			require.ErrorAs(t, err, &wfErr)
			assert.Equal(t, lib.KindServer, wfErr.Kind)
			assert.Equal(t, "fetch", wfErr.Op)
			assert.Equal(t, http.StatusOK, wfErr.HTTPStatus)
			assert.Equal(t, "invalid response body", lib.Reason(err))
			assert.Error(t, wfErr.Cause)
		})
	}
}

func TestProgressReader(t *testing.T) {
	var seen []int64
	r := &ProgressReader{
		Reader:   bytes.NewReader(make([]byte, 10)),
		Callback: func(n int64) { seen = append(seen, n) },
	}

	buf := make([]byte, 4)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, []int64{4, 8, 10}, seen)
}
