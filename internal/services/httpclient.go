package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// maxErrorBodyBytes bounds how much of an error response is read
const maxErrorBodyBytes = 64 << 10

// TokenSource supplies the bearer token attached to each request.
// An empty token with a nil error means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token implements TokenSource
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// HTTPClient wraps the standard http.Client with the service base URL, auth and error decoding.
// It never retries on its own; callers that need retries use lib.ExecuteWithRetry.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	tokens  TokenSource
	logger  *lib.Logger
}

// NewHTTPClient creates an HTTP client for the analysis service
func NewHTTPClient(api models.APIConfig, tokens TokenSource, logger *lib.Logger) *HTTPClient {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: api.RequestTimeout(),
		},
		baseURL: strings.TrimRight(api.BaseURL, "/"),
		tokens:  tokens,
		logger:  logger,
	}
}

// URL joins a service path onto the base URL
func (c *HTTPClient) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// NewRequest builds a request against the service with Accept and Authorization set
func (c *HTTPClient) NewRequest(ctx context.Context, method string, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// Do executes a request and classifies the outcome.
// A transport failure becomes a network error, or a cancelled error when ctx is done.
// A non-2xx response is consumed and returned as a server error.
// On success the caller owns resp.Body.
func (c *HTTPClient) Do(op string, req *http.Request) (*http.Response, error) {
	lib.LogServiceCall(c.logger, req.URL.Host, req.URL.Path, req.Method)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, lib.ErrCancelled(op, ctxErr)
		}
		c.logger.Error("Request failed", "op", op, "url", req.URL.String(), "error", err)
		return nil, lib.ErrNetwork(op, c.baseURL, err)
	}

	lib.LogServiceResponse(c.logger, req.URL.Host, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		c.logger.Error("Service returned error",
			"op", op,
			"status_code", resp.StatusCode,
			"error_body", string(bodyBytes))

		return nil, lib.ErrServer(op, resp.StatusCode, ExtractErrorMessage(resp.StatusCode, bodyBytes))
	}

	return resp, nil
}

// GetJSON performs a GET and decodes the JSON response into out
func (c *HTTPClient) GetJSON(ctx context.Context, op string, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(op, req, out)
}

// PostJSON performs a POST with a JSON body and decodes the JSON response into out
func (c *HTTPClient) PostJSON(ctx context.Context, op string, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(op, req, out)
}

func (c *HTTPClient) doJSON(op string, req *http.Request, out any) error {
	resp, err := c.Do(op, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return lib.ErrCancelled(op, ctxErr)
		}
		return lib.ErrInvalidResponse(op, resp.StatusCode, err)
	}
	return nil
}

// Ping checks if the analysis service is reachable
func (c *HTTPClient) Ping(ctx context.Context) error {
	c.logger.Debug("Checking analysis service connectivity", "url", c.baseURL)
	return c.GetJSON(ctx, "ping", "/documents/health", nil, nil)
}

// ExtractErrorMessage pulls the human-readable message out of an error body.
// Lookup order: error.message, detail.error.message, detail (string), then "HTTP <code>".
func ExtractErrorMessage(statusCode int, body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	fallback := fmt.Sprintf("HTTP %d", statusCode)

	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &envelope) != nil {
		return fallback
	}

	if envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	if len(envelope.Detail) > 0 {
		var nested struct {
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(envelope.Detail, &nested) == nil && nested.Error != nil && nested.Error.Message != "" {
			return nested.Error.Message
		}

		var detail string
		if json.Unmarshal(envelope.Detail, &detail) == nil && detail != "" {
			return detail
		}
	}

	return fallback
}

// ProgressReader wraps an io.Reader and calls a callback with bytes read
type ProgressReader struct {
	Reader   io.Reader
	Callback func(int64)
	total    int64
}

func (r *ProgressReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.total += int64(n)
	if r.Callback != nil && n > 0 {
		r.Callback(r.total)
	}
	return n, err
}
