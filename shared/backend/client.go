// Package backend is the HTTP client for the menu backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/utils"
)

var (
	// ErrUnauthorized is returned when the backend rejects the bearer token
	ErrUnauthorized = errors.New("backend rejected credentials")
	// ErrNotFound is returned when an owner resource does not exist
	ErrNotFound = errors.New("backend resource not found")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Response is a raw backend answer. The body is kept verbatim so the result
// classifier can inspect the envelope markers.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client talks to the menu backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *utils.CircuitBreaker
}

// NewClient creates a backend client guarded by a circuit breaker
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    utils.NewCircuitBreaker("menu-backend", 5, 30*time.Second),
	}
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Breaker exposes the circuit breaker for health reporting
func (c *Client) Breaker() *utils.CircuitBreaker {
	return c.breaker
}

// Do sends a request and returns the raw response. Only transport failures
// and 5xx answers count against the circuit breaker; a cancelled caller does not.
func (c *Client) Do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*Response, error) {
	var out *Response
	var cancelled error
	err := c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				cancelled = ctx.Err()
				return utils.ErrAbandoned
			}
			return fmt.Errorf("failed to communicate with backend: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			if ctx.Err() != nil {
				cancelled = ctx.Err()
				return utils.ErrAbandoned
			}
			return fmt.Errorf("failed to read backend response: %w", err)
		}
		out = &Response{StatusCode: resp.StatusCode, Body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			return &APIError{StatusCode: resp.StatusCode, Message: messageOf(data)}
		}
		return nil
	})
	if cancelled != nil {
		return nil, cancelled
	}
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && out != nil {
			// 5xx still carries a body the classifier may want to read
			return out, nil
		}
		logrus.WithFields(logrus.Fields{"method": method, "path": path}).Warnf("Backend call failed: %v", err)
		return nil, err
	}
	return out, nil
}

// getJSON performs an authenticated GET and decodes the body into dst
func (c *Client) getJSON(ctx context.Context, path, token string, dst interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, dst)
}

// sendJSON performs an authenticated request with a JSON body
func (c *Client) sendJSON(ctx context.Context, method, path, token string, payload, dst interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	resp, err := c.Do(ctx, method, path, token, body, "application/json")
	if err != nil {
		return err
	}
	return decodeResponse(resp, dst)
}

func decodeResponse(resp *Response, dst interface{}) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case !resp.OK():
		return &APIError{StatusCode: resp.StatusCode, Message: messageOf(resp.Body)}
	}
	if dst == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// messageOf extracts message or error from a JSON error body
func messageOf(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return "unexpected backend response"
}

// HealthCheck checks if the backend is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
