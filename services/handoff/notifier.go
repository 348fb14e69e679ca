package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pavitra93/menulink/shared/models"
)

// Notifier relays handoff events to the owner notification endpoint
type Notifier struct {
	endpoint    string
	httpClient  *http.Client
	connected   bool
	relayed     int64
	failed      int64
	lastSuccess time.Time
	lastError   error
	mutex       sync.RWMutex
}

// NewNotifier creates a notifier for endpoint
func NewNotifier(endpoint string, httpClient *http.Client) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Notifier{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Relay posts one handoff event
func (n *Notifier) Relay(ctx context.Context, event models.HandoffEvent) error {
	payload := map[string]interface{}{
		"event_type": "handoff_" + string(event.Kind),
		"data":       event,
		"timestamp":  time.Now().UTC(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return n.fail(fmt.Errorf("failed to marshal handoff event: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/handoffs", bytes.NewReader(jsonData))
	if err != nil {
		return n.fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restaurant-Slug", event.RestaurantSlug)
	req.Header.Set("X-Event-ID", event.ID.String())

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return n.fail(fmt.Errorf("failed to relay handoff: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return n.fail(fmt.Errorf("notify endpoint returned status %d", resp.StatusCode))
	}

	n.mutex.Lock()
	n.connected = true
	n.relayed++
	n.lastSuccess = time.Now()
	n.lastError = nil
	n.mutex.Unlock()
	return nil
}

func (n *Notifier) fail(err error) error {
	n.mutex.Lock()
	n.failed++
	n.lastError = err
	n.mutex.Unlock()
	return err
}

// Ping checks that the endpoint answers its health route
func (n *Notifier) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"/health", nil)
	if err != nil {
		return n.fail(fmt.Errorf("failed to create health check request: %w", err))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return n.fail(fmt.Errorf("health check failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return n.fail(fmt.Errorf("health check returned status %d", resp.StatusCode))
	}

	n.mutex.Lock()
	n.connected = true
	n.lastSuccess = time.Now()
	n.lastError = nil
	n.mutex.Unlock()
	return nil
}

// GetStatus returns the current connection status
func (n *Notifier) GetStatus() map[string]interface{} {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	status := map[string]interface{}{
		"connected":    n.connected,
		"endpoint":     n.endpoint,
		"last_success": n.lastSuccess,
		"metrics": map[string]interface{}{
			"relayed": n.relayed,
			"failed":  n.failed,
		},
	}
	if n.lastError != nil {
		status["last_error"] = n.lastError.Error()
	}
	return status
}
