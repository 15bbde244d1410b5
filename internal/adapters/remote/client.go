// Package remote is the HTTP client of the remote state service. Network
// and server failures map to apperrors.ErrRemoteUnavailable; error bodies
// in the service's {error, detail} shape are folded into the message.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// Client talks to the /api/v1/state endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.RemoteStore = (*Client)(nil)

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type statePayload struct {
	Data          json.RawMessage `json:"data"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
	SchemaVersion int             `json:"schemaVersion,omitempty"`
}

type savePayload struct {
	OK        bool      `json:"ok"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type errorPayload struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Fetch retrieves the document under key. A key the service has never
// seen yields Exists=false, not an error.
func (c *Client) Fetch(ctx context.Context, key string) (ports.RemoteDocument, error) {
	endpoint := fmt.Sprintf("%s/api/v1/state?key=%s", c.baseURL, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.RemoteDocument{}, fmt.Errorf("failed to build state request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.RemoteDocument{}, fmt.Errorf("%w: %v", apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.RemoteDocument{}, responseError(resp)
	}

	var payload statePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ports.RemoteDocument{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}
	if len(payload.Data) == 0 || string(payload.Data) == "null" {
		return ports.RemoteDocument{Exists: false}, nil
	}
	doc := ports.RemoteDocument{
		Data:          payload.Data,
		SchemaVersion: payload.SchemaVersion,
		Exists:        true,
	}
	if payload.UpdatedAt != nil {
		doc.UpdatedAt = *payload.UpdatedAt
	}
	return doc, nil
}

// Save overwrites the document under key and returns the server's write
// timestamp.
func (c *Client) Save(ctx context.Context, key string, data []byte) (time.Time, error) {
	body, err := json.Marshal(map[string]json.RawMessage{
		"key":  json.RawMessage(fmt.Sprintf("%q", key)),
		"data": json.RawMessage(data),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to encode state payload: %w", err)
	}

	endpoint := c.baseURL + "/api/v1/state"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build state request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, responseError(resp)
	}

	var payload savePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}
	if payload.UpdatedAt.IsZero() {
		payload.UpdatedAt = time.Now()
	}
	return payload.UpdatedAt, nil
}

// responseError folds the service's {error, detail} body into a readable
// message, falling back to the HTTP status.
func responseError(resp *http.Response) error {
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		switch {
		case payload.Error != "" && payload.Detail != "":
			return fmt.Errorf("%w: %s %s", apperrors.ErrRemoteUnavailable, payload.Error, payload.Detail)
		case payload.Detail != "":
			return fmt.Errorf("%w: %s", apperrors.ErrRemoteUnavailable, payload.Detail)
		case payload.Error != "":
			return fmt.Errorf("%w: %s", apperrors.ErrRemoteUnavailable, payload.Error)
		}
	}
	return fmt.Errorf("%w: erro %d", apperrors.ErrRemoteUnavailable, resp.StatusCode)
}

// AutologinResult is the identity the service resolves for a one-time
// worker token.
type AutologinResult struct {
	OrgID      string `json:"orgId"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	CanPunch   bool   `json:"canPunch"`
}

// Autologin exchanges a one-time access token for a worker identity. The
// caller must not persist or re-send the token afterwards.
func (c *Client) Autologin(ctx context.Context, token string) (*AutologinResult, error) {
	body, _ := json.Marshal(map[string]string{"token": token})
	endpoint := c.baseURL + "/api/v1/auth/autologin"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build autologin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result AutologinResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
		}
		return &result, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, apperrors.ErrUnauthorized
	default:
		return nil, responseError(resp)
	}
}

// Online reports whether the service answers its health endpoint. It is
// the agent's connectivity probe, so it uses a short deadline independent
// of the client timeout.
func (c *Client) Online() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
