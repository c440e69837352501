// Package portal implements the remote fetch capability: a thin REST
// client for the school-information-system proxy. The client performs
// no retries; the synchronizer treats any failure uniformly through
// its cache-fallback path.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Satchel/1.0"
)

// Client implements domain.PortalRepository and domain.AuthState
// against the portal proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.RWMutex
	token        string
	refreshToken string
}

// NewClient creates a portal client with the given credentials. Either
// token may be empty; IsAuthenticated reports whether an access token
// is held.
func NewClient(baseURL, token, refreshToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:       logger,
		token:        token,
		refreshToken: refreshToken,
	}
}

// IsAuthenticated reports whether an access token is held.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// RefreshToken returns the current refresh token, which may rotate on
// Refresh.
func (c *Client) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken
}

// doRequest performs an authenticated request and decodes the response
// envelope, returning the raw body for per-endpoint data decoding.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("portal request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("portal request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("portal request error", "status", resp.StatusCode, "body", string(raw))
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrFetchFailed, envelope.Error.Title, envelope.Error.Detail)
		}
		return nil, domain.ErrFetchFailed
	}

	return raw, nil
}

// GetAbsences returns all recorded absences.
func (c *Client) GetAbsences(ctx context.Context) ([]domain.Absence, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/absences", nil, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []wireAbsence `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode absences: %w", err)
	}

	absences := make([]domain.Absence, len(payload.Data))
	for i, w := range payload.Data {
		absences[i] = w.toDomain()
	}
	c.logger.Debug("fetched absences", "count", len(absences))
	return absences, nil
}

// GetGrades returns all published grades.
func (c *Client) GetGrades(ctx context.Context) ([]domain.Grade, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/grades", nil, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []wireGrade `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode grades: %w", err)
	}

	grades := make([]domain.Grade, len(payload.Data))
	for i, w := range payload.Data {
		grades[i] = w.toDomain()
	}
	c.logger.Debug("fetched grades", "count", len(grades))
	return grades, nil
}

// GetPlanning returns planning entries between from and to.
func (c *Client) GetPlanning(ctx context.Context, from, to time.Time) ([]domain.CourseEvent, error) {
	query := url.Values{}
	query.Set("from", from.Format(time.RFC3339))
	query.Set("to", to.Format(time.RFC3339))

	raw, err := c.doRequest(ctx, http.MethodGet, "/planning", query, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []wireEvent `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode planning: %w", err)
	}

	events := make([]domain.CourseEvent, len(payload.Data))
	for i, w := range payload.Data {
		events[i] = w.toDomain()
	}
	c.logger.Debug("fetched planning", "count", len(events))
	return events, nil
}

var (
	_ domain.PortalRepository = (*Client)(nil)
	_ domain.AuthState        = (*Client)(nil)
)
