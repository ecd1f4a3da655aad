// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package identity talks to the authentication provider's admin API.
package identity

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

	"github.com/cardinalhq/gallerykeeper/internal/idgen"
	"github.com/cardinalhq/gallerykeeper/internal/logctx"
)

// ErrNotConfigured is returned by Noop.RemoveUser so callers fall back to
// removing identity rows themselves.
var ErrNotConfigured = errors.New("identity provider admin API not configured")

// Provider is the admin surface of the authentication provider.
type Provider interface {
	// RevokeSessions ends every live session of the user.
	RevokeSessions(ctx context.Context, userID string) error
	// RemoveUser deletes the user and the rows the provider owns for it.
	RemoveUser(ctx context.Context, userID string) error
}

const defaultTimeout = 10 * time.Second

type Config struct {
	AdminURL   string        `mapstructure:"admin_url"`
	AdminToken string        `mapstructure:"admin_token"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() Config {
	return Config{Timeout: defaultTimeout}
}

// New returns an HTTP provider, or Noop when no admin URL is configured.
func New(cfg Config) Provider {
	if strings.TrimSpace(cfg.AdminURL) == "" {
		return Noop{}
	}
	return NewHTTPProvider(cfg)
}

// Noop is used when the admin API is not configured. Session rows are still
// removed by teardown, so revoking is a no-op success.
type Noop struct{}

func (Noop) RevokeSessions(context.Context, string) error { return nil }

func (Noop) RemoveUser(context.Context, string) error { return ErrNotConfigured }

const (
	revokeSessionsPath = "/admin/revoke-user-sessions"
	removeUserPath     = "/admin/remove-user"
)

type HTTPProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPProvider(cfg Config) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.AdminURL, "/"),
		token:   cfg.AdminToken,
		client:  &http.Client{Timeout: timeout},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("identity admin %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

func (p *HTTPProvider) RevokeSessions(ctx context.Context, userID string) error {
	return p.post(ctx, revokeSessionsPath, userID)
}

func (p *HTTPProvider) RemoveUser(ctx context.Context, userID string) error {
	return p.post(ctx, removeUserPath, userID)
}

type userRequest struct {
	UserID string `json:"userId"`
}

func (p *HTTPProvider) post(ctx context.Context, path, userID string) error {
	body, err := json.Marshal(userRequest{UserID: userID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build identity admin request: %w", err)
	}
	requestID := idgen.NewRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity admin %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	logctx.FromContext(ctx).Debug("Identity admin call succeeded",
		"path", path, "userID", userID, "requestID", requestID)
	return nil
}
