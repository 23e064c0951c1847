// Package identity holds the client side of the external identity provider:
// it acquires the service account's bearer token with the client-credentials
// grant and keeps it fresh on a fixed interval. Authentication itself lives in
// the provider; this package only carries tokens.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/turnapp-dev/scheduling-console/backend/internal/config"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenSource fetches and caches the outbound service token. Safe for
// concurrent use.
type TokenSource struct {
	cfg        *config.Config
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewTokenSource(cfg *config.Config) *TokenSource {
	return &TokenSource{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Identity.RequestTimeout) * time.Second,
		},
	}
}

// Token returns the current bearer token. Empty until the first successful
// refresh.
func (ts *TokenSource) Token() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.token
}

// Refresh acquires a new token from the provider's token endpoint.
func (ts *TokenSource) Refresh(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", ts.cfg.Identity.ClientID)
	form.Set("client_secret", ts.cfg.Identity.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.cfg.Identity.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := ts.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("token endpoint returned status %d", res.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tr); err != nil {
		return err
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("token endpoint returned an empty access token")
	}

	ts.mu.Lock()
	ts.token = tr.AccessToken
	ts.mu.Unlock()
	return nil
}

// Run refreshes the token on a fixed interval until ctx is cancelled. A failed
// refresh keeps the previous token; the next tick retries.
func (ts *TokenSource) Run(ctx context.Context) {
	interval := time.Duration(ts.cfg.Identity.RefreshInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ts.Refresh(ctx); err != nil {
				slog.Error("token refresh failed", "error", err)
			}
		}
	}
}
