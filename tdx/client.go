//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package tdx is a client for the TDX (Taiwan transport open data) basic
// API: OAuth client-credentials auth plus JSON fetches with a tolerant
// parsing layer for the upstream's varying field shapes.
package tdx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/uzukizheng/parking-assistant/internal/httpclient"
	"github.com/uzukizheng/parking-assistant/log"
)

// Official TDX endpoints.
const (
	defaultTokenURL = "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"
	defaultAPIBase  = "https://tdx.transportdata.tw/api/basic"
)

// tokenSlack renews the cached token this long before its reported expiry.
const tokenSlack = 60 * time.Second

// Client calls the TDX basic API with bearer-token auth.
type Client struct {
	appID    string
	appKey   string
	tokenURL string
	apiBase  string
	httpc    *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

// WithAPIBase overrides the API base URL.
func WithAPIBase(u string) Option {
	return func(c *Client) { c.apiBase = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a TDX client with the given app credentials.
func NewClient(appID, appKey string, opts ...Option) *Client {
	c := &Client{
		appID:    appID,
		appKey:   appKey,
		tokenURL: defaultTokenURL,
		apiBase:  defaultAPIBase,
		httpc: httpclient.New(
			httpclient.WithConnectTimeout(5*time.Second),
			httpclient.WithReadTimeout(20*time.Second),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// bearerToken returns a cached OAuth token, fetching a new one via the
// client-credentials grant when the cache is empty or near expiry.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.appID},
		"client_secret": {c.appKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch TDX token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read TDX token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("TDX token request failed: HTTP %d - %s", resp.StatusCode, truncate(body, 200))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode TDX token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("TDX token response missing access_token")
	}

	c.token = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenSlack)
	log.Debugf("refreshed TDX token, expires in %ds", tokenResp.ExpiresIn)
	return c.token, nil
}

// GetJSON fetches a JSON document from the TDX basic API and unmarshals it
// into out. The path is appended to the API base; params become the query
// string, with $format=JSON always set.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("$format", "JSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build TDX request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Encoding", "gzip")
	// TDX sometimes rejects tool user agents; a browser UA is accepted.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("TDX GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read TDX response for %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TDX GET %s failed: HTTP %d - %s", path, resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("TDX GET %s returned non-JSON payload: %w", path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
