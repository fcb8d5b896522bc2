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

// Package rating appends user ratings to a spreadsheet side-channel. The
// feature is optional: when the credentials blob is missing the recorder
// is nil and callers report the feature as unavailable.
package rating

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/uzukizheng/parking-assistant/internal/httpclient"
)

// credentials is the on-disk JSON blob granting append access.
type credentials struct {
	Endpoint string `json:"endpoint"`
	Token    string `json:"token"`
}

// Row is one rating entry.
type Row struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder appends rating rows to the configured spreadsheet endpoint.
type Recorder struct {
	endpoint string
	token    string
	httpc    *http.Client
}

// Load reads the credentials blob at path and returns a Recorder. A nil
// Recorder with a non-nil error means the feature stays degraded for the
// process lifetime; callers log once and move on.
func Load(path string) (*Recorder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rating credentials: %w", err)
	}
	var creds credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode rating credentials: %w", err)
	}
	if creds.Endpoint == "" {
		return nil, fmt.Errorf("rating credentials missing endpoint")
	}
	return &Recorder{
		endpoint: creds.Endpoint,
		token:    creds.Token,
		httpc:    httpclient.New(),
	}, nil
}

// Append records one rating row. A nil receiver reports unavailability.
func (r *Recorder) Append(ctx context.Context, row Row) error {
	if r == nil {
		return fmt.Errorf("rating recorder is not configured")
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode rating row: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build rating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("rating append failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rating append failed: status %d: %s", resp.StatusCode, body)
	}
	return nil
}
