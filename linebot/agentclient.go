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

package linebot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/uzukizheng/parking-assistant/internal/httpclient"
)

// AgentClient asks the agent service for an answer.
type AgentClient interface {
	Ask(ctx context.Context, userID, query string) (string, error)
}

// HTTPAgentClient calls the agent's GET /chat endpoint.
type HTTPAgentClient struct {
	endpoint string
	httpc    *http.Client
}

// NewAgentClient creates a client for the agent service at endpoint.
// Model calls are slow, so the request timeout is generous.
func NewAgentClient(endpoint string) *HTTPAgentClient {
	return &HTTPAgentClient{
		endpoint: endpoint,
		httpc:    httpclient.New(httpclient.WithRequestTimeout(60 * time.Second)),
	}
}

// Ask performs one chat request and returns the plain-text answer.
func (c *HTTPAgentClient) Ask(ctx context.Context, userID, query string) (string, error) {
	params := url.Values{
		"user_id": {userID},
		"query":   {query},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/chat?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat request failed: status %d: %s", resp.StatusCode, body)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	return string(body), nil
}
