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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/uzukizheng/parking-assistant/internal/httpclient"
)

const defaultAPIBase = "https://api.line.me"

// Messenger sends outbound messages. Reply is bound to the single-use
// token of an inbound event; Push works any time against a user id.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, userID, text string) error
}

// Client talks to the LINE Messaging API.
type Client struct {
	accessToken string
	apiBase     string
	httpc       *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIBase overrides the LINE API base URL, for tests.
func WithAPIBase(base string) ClientOption {
	return func(c *Client) { c.apiBase = base }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a messaging client with the channel access token.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		accessToken: accessToken,
		apiBase:     defaultAPIBase,
		httpc:       httpclient.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends a text message against the event's reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   []textMessage{{Type: "text", Text: text}},
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

// Push sends a text message directly to a user.
func (c *Client) Push(ctx context.Context, userID, text string) error {
	payload := map[string]any{
		"to":       userID,
		"messages": []textMessage{{Type: "text", Text: text}},
	}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("message send failed: status %d: %s", resp.StatusCode, body)
	}
	return nil
}
