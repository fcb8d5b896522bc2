//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// parking-assistant is licensed under the Apache License Version 2.0.
//
//

package chatbot

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzukizheng/parking-assistant/conversation"
)

func newTestServer(t *testing.T, model ChatModel) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(NewAgent(model, nil)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestChatEndpoint(t *testing.T) {
	model := &fakeModel{replies: []conversation.Message{
		conversation.NewAssistantMessage("哈囉 🚗"),
	}}
	srv := newTestServer(t, model)

	resp, err := http.Get(srv.URL + "/chat?" + url.Values{
		"user_id": {"u1-2025082810"},
		"query":   {"嗨"},
	}.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "哈囉 🚗", string(body))
}

func TestChatEndpoint_MissingParams(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})

	resp, err := http.Get(srv.URL + "/chat?user_id=u1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeModel{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
