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

// Package linebot adapts LINE Messaging API webhooks to the assistant.
// The webhook handler always returns fast: expensive work is pushed onto a
// bounded worker pool and the answer delivered through the push API.
package linebot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/uzukizheng/parking-assistant/log"
)

// signatureHeader carries the HMAC of the raw request body.
const signatureHeader = "X-Line-Signature"

// Event is one inbound webhook event. Only message events with text or
// location payloads are acted on.
type Event struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Timestamp  int64  `json:"timestamp"` // epoch millis
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type      string  `json:"type"`
		Text      string  `json:"text"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Address   string  `json:"address"`
	} `json:"message"`
}

type webhookBody struct {
	Events []Event `json:"events"`
}

// Webhook validates and decodes LINE webhook deliveries, handing each
// event to the handler.
type Webhook struct {
	channelSecret string
	handler       *Handler
	router        http.Handler
}

// NewWebhook creates the webhook HTTP surface: POST /webhook and
// GET /health.
func NewWebhook(channelSecret string, handler *Handler) *Webhook {
	w := &Webhook{
		channelSecret: channelSecret,
		handler:       handler,
	}

	router := mux.NewRouter()
	router.HandleFunc("/webhook", w.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/health", w.handleHealth).Methods(http.MethodGet)
	w.router = router
	return w
}

// Handler returns the root HTTP handler.
func (w *Webhook) Handler() http.Handler {
	return w.router
}

// validSignature checks the body HMAC against the signature header.
func (w *Webhook) validSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(w.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (w *Webhook) handleWebhook(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("failed to read webhook body: %v", err)
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}

	if !w.validSignature(body, r.Header.Get(signatureHeader)) {
		log.Warnf("webhook signature mismatch")
		http.Error(rw, "invalid signature", http.StatusBadRequest)
		return
	}

	var payload webhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Errorf("failed to decode webhook body: %v", err)
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}

	// Acknowledge before any heavy work; the platform only cares that
	// delivery succeeded.
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte(`{"message":"OK"}`))

	for _, event := range payload.Events {
		w.handler.HandleEvent(r.Context(), event)
	}
}

func (w *Webhook) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Write([]byte(`{"status":"ok"}`))
}
