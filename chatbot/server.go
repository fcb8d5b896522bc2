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

package chatbot

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/uzukizheng/parking-assistant/log"
)

// Server exposes the agent over HTTP.
type Server struct {
	agent   *Agent
	handler http.Handler
}

// NewServer creates the agent HTTP surface: GET /chat and GET /health.
func NewServer(agent *Agent) *Server {
	s := &Server{agent: agent}

	router := mux.NewRouter()
	router.HandleFunc("/chat", s.handleChat).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.handler = cors.AllowAll().Handler(router)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := query.Get("user_id")
	text := query.Get("query")
	if userID == "" || text == "" {
		http.Error(w, "user_id and query are required", http.StatusBadRequest)
		return
	}

	log.Debugf("chat request: user_id=%s query=%q", userID, text)
	answer := s.agent.Answer(r.Context(), userID, text)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(answer)); err != nil {
		log.Errorf("failed to write chat response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
