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
	"sync"

	"github.com/uzukizheng/parking-assistant/conversation"
)

// SessionStore keeps the per-user conversation log. The caller-supplied
// user id already encodes the memory scope (platform user plus hour
// bucket), so the store is a flat keyed map. Access per key is serialized:
// a user's log is read and rewritten atomically under the store lock.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]conversation.Message
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]conversation.Message),
	}
}

// Messages returns a copy of the user's conversation log.
func (s *SessionStore) Messages(userID string) []conversation.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[userID]
	out := make([]conversation.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Replace rewrites the user's conversation log.
func (s *SessionStore) Replace(userID string, msgs []conversation.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = msgs
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
