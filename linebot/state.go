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
	"sync"

	"github.com/uzukizheng/parking-assistant/geo"
)

// Awaiting names the lookup a user still owes a location for.
type Awaiting int

const (
	AwaitingNone Awaiting = iota
	AwaitingParking
	AwaitingRestroom
)

// UserState is the per-user conversational state held between webhook
// deliveries.
type UserState struct {
	Awaiting     Awaiting
	LastLocation geo.Point
	HasLocation  bool
	SelectedItem string
}

type userEntry struct {
	mu    sync.Mutex
	state UserState
}

// StateStore holds per-user state behind per-key locks, so concurrent
// deliveries for the same user serialize instead of racing.
type StateStore struct {
	mu    sync.Mutex
	users map[string]*userEntry
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{users: make(map[string]*userEntry)}
}

func (s *StateStore) entry(userID string) *userEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.users[userID]
	if !ok {
		e = &userEntry{}
		s.users[userID] = e
	}
	return e
}

// Get returns a snapshot of the user's state.
func (s *StateStore) Get(userID string) UserState {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Update applies fn to the user's state under its lock.
func (s *StateStore) Update(userID string, fn func(*UserState)) UserState {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
	return e.state
}
