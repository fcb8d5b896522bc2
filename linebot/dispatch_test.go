//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// parking-assistant is licensed under the Apache License Version 2.0.
//
//

package linebot

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversResult(t *testing.T) {
	d, err := NewDispatcher(2)
	require.NoError(t, err)
	defer d.Close()

	results := d.Submit(func() (string, error) { return "done", nil })

	select {
	case result := <-results:
		assert.Equal(t, "done", result.Answer)
		assert.NoError(t, result.Err)
		assert.NotEmpty(t, result.TaskID)
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
}

func TestDispatcher_DeliversFailure(t *testing.T) {
	d, err := NewDispatcher(1)
	require.NoError(t, err)
	defer d.Close()

	boom := errors.New("boom")
	result := <-d.Submit(func() (string, error) { return "", boom })
	assert.ErrorIs(t, result.Err, boom)
}

func TestDispatcher_BoundedConcurrency(t *testing.T) {
	const workers = 2
	d, err := NewDispatcher(workers)
	require.NoError(t, err)
	defer d.Close()

	var mu sync.Mutex
	running, peak := 0, 0
	gate := make(chan struct{})

	// Submit from goroutines: a saturated pool blocks the submitter until
	// a worker frees up.
	chans := make(chan (<-chan Result), 6)
	for i := 0; i < 6; i++ {
		go func() {
			chans <- d.Submit(func() (string, error) {
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()
				<-gate
				mu.Lock()
				running--
				mu.Unlock()
				return "", nil
			})
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	for i := 0; i < 6; i++ {
		<-<-chans
	}

	assert.LessOrEqual(t, peak, workers)
	assert.Positive(t, peak)
}

func TestStateStore_UpdateIsVisible(t *testing.T) {
	store := NewStateStore()

	store.Update("U1", func(s *UserState) {
		s.Awaiting = AwaitingRestroom
		s.SelectedItem = "X"
	})

	state := store.Get("U1")
	assert.Equal(t, AwaitingRestroom, state.Awaiting)
	assert.Equal(t, "X", state.SelectedItem)
	assert.Equal(t, AwaitingNone, store.Get("U2").Awaiting)
}

func TestStateStore_ConcurrentUpdates(t *testing.T) {
	store := NewStateStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update("U1", func(s *UserState) { s.HasLocation = true })
			store.Get("U1")
		}()
	}
	wg.Wait()
	assert.True(t, store.Get("U1").HasLocation)
}
