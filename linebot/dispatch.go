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
	"fmt"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/uzukizheng/parking-assistant/log"
)

// DefaultWorkerCount bounds concurrent background tasks.
const DefaultWorkerCount = 8

// Result is the outcome of one background task.
type Result struct {
	TaskID string
	Answer string
	Err    error
}

// Dispatcher runs "call model then push" tasks on a fixed-size pool. The
// webhook handler does not await submissions, but every task reports
// through an observable result channel so failures are never silent.
type Dispatcher struct {
	pool *ants.Pool
}

// NewDispatcher creates a dispatcher with the given worker count; zero or
// negative means DefaultWorkerCount.
func NewDispatcher(workers int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Dispatcher{pool: pool}, nil
}

// Submit schedules task and returns a channel that delivers its single
// result. If the pool rejects the submission the result is delivered
// immediately with the error set.
func (d *Dispatcher) Submit(task func() (string, error)) <-chan Result {
	taskID := uuid.NewString()
	results := make(chan Result, 1)

	err := d.pool.Submit(func() {
		answer, err := task()
		if err != nil {
			log.Errorf("background task %s failed: %v", taskID, err)
		}
		results <- Result{TaskID: taskID, Answer: answer, Err: err}
		close(results)
	})
	if err != nil {
		log.Errorf("failed to submit task %s: %v", taskID, err)
		results <- Result{TaskID: taskID, Err: err}
		close(results)
	}
	return results
}

// Close releases the worker pool.
func (d *Dispatcher) Close() {
	d.pool.Release()
}
