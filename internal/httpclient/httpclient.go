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

// Package httpclient builds the HTTP clients shared by the upstream call
// paths. Connections are reused; connect and read phases carry separate
// timeouts so a stalled upstream cannot block a handler indefinitely.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Default timeouts for upstream calls.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 15 * time.Second
)

// Options configures a client built by New.
type Options struct {
	// ConnectTimeout bounds TCP connection establishment.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers.
	ReadTimeout time.Duration
	// RequestTimeout bounds the whole request including body read; zero
	// means no overall bound beyond the phase timeouts.
	RequestTimeout time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithConnectTimeout sets the connection establishment timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) { o.ConnectTimeout = d }
}

// WithReadTimeout sets the response-header timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) { o.ReadTimeout = d }
}

// WithRequestTimeout sets the overall request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) { o.RequestTimeout = d }
}

// New returns a connection-reusing client with the configured timeouts.
func New(opts ...Option) *http.Client {
	o := &Options{
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &http.Client{
		Timeout: o.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: o.ConnectTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   o.ConnectTimeout,
			ResponseHeaderTimeout: o.ReadTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
