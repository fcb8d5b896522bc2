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

// Package main runs the LINE webhook adapter. It replies fast on the
// webhook path and pushes model answers from a bounded worker pool.
//
// Usage:
//
//	go run main.go -addr :8080 -restrooms data/restrooms.csv
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/uzukizheng/parking-assistant/linebot"
	"github.com/uzukizheng/parking-assistant/log"
	"github.com/uzukizheng/parking-assistant/poi"
	"github.com/uzukizheng/parking-assistant/rating"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	addr := flag.String("addr", ":8080", "listen address")
	agentEndpoint := flag.String("agent", envOr("AI_CHATBOT_ENDPOINT", "http://localhost:8000"),
		"agent service endpoint")
	restroomPath := flag.String("restrooms", os.Getenv("RESTROOM_TABLE"), "restroom CSV path")
	ratingPath := flag.String("ratings", os.Getenv("RATING_CREDENTIALS"), "rating credentials JSON path")
	workers := flag.Int("workers", linebot.DefaultWorkerCount, "background worker count")
	flag.Parse()

	channelSecret := os.Getenv("LINE_CHANNEL_SECRET")
	accessToken := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")
	if channelSecret == "" || accessToken == "" {
		log.Fatalf("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN are required")
	}

	// Optional features degrade for the process lifetime when their assets
	// are missing; the process still starts.
	var restrooms *poi.Table
	if *restroomPath != "" {
		table, err := poi.LoadTable(*restroomPath)
		if err != nil {
			log.Errorf("restroom lookup disabled: %v", err)
		} else {
			restrooms = table
			log.Infof("loaded %d restroom records", table.Len())
		}
	}
	var ratings *rating.Recorder
	if *ratingPath != "" {
		recorder, err := rating.Load(*ratingPath)
		if err != nil {
			log.Errorf("rating recorder disabled: %v", err)
		} else {
			ratings = recorder
		}
	}

	dispatcher, err := linebot.NewDispatcher(*workers)
	if err != nil {
		log.Fatalf("failed to create dispatcher: %v", err)
	}
	defer dispatcher.Close()

	handler := linebot.NewHandler(
		linebot.NewClient(accessToken),
		linebot.NewAgentClient(*agentEndpoint),
		dispatcher,
		restrooms,
		ratings,
	)

	server := &http.Server{
		Addr:    *addr,
		Handler: linebot.NewWebhook(channelSecret, handler).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Infof("linebot service listening on %s", *addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		log.Fatalf("linebot service failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
