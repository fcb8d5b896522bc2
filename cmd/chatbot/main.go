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

// Package main runs the agent service: GET /chat answers user queries
// with a tool-calling chat model backed by the MCP tool servers.
//
// Usage:
//
//	go run main.go -addr :8000 -model gpt-4o-mini
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

	"github.com/uzukizheng/parking-assistant/chatbot"
	"github.com/uzukizheng/parking-assistant/internal/httpclient"
	"github.com/uzukizheng/parking-assistant/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	addr := flag.String("addr", ":8000", "listen address")
	modelName := flag.String("model", envOr("MODEL_NAME", "gpt-4o-mini"), "chat model name")
	parkingURL := flag.String("parking-url", envOr("PARKING_MCP_URL", "http://localhost:9001/mcp"),
		"parking MCP server URL")
	weatherURL := flag.String("weather-url", envOr("WEATHER_MCP_URL", "http://localhost:9002/mcp"),
		"weather MCP server URL")
	flag.Parse()

	model := chatbot.NewModel(*modelName,
		chatbot.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		chatbot.WithBaseURL(os.Getenv("OPENAI_BASE_URL")),
		chatbot.WithModelHTTPClient(httpclient.New(
			httpclient.WithRequestTimeout(60*time.Second),
		)),
	)
	toolset := chatbot.NewToolset(
		chatbot.ServerConfig{Name: "parking", ServerURL: *parkingURL, Timeout: 10 * time.Second},
		chatbot.ServerConfig{Name: "weather", ServerURL: *weatherURL, Timeout: 10 * time.Second},
	)
	defer toolset.Close()

	server := &http.Server{
		Addr:    *addr,
		Handler: chatbot.NewServer(chatbot.NewAgent(model, toolset)).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Infof("chatbot service listening on %s (model %s)", *addr, *modelName)
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
		log.Fatalf("chatbot service failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
