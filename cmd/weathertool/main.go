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

// Package main runs the weather MCP server. The single get_weather tool
// is a stub kept for tool-calling demos and integration tests.
//
// Usage:
//
//	go run main.go -addr :9002 -health-addr :9102
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/uzukizheng/parking-assistant/log"
)

func main() {
	addr := flag.String("addr", ":9002", "MCP listen address")
	healthAddr := flag.String("health-addr", ":9102", "health listen address")
	flag.Parse()

	server := mcp.NewServer("weather-mcp-server", "1.0.0", mcp.WithServerAddress(*addr))

	weatherTool := mcp.NewTool(
		"get_weather",
		mcp.WithDescription("Get current weather for a location"),
		mcp.WithString("location", mcp.Description("City name or location"), mcp.Required()),
	)

	server.RegisterTool(weatherTool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		location, ok := req.Params.Arguments["location"].(string)
		if !ok || location == "" {
			return mcp.NewErrorResult("location parameter is required"), nil
		}
		return mcp.NewTextResult(fmt.Sprintf("%s 出現七道彩虹", location)), nil
	})

	go serveHealth(*healthAddr)

	log.Infof("weather MCP server listening on %s", *addr)
	if err := server.Start(); err != nil {
		log.Fatalf("weather MCP server failed: %v", err)
	}
}

func serveHealth(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("health listener failed: %v", err)
	}
}
