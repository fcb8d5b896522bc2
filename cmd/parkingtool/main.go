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

// Package main runs the parking MCP server. It exposes one tool,
// find_parking, over the TDX open-data feeds, plus a /health listener.
//
// Usage:
//
//	go run main.go -addr :9001 -health-addr :9101
//	PARKING_STUB=1 go run main.go   # canned results, no TDX credentials
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/uzukizheng/parking-assistant/geo"
	"github.com/uzukizheng/parking-assistant/log"
	"github.com/uzukizheng/parking-assistant/parking"
	"github.com/uzukizheng/parking-assistant/tdx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	addr := flag.String("addr", ":9001", "MCP listen address")
	healthAddr := flag.String("health-addr", ":9101", "health listen address")
	flag.Parse()

	stub := os.Getenv("PARKING_STUB") != ""
	var finder *parking.Finder
	if !stub {
		appID := os.Getenv("TDX_APP_ID")
		appKey := os.Getenv("TDX_APP_KEY")
		if appID == "" || appKey == "" {
			log.Fatalf("TDX_APP_ID and TDX_APP_KEY are required (or set PARKING_STUB=1)")
		}
		finder = parking.NewFinder(tdx.NewClient(appID, appKey))
	}

	server := mcp.NewServer("parking-mcp-server", "1.0.0", mcp.WithServerAddress(*addr))

	findParking := mcp.NewTool(
		"find_parking",
		mcp.WithDescription("Find parking lots and curb segments near a coordinate. "+
			"Returns a JSON envelope with available spaces, rates and service hours."),
		mcp.WithNumber("lat", mcp.Description("Latitude of the search center"), mcp.Required()),
		mcp.WithNumber("lon", mcp.Description("Longitude of the search center"), mcp.Required()),
		mcp.WithString("city", mcp.Description("City name, e.g. Taipei or NewTaipei"), mcp.Required()),
		mcp.WithNumber("radius", mcp.Description("Search radius in meters, capped at 1000")),
	)

	server.RegisterTool(findParking, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, latOK := req.Params.Arguments["lat"].(float64)
		lon, lonOK := req.Params.Arguments["lon"].(float64)
		if !latOK || !lonOK {
			return errorResult("lat and lon parameters are required"), nil
		}
		cityName, _ := req.Params.Arguments["city"].(string)
		city, err := parking.ParseCity(cityName)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		radius := 0
		if r, ok := req.Params.Arguments["radius"].(float64); ok {
			radius = int(r)
		}

		if stub {
			return successResult(parking.StubItems()), nil
		}
		items, err := finder.Find(ctx, geo.Point{Lat: lat, Lon: lon}, city, radius)
		if err != nil {
			log.Errorf("parking lookup failed: %v", err)
			return errorResult("parking lookup failed, please try again later"), nil
		}
		return successResult(items), nil
	})

	go serveHealth(*healthAddr)

	log.Infof("parking MCP server listening on %s (stub=%v)", *addr, stub)
	if err := server.Start(); err != nil {
		log.Fatalf("parking MCP server failed: %v", err)
	}
}

func successResult(items []parking.Item) *mcp.CallToolResult {
	raw, err := json.Marshal(parking.Success(items))
	if err != nil {
		return mcp.NewErrorResult("failed to encode result")
	}
	return mcp.NewTextResult(string(raw))
}

func errorResult(message string) *mcp.CallToolResult {
	raw, err := json.Marshal(parking.Failure(message))
	if err != nil {
		return mcp.NewErrorResult(message)
	}
	return mcp.NewTextResult(string(raw))
}

// serveHealth runs the liveness endpoint on its own listener; the MCP
// server owns the main address.
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
