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
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/uzukizheng/parking-assistant/log"
)

// defaultClientInfo identifies this client to MCP servers.
var defaultClientInfo = mcp.Implementation{
	Name:    "parking-assistant",
	Version: "1.0.0",
}

// ToolCaller exposes tool discovery and invocation to the agent.
type ToolCaller interface {
	Tools(ctx context.Context) ([]ToolDefinition, error)
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// ServerConfig points at one MCP tool-provider server.
type ServerConfig struct {
	Name      string
	ServerURL string
	Timeout   time.Duration
}

// Toolset aggregates the tools of one or more MCP servers behind a single
// name-keyed surface.
type Toolset struct {
	servers []ServerConfig

	mu       sync.Mutex
	clients  map[string]mcp.Connector // keyed by server name
	toolHome map[string]string        // tool name -> server name
}

// NewToolset creates a toolset over the given MCP servers. Connections are
// established lazily on first use.
func NewToolset(servers ...ServerConfig) *Toolset {
	return &Toolset{
		servers:  servers,
		clients:  make(map[string]mcp.Connector),
		toolHome: make(map[string]string),
	}
}

// connect returns an initialized client for the given server config.
func (t *Toolset) connect(ctx context.Context, cfg ServerConfig) (mcp.Connector, error) {
	if client, ok := t.clients[cfg.Name]; ok {
		return client, nil
	}

	client, err := mcp.NewClient(cfg.ServerURL, defaultClientInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client for %s: %w", cfg.Name, err)
	}

	initCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	initResp, err := client.Initialize(initCtx, &mcp.InitializeRequest{})
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Errorf("failed to close MCP client for %s after init failure: %v", cfg.Name, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize MCP session for %s: %w", cfg.Name, err)
	}
	log.Infof("connected to MCP server %s (%s %s)",
		cfg.Name, initResp.ServerInfo.Name, initResp.ServerInfo.Version)

	t.clients[cfg.Name] = client
	return client, nil
}

// Tools lists the tools of every configured server. A server that cannot
// be reached fails the whole listing; the agent treats that as a degraded
// upstream, not a fatal error.
func (t *Toolset) Tools(ctx context.Context) ([]ToolDefinition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var defs []ToolDefinition
	for _, cfg := range t.servers {
		client, err := t.connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		listResp, err := client.ListTools(ctx, &mcp.ListToolsRequest{})
		if err != nil {
			return nil, fmt.Errorf("failed to list tools from %s: %w", cfg.Name, err)
		}
		for _, mcpTool := range listResp.Tools {
			defs = append(defs, ToolDefinition{
				Name:        mcpTool.Name,
				Description: mcpTool.Description,
				InputSchema: schemaToMap(mcpTool.InputSchema),
			})
			t.toolHome[mcpTool.Name] = cfg.Name
		}
	}
	return defs, nil
}

// Call invokes a named tool and returns the concatenated text content of
// the result.
func (t *Toolset) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	t.mu.Lock()
	home, ok := t.toolHome[name]
	var client mcp.Connector
	if ok {
		client = t.clients[home]
	}
	t.mu.Unlock()
	if client == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	callReq := &mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = args

	callResp, err := client.CallTool(ctx, callReq)
	if err != nil {
		return "", fmt.Errorf("failed to call tool %s: %w", name, err)
	}
	return textContent(callResp.Content), nil
}

// Close closes every connected client.
func (t *Toolset) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, client := range t.clients {
		if err := client.Close(); err != nil {
			log.Errorf("failed to close MCP client %s: %v", name, err)
		}
	}
	t.clients = make(map[string]mcp.Connector)
}

// textContent joins the text parts of an MCP tool result.
func textContent(contents []mcp.Content) string {
	var out string
	for _, content := range contents {
		if text, ok := content.(mcp.TextContent); ok {
			if out != "" {
				out += "\n"
			}
			out += text.Text
		}
	}
	return out
}

// schemaToMap converts an MCP input schema to the generic map form the
// model request expects.
func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}
