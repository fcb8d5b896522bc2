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
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/uzukizheng/parking-assistant/conversation"
)

// ChatModel generates assistant messages. Implementations must be safe for
// concurrent use.
type ChatModel interface {
	Generate(ctx context.Context, messages []conversation.Message, tools []ToolDefinition) (conversation.Message, error)
}

// ToolDefinition describes a callable tool bound into the model request.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Model is an OpenAI-compatible chat-completions client.
type Model struct {
	client openai.Client
	name   string
}

// modelOptions holds the configuration options for Model.
type modelOptions struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// ModelOption configures a Model.
type ModelOption func(*modelOptions)

// WithAPIKey sets the API key.
func WithAPIKey(key string) ModelOption {
	return func(o *modelOptions) { o.apiKey = key }
}

// WithBaseURL sets an OpenAI-compatible base URL.
func WithBaseURL(url string) ModelOption {
	return func(o *modelOptions) { o.baseURL = url }
}

// WithModelHTTPClient sets the underlying HTTP client.
func WithModelHTTPClient(httpc *http.Client) ModelOption {
	return func(o *modelOptions) { o.httpc = httpc }
}

// NewModel creates a chat model with the given name.
func NewModel(name string, opts ...ModelOption) *Model {
	o := &modelOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	if o.httpc != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.httpc))
	}

	return &Model{
		client: openai.NewClient(clientOpts...),
		name:   name,
	}
}

// Generate performs one non-streaming chat completion.
func (m *Model) Generate(
	ctx context.Context,
	messages []conversation.Message,
	tools []ToolDefinition,
) (conversation.Message, error) {
	if len(messages) == 0 {
		return conversation.Message{}, errors.New("messages cannot be empty")
	}

	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(messages),
		Tools:    convertTools(tools),
	}

	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return conversation.Message{}, errors.New("chat completion returned no choices")
	}

	choice := chatCompletion.Choices[0]
	msg := conversation.Message{
		Role:    conversation.RoleAssistant,
		Content: choice.Message.Content,
	}
	for i, toolCall := range choice.Message.ToolCalls {
		id := toolCall.ID
		if id == "" {
			// Synthesize an ID for providers that omit it.
			id = fmt.Sprintf("auto_call_%d", i)
		}
		msg.ToolCalls = append(msg.ToolCalls, conversation.ToolCall{
			ID:   id,
			Type: string(toolCall.Type),
			Function: conversation.FunctionCall{
				Name:      toolCall.Function.Name,
				Arguments: []byte(toolCall.Function.Arguments),
			},
		})
	}
	return msg, nil
}

// convertMessages converts the conversation format to OpenAI's format.
func convertMessages(messages []conversation.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case conversation.RoleSystem:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		case conversation.RoleAssistant:
			assistant := &openai.ChatCompletionAssistantMessageParam{
				ToolCalls: convertToolCalls(msg.ToolCalls),
			}
			if msg.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(msg.Content),
				}
			}
			result[i] = openai.ChatCompletionMessageParamUnion{OfAssistant: assistant}
		case conversation.RoleTool:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfTool: &openai.ChatCompletionToolMessageParam{
					Content: openai.ChatCompletionToolMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCallID: msg.ToolID,
				},
			}
		default: // Default to user message if role is unknown.
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		}
	}
	return result
}

func convertToolCalls(toolCalls []conversation.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	var result []openai.ChatCompletionMessageToolCallParam
	for _, toolCall := range toolCalls {
		result = append(result, openai.ChatCompletionMessageToolCallParam{
			ID: toolCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      toolCall.Function.Name,
				Arguments: string(toolCall.Function.Arguments),
			},
		})
	}
	return result
}

func convertTools(tools []ToolDefinition) []openai.ChatCompletionToolParam {
	var result []openai.ChatCompletionToolParam
	for _, t := range tools {
		parameters := shared.FunctionParameters(t.InputSchema)
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  parameters,
			},
		})
	}
	return result
}
