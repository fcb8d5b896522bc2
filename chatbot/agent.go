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
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/uzukizheng/parking-assistant/conversation"
	"github.com/uzukizheng/parking-assistant/log"
)

// ErrorReply is the fixed answer returned when the model or a tool fails.
// Upstream failures never surface as errors on the user path.
const ErrorReply = "抱歉，系統發生錯誤，請稍後再試。"

// maxToolIterations bounds tool-calling rounds for a single query.
const maxToolIterations = 5

const systemPrompt = `## 🎯 角色與任務 (Role & Permission)
你是一位專業又幽默的停車場搜尋助理：「停車寶 ϞϞ(๑⚈ ․̫ ⚈๑)∩」。
你的目標是協助使用者快速找到指定地區附近的停車場，並提供：
- 停車場基本資訊（名稱、地址、營業時間、收費標準）
- 即時可停車位數
- Google Maps 導航連結

你可以透過工具查詢資料，但**必須**先取得「經緯度」與「縣市名稱」。
如果使用者沒有提供，請引導他用 LINE 分享位置。

目前僅支援以下地區：
- Taipei
- NewTaipei

---

## 📋 任務流程（Processing）
1. 與使用者確認搜尋地點（請使用者直接透過 LINE 分享位置的功能分享）。
2. 使用工具搜尋停車場資訊。
3. 根據結果與使用者需求，整理以下內容回覆：
   - 停車場名稱、地址
   - 收費方式
   - 營業時間
   - 即時剩餘車位數
   - Google Maps 導航連結（必須提供）
4. 回覆時使用親切、有禮貌的語氣，並可加入適量 Emoji（例如 🚗、🅿️ 等）。
5. 回覆不要過於冗長，有表達清楚即可。

---

## 🚫 禁忌內容（Don't）
- 禁止涉及腥羶色、仇恨言論
- 禁止涉及政治、宗教、種族、性別、性取向等敏感議題
- 禁止涉及暴力、血腥、恐怖、色情等內容

---

## 💬 回覆格式（Response Format）
- 語言：繁體中文（不得使用簡體中文）
- 風格：簡潔、必要資訊為主，避免冗長
- 停車資訊格式範例：
    ` + "```" + `
    🅿️ 停車場名稱
    🚗 剩餘車位：xx
    💰 費率：xx元/小時
    🕒 營業時間：xx:xx - xx:xx
    📍 導航：<Google Maps 連結>
    ` + "```" + `

---

## 🔗 Google Maps 導航連結生成
使用以下格式：https://www.google.com/maps/dir/?api=1&origin=<起點>&destination=<終點>&travelmode=driving
- <起點> 可用使用者當前位置（如果使用者有提供）
- <終點> 為停車場地址或經緯度
- **所有停車場都必須提供這個連結**
`

var tracer = otel.Tracer("parking-assistant.chatbot")

// Agent answers user queries with a tool-calling chat model, keeping a
// per-user conversation log that is compacted before every model call.
type Agent struct {
	model    ChatModel
	tools    ToolCaller
	sessions *SessionStore
}

// NewAgent creates an agent over the given model and toolset.
func NewAgent(model ChatModel, tools ToolCaller) *Agent {
	return &Agent{
		model:    model,
		tools:    tools,
		sessions: NewSessionStore(),
	}
}

// Answer runs one query for userID and returns a plain-text answer. All
// upstream failures degrade to ErrorReply.
func (a *Agent) Answer(ctx context.Context, userID, query string) string {
	ctx, span := tracer.Start(ctx, "chatbot.answer",
		trace.WithAttributes(attribute.String("chatbot.user_id", userID)))
	defer span.End()

	answer, err := a.answer(ctx, userID, query)
	if err != nil {
		span.SetAttributes(attribute.String("chatbot.error", err.Error()))
		log.Errorf("answer failed for %s: %v", userID, err)
		return ErrorReply
	}
	return answer
}

func (a *Agent) answer(ctx context.Context, userID, query string) (string, error) {
	var tools []ToolDefinition
	if a.tools != nil {
		var err error
		tools, err = a.tools.Tools(ctx)
		if err != nil {
			// Answer without tools rather than failing the whole turn.
			log.Warnf("tool listing failed, answering without tools: %v", err)
			tools = nil
		}
	}

	history := a.sessions.Messages(userID)
	history = append(history, conversation.NewUserMessage(query))
	history = conversation.Compact(history)

	for i := 0; i < maxToolIterations; i++ {
		request := make([]conversation.Message, 0, len(history)+1)
		request = append(request, conversation.NewSystemMessage(systemPrompt))
		request = append(request, history...)

		reply, err := a.model.Generate(ctx, request, tools)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}
		history = append(history, reply)

		if len(reply.ToolCalls) == 0 {
			a.sessions.Replace(userID, history)
			return reply.Content, nil
		}
		for _, call := range reply.ToolCalls {
			history = append(history, a.runTool(ctx, call))
		}
	}
	return "", errors.New("tool iteration limit reached")
}

// runTool executes one tool call and wraps the outcome as a tool message.
// Tool failures are reported back to the model instead of aborting the turn.
func (a *Agent) runTool(ctx context.Context, call conversation.ToolCall) conversation.Message {
	ctx, span := tracer.Start(ctx, "chatbot.tool."+call.Function.Name)
	defer span.End()

	var args map[string]any
	if len(call.Function.Arguments) > 0 {
		if err := json.Unmarshal(call.Function.Arguments, &args); err != nil {
			log.Warnf("bad tool arguments for %s: %v", call.Function.Name, err)
			return conversation.NewToolMessage(call.ID,
				fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	result, err := a.tools.Call(ctx, call.Function.Name, args)
	if err != nil {
		span.SetAttributes(attribute.String("chatbot.error", err.Error()))
		log.Errorf("tool %s failed: %v", call.Function.Name, err)
		return conversation.NewToolMessage(call.ID,
			fmt.Sprintf("tool call failed: %v", err))
	}
	return conversation.NewToolMessage(call.ID, result)
}

// Sessions exposes the session store, mainly for introspection in tests.
func (a *Agent) Sessions() *SessionStore {
	return a.sessions
}
