//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// parking-assistant is licensed under the Apache License Version 2.0.
//
//

package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reflectMessage(content string) Message {
	m := NewUserMessage(content)
	m.Reflect = true
	return m
}

func TestCompact_Empty(t *testing.T) {
	assert.Empty(t, Compact(nil))
	assert.Empty(t, Compact([]Message{}))
}

func TestCompact_SingleMessagePassesThrough(t *testing.T) {
	in := []Message{NewUserMessage("hi")}
	assert.Equal(t, in, Compact(in))
}

func TestCompact_CompletedTurnKeepsFirstAndLast(t *testing.T) {
	// [U:"A", AI:"B", U:"C", AI:"D"]: the first chunk closes at B because
	// the next message is a genuine user message; both chunks have length
	// two, so everything survives.
	in := []Message{
		NewUserMessage("A"),
		NewAssistantMessage("B"),
		NewUserMessage("C"),
		NewAssistantMessage("D"),
	}
	assert.Equal(t, in, Compact(in))
}

func TestCompact_DropsTurnInterior(t *testing.T) {
	in := []Message{
		NewUserMessage("find parking"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Type: "function"}}},
		NewToolMessage("1", "lots found"),
		NewAssistantMessage("here are the lots"),
		NewUserMessage("thanks"),
		NewAssistantMessage("anytime"),
	}
	got := Compact(in)
	require.Len(t, got, 4)
	assert.Equal(t, "find parking", got[0].Content)
	assert.Equal(t, "here are the lots", got[1].Content)
	assert.Equal(t, "thanks", got[2].Content)
	assert.Equal(t, "anytime", got[3].Content)
}

func TestCompact_ReflectionNeverClosesTurn(t *testing.T) {
	// The only candidate split point precedes the reflection message, which
	// is excluded, so the whole log stays one open chunk.
	in := []Message{
		NewUserMessage("hi"),
		NewAssistantMessage("hello"),
		reflectMessage("note"),
		NewAssistantMessage("ok"),
		NewUserMessage("bye"),
	}
	got := Compact(in)
	require.Len(t, got, 3)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, "ok", got[1].Content)
	assert.Equal(t, "bye", got[2].Content)
}

func TestCompact_PendingToolCallsKeepTurnOpen(t *testing.T) {
	in := []Message{
		{Role: RoleAssistant, Content: "a", ToolCalls: []ToolCall{{ID: "1"}}},
		NewUserMessage("u"),
		{Role: RoleAssistant, Content: "b", ToolCalls: []ToolCall{{ID: "2"}}},
		NewUserMessage("v"),
	}
	// No closure point exists, the log is one open chunk.
	assert.Equal(t, in, Compact(in))
}

func TestCompact_TrailingOpenChunkEmittedWhole(t *testing.T) {
	in := []Message{
		NewUserMessage("A"),
		NewAssistantMessage("B"),
		NewUserMessage("C"),
		NewToolMessage("x", "data"),
		NewAssistantMessage("D"),
	}
	got := Compact(in)
	// First chunk [A,B] closes; the rest never closes and passes through.
	require.Len(t, got, 5)
	assert.Equal(t, in, got)
}

func TestCompact_NeverGrowsOrReorders(t *testing.T) {
	in := []Message{
		NewUserMessage("1"),
		reflectMessage("2"),
		NewAssistantMessage("3"),
		NewUserMessage("4"),
		NewAssistantMessage("5"),
		NewUserMessage("6"),
	}
	got := Compact(in)
	assert.LessOrEqual(t, len(got), len(in))

	// Output must be a subsequence of the input.
	j := 0
	for _, m := range in {
		if j < len(got) && got[j].Role == m.Role && got[j].Content == m.Content {
			j++
		}
	}
	assert.Equal(t, len(got), j)
}

func TestCompact_IdempotentOnOwnOutput(t *testing.T) {
	logs := [][]Message{
		{
			NewUserMessage("A"),
			NewAssistantMessage("B"),
			NewUserMessage("C"),
			NewAssistantMessage("D"),
		},
		{
			NewUserMessage("q"),
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1"}}},
			NewToolMessage("1", "r"),
			NewAssistantMessage("a"),
		},
		{
			NewUserMessage("hi"),
			NewAssistantMessage("hello"),
			reflectMessage("note"),
			NewAssistantMessage("ok"),
		},
	}
	for _, in := range logs {
		once := Compact(in)
		assert.Equal(t, once, Compact(once))
	}
}
