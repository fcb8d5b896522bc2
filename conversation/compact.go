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

package conversation

// Compact collapses each completed conversation turn to its first and last
// message, bounding the context sent to the model while keeping the user's
// opening and the assistant's final answer of every turn.
//
// A turn is considered complete at index i when the message at i is an
// assistant message with no pending tool calls and the message at i+1 is a
// user message not marked as a reflection. A trailing turn that never
// closes is emitted in full. Output preserves order, never exceeds the
// input length, and reuses the input messages without copying.
func Compact(messages []Message) []Message {
	result := make([]Message, 0, len(messages))
	chunkStart := 0

	for i := range messages {
		if !isTurnEnd(messages, i) {
			continue
		}
		// Emit the first and last message of the closed chunk. A
		// single-message chunk collapses to that one message.
		result = append(result, messages[chunkStart])
		if i > chunkStart {
			result = append(result, messages[i])
		}
		chunkStart = i + 1
	}

	// Trailing open chunk passes through unmodified.
	result = append(result, messages[chunkStart:]...)
	return result
}

// isTurnEnd reports whether the message at index i closes a conversation
// turn. Assistant messages that still carry tool calls keep the turn open,
// as does a following reflection-marked user message.
func isTurnEnd(messages []Message, i int) bool {
	cur := messages[i]
	if cur.Role != RoleAssistant || len(cur.ToolCalls) > 0 {
		return false
	}
	next := i + 1
	if next >= len(messages) {
		return false
	}
	return messages[next].Role == RoleUser && !messages[next].Reflect
}
