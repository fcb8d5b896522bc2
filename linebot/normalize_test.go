//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// parking-assistant is licensed under the Apache License Version 2.0.
//
//

package linebot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "你好", "你好"},
		{"surrounding whitespace", "  你好\n", "你好"},
		{"json quoted", `"第一行\n第二行"`, "第一行\n第二行"},
		{"single quoted", "'你好'", "你好"},
		{"unbalanced quote kept", `"你好`, `"你好`},
		{"crlf normalized", "a\r\nb\r\nc", "a\nb\nc"},
		{"quoted with crlf escape", "\"a\r\nb\"", "a\nb"},
		{"empty", "", ""},
		{"lone quote", `"`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAnswer(tt.in))
		})
	}
}

func TestEventHourBucket(t *testing.T) {
	// 2025-08-28 02:40:00 UTC = 10:40 Asia/Taipei.
	assert.Equal(t, "2025082810", EventHourBucket(1756348800000))
}

func TestAgentUserID(t *testing.T) {
	assert.Equal(t, "U123-2025082810", AgentUserID("U123", 1756348800000))
}

func TestEventHourBucket_HourBoundary(t *testing.T) {
	base := int64(1756348800000)
	sameHour := base + 19*60*1000
	nextHour := base + 20*60*1000
	assert.Equal(t, EventHourBucket(base), EventHourBucket(sameHour))
	assert.NotEqual(t, EventHourBucket(base), EventHourBucket(nextHour))
}
