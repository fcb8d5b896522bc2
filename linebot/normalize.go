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

package linebot

import (
	"encoding/json"
	"strings"
	"time"
)

// NormalizeAnswer cleans up model output before it is sent to the user:
// a payload that is one quoted string is decoded, and CRLF becomes LF.
func NormalizeAnswer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		quoted := (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'')
		if quoted {
			var decoded string
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				s = decoded
			} else {
				s = s[1 : len(s)-1]
			}
		}
	}
	return strings.ReplaceAll(s, "\r\n", "\n")
}

var taipeiTZ = mustLoadTaipei()

func mustLoadTaipei() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("Asia/Taipei", 8*60*60)
	}
	return loc
}

// EventHourBucket formats an event timestamp (epoch millis) as YYYYMMDDHH
// in Asia/Taipei. Appended to the platform user id it scopes the agent's
// conversational memory per user per hour.
func EventHourBucket(eventTSMillis int64) string {
	return time.UnixMilli(eventTSMillis).In(taipeiTZ).Format("2006010215")
}

// AgentUserID builds the composite memory key for the agent service.
func AgentUserID(lineUserID string, eventTSMillis int64) string {
	return lineUserID + "-" + EventHourBucket(eventTSMillis)
}
