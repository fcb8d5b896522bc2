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
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzukizheng/parking-assistant/geo"
	"github.com/uzukizheng/parking-assistant/poi"
)

func textEvent(userID, text string) Event {
	var e Event
	e.Type = "message"
	e.ReplyToken = "tok"
	e.Timestamp = 1756348800000 // 2025-08-28 10:40 Asia/Taipei
	e.Source.UserID = userID
	e.Message.Type = "text"
	e.Message.Text = text
	return e
}

func locationEvent(userID string, lat, lon float64) Event {
	var e Event
	e.Type = "message"
	e.ReplyToken = "tok"
	e.Timestamp = 1756348800000
	e.Source.UserID = userID
	e.Message.Type = "location"
	e.Message.Latitude = lat
	e.Message.Longitude = lon
	return e
}

func newTestHandler(t *testing.T, agent AgentClient, restrooms *poi.Table) (*Handler, *fakeMessenger) {
	t.Helper()
	messenger := &fakeMessenger{}
	dispatcher, err := NewDispatcher(2)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Close)
	return NewHandler(messenger, agent, dispatcher, restrooms, nil), messenger
}

func waitForPush(t *testing.T, m *fakeMessenger) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		n := len(m.pushes)
		m.mu.Unlock()
		if n > 0 {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.pushes[len(m.pushes)-1]
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no push arrived")
	return ""
}

func TestParkingIntent_NoLocationPrompts(t *testing.T) {
	h, messenger := newTestHandler(t, &fakeAgent{}, nil)

	h.HandleEvent(context.Background(), textEvent("U1", "附近有停車位嗎"))

	assert.Equal(t, replyAskLocation, messenger.lastReply())
	assert.Equal(t, AwaitingParking, h.States().Get("U1").Awaiting)
}

func TestLocationResolvesPendingParking(t *testing.T) {
	agent := &fakeAgent{answer: "附近有三個停車場 🅿️"}
	h, messenger := newTestHandler(t, agent, nil)

	h.HandleEvent(context.Background(), textEvent("U1", "找停車場"))
	h.HandleEvent(context.Background(), locationEvent("U1", 25.0339, 121.5645))

	assert.Equal(t, replyHolding, messenger.lastReply())
	assert.Equal(t, "附近有三個停車場 🅿️", waitForPush(t, messenger))
	assert.Equal(t, AwaitingNone, h.States().Get("U1").Awaiting)

	// The agent memory key is the hour bucket composite.
	require.Len(t, agent.userIDs, 1)
	assert.True(t, strings.HasPrefix(agent.userIDs[0], "U1-2025"))
}

func TestRestroomIntent_WithLocationRepliesImmediately(t *testing.T) {
	table := poi.NewTable([]poi.Restroom{
		{Name: "大安森林公園公廁", Address: "台北市大安區", Location: geo.Point{Lat: 25.0330, Lon: 121.5654}, Accessible: 1},
		{Name: "遠方公廁", Location: geo.Point{Lat: 25.2, Lon: 121.7}},
	})
	h, messenger := newTestHandler(t, &fakeAgent{}, table)

	h.HandleEvent(context.Background(), locationEvent("U1", 25.0339, 121.5645))
	h.HandleEvent(context.Background(), textEvent("U1", "廁所在哪"))

	reply := messenger.lastReply()
	assert.Contains(t, reply, "大安森林公園公廁")
	assert.Contains(t, reply, "♿")
}

func TestRestroomIntent_TableMissingDegrades(t *testing.T) {
	h, messenger := newTestHandler(t, &fakeAgent{}, nil)

	h.HandleEvent(context.Background(), locationEvent("U1", 25.0, 121.5))
	h.HandleEvent(context.Background(), textEvent("U1", "toilet"))

	assert.Equal(t, replyRestroomDown, messenger.lastReply())
}

func TestDefaultTextGoesToModelAndPushes(t *testing.T) {
	agent := &fakeAgent{answer: "\"你好！\r\n有什麼可以幫你？\""}
	h, messenger := newTestHandler(t, agent, nil)

	h.HandleEvent(context.Background(), textEvent("U1", "你是誰"))

	assert.Equal(t, replyHolding, messenger.lastReply())
	// Quoted payload is decoded and CRLF normalized before pushing.
	assert.Equal(t, "你好！\n有什麼可以幫你？", waitForPush(t, messenger))
}

func TestModelFailurePushesApology(t *testing.T) {
	agent := &fakeAgent{err: assert.AnError}
	h, messenger := newTestHandler(t, agent, nil)

	h.HandleEvent(context.Background(), textEvent("U1", "你是誰"))

	assert.Equal(t, replyError, waitForPush(t, messenger))
}

func TestRating_NoRecorderUnavailable(t *testing.T) {
	h, messenger := newTestHandler(t, &fakeAgent{}, nil)

	h.HandleEvent(context.Background(), textEvent("U1", "rate 5 很方便"))

	assert.Equal(t, replyRatingDown, messenger.lastReply())
}

func TestRating_MalformedRejected(t *testing.T) {
	h, messenger := newTestHandler(t, &fakeAgent{}, nil)

	for _, text := range []string{"rate", "rate abc", "rate 0 太爛", "rate 6 wow"} {
		h.HandleEvent(context.Background(), textEvent("U1", text))
		assert.Equal(t, replyRatingUsage, messenger.lastReply(), "input %q", text)
	}
}

func TestSelectRemembersItem(t *testing.T) {
	h, messenger := newTestHandler(t, &fakeAgent{}, nil)

	h.HandleEvent(context.Background(), textEvent("U1", "select NEAR-1"))

	assert.Contains(t, messenger.lastReply(), "NEAR-1")
	assert.Equal(t, "NEAR-1", h.States().Get("U1").SelectedItem)
}

func TestNonMessageEventsIgnored(t *testing.T) {
	h, messenger := newTestHandler(t, &fakeAgent{}, nil)

	e := Event{Type: "follow"}
	h.HandleEvent(context.Background(), e)

	assert.Empty(t, messenger.replies)
}
