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
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uzukizheng/parking-assistant/geo"
	"github.com/uzukizheng/parking-assistant/log"
	"github.com/uzukizheng/parking-assistant/poi"
	"github.com/uzukizheng/parking-assistant/rating"
)

// User-facing replies. Upstream failures never leak past these.
const (
	replyError          = "抱歉，系統發生錯誤，請稍後再試。"
	replyHolding        = "收到！停車寶正在為您查詢，請稍候 🚗"
	replyAskLocation    = "請先用 LINE 的分享位置功能告訴我您在哪裡 📍"
	replyLocationStored = "已更新您的位置 📍"
	replyRatingUsage    = "評分格式錯誤，請使用：rate <1-5> <評語>"
	replyRatingDown     = "評分功能目前無法使用，造成不便敬請見諒 🙏"
	replyRatingThanks   = "感謝您的評分！🌟"
	replyRestroomDown   = "廁所查詢功能目前無法使用，造成不便敬請見諒 🙏"
	replySelectUsage    = "請使用：select <停車場編號>"
)

// Handler routes webhook events: fast paths reply synchronously, the
// model path is queued and its answer pushed later.
type Handler struct {
	messenger  Messenger
	agent      AgentClient
	dispatcher *Dispatcher
	states     *StateStore
	restrooms  *poi.Table
	ratings    *rating.Recorder
}

// NewHandler wires the event handler. restrooms and ratings may be nil;
// the matching features then answer with an unavailability message.
func NewHandler(
	messenger Messenger,
	agent AgentClient,
	dispatcher *Dispatcher,
	restrooms *poi.Table,
	ratings *rating.Recorder,
) *Handler {
	return &Handler{
		messenger:  messenger,
		agent:      agent,
		dispatcher: dispatcher,
		states:     NewStateStore(),
		restrooms:  restrooms,
		ratings:    ratings,
	}
}

// States exposes the state store, mainly for tests.
func (h *Handler) States() *StateStore {
	return h.states
}

// HandleEvent processes one webhook event. It never returns an error:
// every failure path degrades to a user-visible text message.
func (h *Handler) HandleEvent(ctx context.Context, event Event) {
	if event.Type != "message" {
		return
	}
	switch event.Message.Type {
	case "text":
		h.handleText(ctx, event)
	case "location":
		h.handleLocation(ctx, event)
	}
}

func (h *Handler) handleText(ctx context.Context, event Event) {
	text := strings.TrimSpace(event.Message.Text)
	lower := strings.ToLower(text)

	switch {
	case lower == "rate" || strings.HasPrefix(lower, "rate "):
		h.handleRating(ctx, event, text)
	case strings.HasPrefix(lower, "select"):
		h.handleSelect(ctx, event, text)
	case isParkingIntent(lower):
		h.handleParkingIntent(ctx, event)
	case isRestroomIntent(lower):
		h.handleRestroomIntent(ctx, event)
	default:
		h.dispatchQuery(ctx, event, text)
	}
}

func isParkingIntent(lower string) bool {
	return strings.Contains(lower, "停車") || strings.Contains(lower, "車位") ||
		strings.Contains(lower, "parking")
}

func isRestroomIntent(lower string) bool {
	return strings.Contains(lower, "廁所") || strings.Contains(lower, "洗手間") ||
		strings.Contains(lower, "restroom") || strings.Contains(lower, "toilet")
}

func (h *Handler) handleParkingIntent(ctx context.Context, event Event) {
	userID := event.Source.UserID
	state := h.states.Get(userID)
	if !state.HasLocation {
		h.states.Update(userID, func(s *UserState) { s.Awaiting = AwaitingParking })
		h.reply(ctx, event.ReplyToken, replyAskLocation)
		return
	}
	h.reply(ctx, event.ReplyToken, replyHolding)
	h.pushParkingAnswer(event, state.LastLocation, "")
}

func (h *Handler) handleRestroomIntent(ctx context.Context, event Event) {
	userID := event.Source.UserID
	state := h.states.Get(userID)
	if !state.HasLocation {
		h.states.Update(userID, func(s *UserState) { s.Awaiting = AwaitingRestroom })
		h.reply(ctx, event.ReplyToken, replyAskLocation)
		return
	}
	h.reply(ctx, event.ReplyToken, h.restroomAnswer(state.LastLocation))
}

// handleRating parses "rate <1-5> <comment>" against the selected item.
func (h *Handler) handleRating(ctx context.Context, event Event, text string) {
	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 2 {
		h.reply(ctx, event.ReplyToken, replyRatingUsage)
		return
	}
	score, err := strconv.Atoi(parts[1])
	if err != nil || score < 1 || score > 5 {
		log.Warnf("bad rating from %s: %q", event.Source.UserID, text)
		h.reply(ctx, event.ReplyToken, replyRatingUsage)
		return
	}
	comment := ""
	if len(parts) == 3 {
		comment = parts[2]
	}

	if h.ratings == nil {
		h.reply(ctx, event.ReplyToken, replyRatingDown)
		return
	}

	state := h.states.Get(event.Source.UserID)
	row := rating.Row{
		UserID:    event.Source.UserID,
		ItemID:    state.SelectedItem,
		Score:     score,
		Comment:   comment,
		Timestamp: time.UnixMilli(event.Timestamp),
	}
	if err := h.ratings.Append(ctx, row); err != nil {
		log.Errorf("rating append failed for %s: %v", event.Source.UserID, err)
		h.reply(ctx, event.ReplyToken, replyError)
		return
	}
	h.reply(ctx, event.ReplyToken, replyRatingThanks)
}

// handleSelect remembers which item a later rating refers to.
func (h *Handler) handleSelect(ctx context.Context, event Event, text string) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		h.reply(ctx, event.ReplyToken, replySelectUsage)
		return
	}
	itemID := strings.TrimSpace(parts[1])
	h.states.Update(event.Source.UserID, func(s *UserState) { s.SelectedItem = itemID })
	h.reply(ctx, event.ReplyToken, fmt.Sprintf("已選擇 %s，輸入 rate <1-5> <評語> 即可評分 🌟", itemID))
}

func (h *Handler) handleLocation(ctx context.Context, event Event) {
	userID := event.Source.UserID
	loc := geo.Point{Lat: event.Message.Latitude, Lon: event.Message.Longitude}

	var awaiting Awaiting
	h.states.Update(userID, func(s *UserState) {
		awaiting = s.Awaiting
		s.Awaiting = AwaitingNone
		s.LastLocation = loc
		s.HasLocation = true
	})

	switch awaiting {
	case AwaitingParking:
		h.reply(ctx, event.ReplyToken, replyHolding)
		h.pushParkingAnswer(event, loc, event.Message.Address)
	case AwaitingRestroom:
		h.reply(ctx, event.ReplyToken, h.restroomAnswer(loc))
	default:
		h.reply(ctx, event.ReplyToken, replyLocationStored)
	}
}

// pushParkingAnswer queues the model path and pushes the answer when it
// arrives. The webhook handler has already replied by now.
func (h *Handler) pushParkingAnswer(event Event, loc geo.Point, address string) {
	query := fmt.Sprintf("我的位置：緯度 %.6f、經度 %.6f", loc.Lat, loc.Lon)
	if address != "" {
		query += fmt.Sprintf("（%s）", address)
	}
	query += "，請幫我找附近的停車場"
	h.dispatchAnswer(event, query)
}

// dispatchQuery is the default path: anything that is not a structured
// command goes to the model.
func (h *Handler) dispatchQuery(ctx context.Context, event Event, text string) {
	h.reply(ctx, event.ReplyToken, replyHolding)
	h.dispatchAnswer(event, text)
}

func (h *Handler) dispatchAnswer(event Event, query string) {
	userID := event.Source.UserID
	agentID := AgentUserID(userID, event.Timestamp)

	results := h.dispatcher.Submit(func() (string, error) {
		ctx := context.Background()
		answer, err := h.agent.Ask(ctx, agentID, query)
		if err != nil {
			if pushErr := h.messenger.Push(ctx, userID, replyError); pushErr != nil {
				log.Errorf("failed to push error reply to %s: %v", userID, pushErr)
			}
			return "", err
		}
		answer = NormalizeAnswer(answer)
		if err := h.messenger.Push(ctx, userID, answer); err != nil {
			return "", fmt.Errorf("failed to push answer: %w", err)
		}
		return answer, nil
	})

	// Drain the result channel so task outcomes stay observable without
	// blocking the webhook path.
	go func() {
		result := <-results
		if result.Err != nil {
			log.Warnf("model path for %s (task %s) failed: %v", userID, result.TaskID, result.Err)
		}
	}()
}

// restroomAnswer formats the nearest restrooms around loc.
func (h *Handler) restroomAnswer(loc geo.Point) string {
	if h.restrooms == nil {
		return replyRestroomDown
	}
	matches := h.restrooms.Nearest(loc, poi.DefaultNearestCount)
	if len(matches) == 0 {
		return "附近找不到公廁資料 😢"
	}

	var b strings.Builder
	b.WriteString("離您最近的公廁：\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s（約 %.0f 公尺）\n", i+1, m.Restroom.Name, m.Distance)
		if m.Restroom.Address != "" {
			fmt.Fprintf(&b, "   📍 %s\n", m.Restroom.Address)
		}
		if m.Restroom.Accessible > 0 {
			b.WriteString("   ♿ 有無障礙廁位\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) reply(ctx context.Context, replyToken, text string) {
	if err := h.messenger.Reply(ctx, replyToken, text); err != nil {
		log.Errorf("failed to reply: %v", err)
	}
}
