package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

type chatPayload struct {
	Type    string      `json:"type"`
	UserID  string      `json:"userId"`
	RoomID  string      `json:"chatRoomId"`
	Content string      `json:"content"`
	User    domain.User `json:"user"`
}

type chatBroadcast struct {
	Type      string      `json:"type"`
	ID        string      `json:"id"`
	RoomID    string      `json:"chatRoomId"`
	UserID    string      `json:"userId"`
	Content   string      `json:"content"`
	User      domain.User `json:"user"`
	Timestamp time.Time   `json:"timestamp"`
}

// handleChatMessage persists first, acks the sender, then fans out. The
// store-assigned id and timestamp are the only representation observers see;
// a failed write produces chat_message_error and no broadcast.
func (ctl *Controller) handleChatMessage(ctx context.Context, c *wsConn, data []byte) {
	userID := c.user()
	if userID == "" {
		ctl.sendError(c, "not_authenticated")
		return
	}

	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	roomID := domain.RoomID(p.RoomID)
	msg, err := ctl.Chat.Append(ctx, userID, roomID, p.Content)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("message persist failed")
		ctl.sendJSON(c, struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}{
			Type:  "chat_message_error",
			Error: err.Error(),
		})
		return
	}

	// Delivery ack to the sender, distinct from any broadcast copy, so
	// optimistic client state can be reconciled with the persisted record.
	ctl.sendJSON(c, struct {
		Type      string    `json:"type"`
		MessageID string    `json:"messageId"`
		RoomID    string    `json:"chatRoomId"`
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Type:      "chat_message_sent",
		MessageID: string(msg.ID),
		RoomID:    p.RoomID,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
	})

	sender := p.User
	if sender.ID == "" {
		sender.ID = userID
	}
	frame, err := json.Marshal(chatBroadcast{
		Type:      "chat_message",
		ID:        string(msg.ID),
		RoomID:    p.RoomID,
		UserID:    string(userID),
		Content:   msg.Content,
		User:      sender,
		Timestamp: msg.CreatedAt,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}

	res := ctl.Rooms.Broadcast(roomID, core.Frame(frame))
	log.Info().Str("module", "signal").Str("room", p.RoomID).Str("message", string(msg.ID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("message delivered")
}
