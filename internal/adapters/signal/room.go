package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/domain"
)

type roomPayload struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	RoomID string `json:"chatRoomId"`
}

// handleJoin adds the connection's user to a room's live fan-out set. The
// authoritative participant list is owned by the REST layer; any join from
// an authenticated connection is accepted. Joining twice acks both times.
func (ctl *Controller) handleJoin(c *wsConn, data []byte) {
	userID := c.user()
	if userID == "" {
		ctl.sendError(c, "not_authenticated")
		return
	}

	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	roomID := domain.RoomID(p.RoomID)
	ctl.Rooms.Join(roomID, userID, c)
	ctl.sendJSON(c, struct {
		Type   string `json:"type"`
		RoomID string `json:"chatRoomId"`
	}{
		Type:   "join_room_success",
		RoomID: p.RoomID,
	})
}

// handleLeave is the symmetric no-op-when-absent counterpart.
func (ctl *Controller) handleLeave(c *wsConn, data []byte) {
	userID := c.user()
	if userID == "" {
		ctl.sendError(c, "not_authenticated")
		return
	}

	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Rooms.Leave(domain.RoomID(p.RoomID), userID)
	ctl.sendJSON(c, struct {
		Type   string `json:"type"`
		RoomID string `json:"chatRoomId"`
	}{
		Type:   "leave_room_success",
		RoomID: p.RoomID,
	})
}
