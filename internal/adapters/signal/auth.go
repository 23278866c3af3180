package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/domain"
)

// handleAuth upgrades an anonymous connection into part of a session. The
// identity is supplied by the client and trusted as-is; the external auth
// provider issued it before the socket was opened.
func (ctl *Controller) handleAuth(c *wsConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad auth payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	userID := domain.UserID(p.UserID)

	// Re-auth under a different identity abandons the old one: its session
	// and memberships must go now, not at transport close, or the registry
	// keeps a dead session and rooms keep a ghost member.
	if prev := c.user(); prev != "" && prev != userID {
		ctl.Rooms.DropConn(prev, c)
		ctl.Registry.Unregister(prev, c)
		log.Info().Str("module", "signal").Str("old_user", string(prev)).Str("new_user", p.UserID).Msg("identity switched")
	}

	if err := ctl.Registry.Auth(userID, c); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("auth rejected")
		ctl.sendError(c, "invalid_user_id")
		return
	}
	c.setUser(userID)

	ctl.sendJSON(c, struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}{
		Type:   "auth_success",
		UserID: p.UserID,
	})
}
