package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

// BroadcastResult reports delivery stats for one fan-out.
type BroadcastResult struct {
	SentTo  int
	Dropped []domain.UserID
}

// Rooms tracks which live connections should receive broadcasts for a room
// right now. It is not authoritative for room membership; that list lives in
// the external REST layer.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]core.Conn
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[domain.RoomID]map[domain.UserID]core.Conn)}
}

// Join adds the user's connection to the room's live set. Idempotent: a
// second join for the same user keeps one entry.
func (t *Rooms) Join(roomID domain.RoomID, userID domain.UserID, conn core.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members, ok := t.rooms[roomID]
	if !ok {
		members = make(map[domain.UserID]core.Conn)
		t.rooms[roomID] = members
	}
	if _, joined := members[userID]; joined {
		members[userID] = conn
		return
	}
	members[userID] = conn
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("member joined")
}

// Leave is a no-op when the user is not currently a member.
func (t *Rooms) Leave(roomID domain.RoomID, userID domain.UserID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members, ok := t.rooms[roomID]
	if !ok {
		return
	}
	if _, joined := members[userID]; !joined {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(t.rooms, roomID)
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("member left")
}

// DropConn removes the user from every room where this exact connection is
// the member entry. Membership installed by a newer connection for the same
// identity is left alone.
func (t *Rooms) DropConn(userID domain.UserID, conn core.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for roomID, members := range t.rooms {
		if cur, ok := members[userID]; ok && cur == conn {
			delete(members, userID)
			if len(members) == 0 {
				delete(t.rooms, roomID)
			}
		}
	}
	log.Info().Str("module", "app.rooms").Str("user", string(userID)).Msg("dropped memberships")
}

func (t *Rooms) IsMember(roomID domain.RoomID, userID domain.UserID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rooms[roomID][userID]
	return ok
}

func (t *Rooms) MemberCount(roomID domain.RoomID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[roomID])
}

// Broadcast fans one frame out to every current member of the room, the
// sender's own connection included. A failing recipient is logged and
// skipped; it never aborts delivery to the rest.
func (t *Rooms) Broadcast(roomID domain.RoomID, frame core.Frame) BroadcastResult {
	t.mu.RLock()
	snapshot := make(map[domain.UserID]core.Conn, len(t.rooms[roomID]))
	for userID, conn := range t.rooms[roomID] {
		snapshot[userID] = conn
	}
	t.mu.RUnlock()

	res := BroadcastResult{}
	for userID, conn := range snapshot {
		if err := conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, userID)
			log.Warn().Err(err).Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("broadcast send failed")
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.rooms").Str("room", string(roomID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
