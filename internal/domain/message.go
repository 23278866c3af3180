package domain

import "time"

type MessageID string

// Message is created by the durable store at persistence time; id and
// timestamp are assigned there, never client-side. Immutable afterwards.
type Message struct {
	ID        MessageID
	RoomID    RoomID
	SenderID  UserID
	Content   string
	CreatedAt time.Time
}
