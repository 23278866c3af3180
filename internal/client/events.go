package client

import "time"

// Profile mirrors the user object embedded in chat frames.
type Profile struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// Event is a decoded server frame surfaced to the UI layer. Fields are
// populated according to Type; zero values mean absent.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	RoomID    string    `json:"chatRoomId"`
	ID        string    `json:"id"`
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	User      *Profile  `json:"user"`
}

type outFrame struct {
	Type    string   `json:"type"`
	UserID  string   `json:"userId"`
	RoomID  string   `json:"chatRoomId,omitempty"`
	Content string   `json:"content,omitempty"`
	User    *Profile `json:"user,omitempty"`
}
