package domain

// RoomID identifies a quest or party chat channel. The id is owned by the
// external REST layer; the chat core only mirrors live membership for it.
type RoomID string
