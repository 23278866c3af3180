package core

import (
	"context"

	"github.com/questhall/questhall/internal/domain"
)

// MessageStore is the durable side of the chat core. CreateMessage assigns
// the message id and timestamp; the returned record is the canonical
// representation every observer sees.
type MessageStore interface {
	CreateMessage(ctx context.Context, roomID domain.RoomID, senderID domain.UserID, content string) (domain.Message, error)
	TouchRoom(ctx context.Context, roomID domain.RoomID) error
	ListMessages(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error)
}
