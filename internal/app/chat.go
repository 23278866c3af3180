package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

var ErrEmptyContent = errors.New("empty content")

// Chat persists inbound messages. A message is durably stored before any
// broadcast payload is built; a failed write never becomes a delivered
// message.
type Chat struct {
	store core.MessageStore
}

func NewChat(store core.MessageStore) *Chat {
	return &Chat{store: store}
}

// Append stores one message and returns the record carrying the
// store-assigned id and timestamp.
func (c *Chat) Append(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, ErrEmptyContent
	}

	msg, err := c.store.CreateMessage(ctx, roomID, userID, content)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}

	// The room's activity timestamp is bookkeeping, not part of the
	// delivery contract; a failed touch does not fail the message.
	if err := c.store.TouchRoom(ctx, roomID); err != nil {
		log.Warn().Err(err).Str("module", "app.chat").Str("room", string(roomID)).Msg("touch room failed")
	}

	log.Debug().Str("module", "app.chat").Str("room", string(roomID)).Str("message", string(msg.ID)).Msg("message persisted")
	return msg, nil
}
