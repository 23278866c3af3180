// Package sqlite provides the SQLite-backed durable store for rooms and
// messages.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/questhall/questhall/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_rooms (
	id         TEXT PRIMARY KEY,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	room_id    TEXT NOT NULL,
	sender_id  TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_room ON chat_messages(room_id, seq);
`

// Store persists chat state in SQLite. The seq column captures canonical
// in-room order: the order in which persistence calls completed.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the store and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateMessage inserts one message record, assigning its id and timestamp.
func (s *Store) CreateMessage(ctx context.Context, roomID domain.RoomID, senderID domain.UserID, content string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	if roomID == "" {
		return domain.Message{}, fmt.Errorf("room id is required")
	}
	if senderID == "" {
		return domain.Message{}, fmt.Errorf("sender id is required")
	}

	msg := domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO chat_messages (id, room_id, sender_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(msg.ID),
		string(msg.RoomID),
		string(msg.SenderID),
		msg.Content,
		toMillis(msg.CreatedAt),
	)
	if err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// TouchRoom records room activity, creating the row on first touch.
func (s *Store) TouchRoom(ctx context.Context, roomID domain.RoomID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if roomID == "" {
		return fmt.Errorf("room id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO chat_rooms (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		string(roomID),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("touch room: %w", err)
	}
	return nil
}

// ListMessages returns the most recent messages of a room in canonical
// (persistence-completion) order, oldest first.
func (s *Store) ListMessages(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, room_id, sender_id, content, created_at FROM (
			SELECT seq, id, room_id, sender_id, content, created_at
			FROM chat_messages WHERE room_id = ?
			ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		string(roomID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var (
			msg       domain.Message
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.CreatedAt = fromMillis(createdAt)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}
