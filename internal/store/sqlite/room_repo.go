package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"dmserver/internal/domain"
)

type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

var _ domain.RoomStore = (*RoomRepo)(nil)

// FindByDirectionalPair canonicalizes the pair to its chat id, so lookups
// for (A,B) and (B,A) hit the same row.
func (r *RoomRepo) FindByDirectionalPair(ctx context.Context, senderID, receiverID string) (*domain.Room, error) {
	query := `
		SELECT chat_id, user_a, user_b, created_at
		FROM rooms
		WHERE chat_id = ?
	`
	room := &domain.Room{}
	err := r.db.QueryRowContext(ctx, query, domain.ChatID(senderID, receiverID)).Scan(
		&room.ChatID,
		&room.UserA,
		&room.UserB,
		&room.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	return room, nil
}

// Save inserts the room; a concurrent insert of the same pair is absorbed
// by INSERT OR IGNORE on the primary key.
func (r *RoomRepo) Save(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT OR IGNORE INTO rooms (chat_id, user_a, user_b, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`
	if _, err := r.db.ExecContext(ctx, query, room.ChatID, room.UserA, room.UserB); err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}
