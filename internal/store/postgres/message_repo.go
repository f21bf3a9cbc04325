package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dmserver/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageStore = (*MessageRepo)(nil)

func (r *MessageRepo) Save(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (chat_id, sender_id, receiver_id, content, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, m.ChatID, m.SenderID, m.ReceiverID, m.Content, m.Timestamp).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// FindByChatID returns messages in insertion order (by id), not re-sorted
// by timestamp.
func (r *MessageRepo) FindByChatID(ctx context.Context, chatID string) ([]*domain.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, receiver_id, content, timestamp
		FROM messages
		WHERE chat_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.ChatID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Content,
			&m.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
