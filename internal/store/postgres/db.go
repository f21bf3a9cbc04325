package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the chat schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users, keyed by nickname
		`CREATE TABLE IF NOT EXISTS users (
			nickname        VARCHAR(50)  PRIMARY KEY,
			full_name       VARCHAR(100) NOT NULL DEFAULT '',
			hashed_password VARCHAR(255) NOT NULL,
			status          VARCHAR(10)  NOT NULL DEFAULT 'OFFLINE',
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_seen       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Rooms: one canonical row per unordered user pair
		`CREATE TABLE IF NOT EXISTS rooms (
			chat_id    VARCHAR(120) PRIMARY KEY,
			user_a     VARCHAR(50)  NOT NULL,
			user_b     VARCHAR(50)  NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_user_a ON rooms(user_a)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_user_b ON rooms(user_b)`,

		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id          BIGSERIAL    PRIMARY KEY,
			chat_id     VARCHAR(120) NOT NULL REFERENCES rooms(chat_id),
			sender_id   VARCHAR(50)  NOT NULL,
			receiver_id VARCHAR(50)  NOT NULL,
			content     TEXT         NOT NULL,
			timestamp   TIMESTAMPTZ  NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
