package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the chat schema.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users, keyed by nickname
		`CREATE TABLE IF NOT EXISTS users (
			nickname VARCHAR(50) PRIMARY KEY,
			full_name VARCHAR(100) NOT NULL DEFAULT '',
			hashed_password VARCHAR(255) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'OFFLINE',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Rooms: one canonical row per unordered user pair. chat_id is
		// derived from the sorted pair, so the primary key doubles as the
		// unique-pair constraint that serializes concurrent creation.
		`CREATE TABLE IF NOT EXISTS rooms (
			chat_id VARCHAR(120) PRIMARY KEY,
			user_a VARCHAR(50) NOT NULL,
			user_b VARCHAR(50) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_user_a ON rooms(user_a);`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_user_b ON rooms(user_b);`,
		// Messages; id order is the insertion order Fetch relies on
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id VARCHAR(120) NOT NULL,
			sender_id VARCHAR(50) NOT NULL,
			receiver_id VARCHAR(50) NOT NULL,
			content TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			FOREIGN KEY (chat_id) REFERENCES rooms(chat_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
