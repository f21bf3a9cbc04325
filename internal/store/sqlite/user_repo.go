package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dmserver/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserStore = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (nickname, full_name, hashed_password, status, created_at, last_seen)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	if _, err := r.db.ExecContext(ctx, query, u.Nickname, u.FullName, u.HashedPassword, u.Status); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: nickname %q", domain.ErrConflict, u.Nickname)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	query := `
		SELECT nickname, full_name, hashed_password, status, created_at, last_seen
		FROM users
		WHERE nickname = ?
	`
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, nickname).Scan(
		&u.Nickname,
		&u.FullName,
		&u.HashedPassword,
		&u.Status,
		&u.CreatedAt,
		&u.LastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET full_name = ?, hashed_password = ?, status = ?, last_seen = ?
		WHERE nickname = ?
	`
	if _, err := r.db.ExecContext(ctx, query, u.FullName, u.HashedPassword, u.Status, u.LastSeen, u.Nickname); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.User, error) {
	query := `
		SELECT nickname, full_name, hashed_password, status, created_at, last_seen
		FROM users
		WHERE status = ?
		ORDER BY last_seen DESC
	`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list users by status: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(
			&u.Nickname,
			&u.FullName,
			&u.HashedPassword,
			&u.Status,
			&u.CreatedAt,
			&u.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
