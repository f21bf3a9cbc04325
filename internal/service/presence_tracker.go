package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dmserver/internal/domain"
)

// PresenceTracker owns every user status transition. Status is mutated only
// through SetOnline/SetOffline; no other component writes it.
type PresenceTracker struct {
	users domain.UserStore
	log   zerolog.Logger
}

func NewPresenceTracker(users domain.UserStore, log zerolog.Logger) *PresenceTracker {
	return &PresenceTracker{users: users, log: log}
}

// SetOnline marks a registered user as online. Idempotent.
func (t *PresenceTracker) SetOnline(ctx context.Context, nickname string) error {
	return t.setStatus(ctx, nickname, domain.StatusOnline)
}

// SetOffline marks a registered user as offline. Idempotent.
func (t *PresenceTracker) SetOffline(ctx context.Context, nickname string) error {
	return t.setStatus(ctx, nickname, domain.StatusOffline)
}

// ListOnline returns a snapshot of users currently online. The snapshot is
// not synchronized against concurrent status changes and may be stale by
// the time the caller reads it.
func (t *PresenceTracker) ListOnline(ctx context.Context) ([]*domain.User, error) {
	return t.users.FindByStatus(ctx, domain.StatusOnline)
}

// setStatus verifies the user exists before writing; presence never
// registers a user as a side effect.
func (t *PresenceTracker) setStatus(ctx context.Context, nickname string, status domain.Status) error {
	if nickname == "" {
		return fmt.Errorf("%w: nickname must be non-empty", domain.ErrInvalidInput)
	}

	user, err := t.users.FindByNickname(ctx, nickname)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, nickname)
	}

	user.Status = status
	user.LastSeen = time.Now()
	if err := t.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user status: %w", err)
	}

	t.log.Debug().Str("user", nickname).Str("status", string(status)).Msg("presence updated")
	return nil
}
