package service

import (
	"context"
	"fmt"

	"dmserver/internal/domain"
)

// RoomDirectory resolves and lazily creates the canonical room for a
// sender/receiver pair. It is the only component that writes room records.
type RoomDirectory struct {
	rooms domain.RoomStore
}

func NewRoomDirectory(rooms domain.RoomStore) *RoomDirectory {
	return &RoomDirectory{rooms: rooms}
}

// Resolve returns the chat id for the pair, looking the room up by the
// directional pair exactly as given. When the room is absent and
// createIfMissing is set, a new room is created and (chatID, true) is
// returned; otherwise ("", false).
//
// The chat id is derived deterministically from the sorted pair before any
// write, and the store's insert is idempotent under a unique key, so any
// number of concurrent Resolve calls on the same unordered pair converge on
// a single persisted record with a single chat id. No per-pair lock is
// needed.
func (d *RoomDirectory) Resolve(ctx context.Context, senderID, receiverID string, createIfMissing bool) (string, bool, error) {
	if senderID == "" || receiverID == "" {
		return "", false, fmt.Errorf("%w: sender and receiver ids must be non-empty", domain.ErrInvalidInput)
	}

	room, err := d.rooms.FindByDirectionalPair(ctx, senderID, receiverID)
	if err != nil {
		return "", false, fmt.Errorf("%w: find room: %v", domain.ErrRoomUnavailable, err)
	}
	if room != nil {
		return room.ChatID, true, nil
	}

	if !createIfMissing {
		return "", false, nil
	}

	room = domain.NewRoom(senderID, receiverID)
	if err := d.rooms.Save(ctx, room); err != nil {
		return "", false, fmt.Errorf("%w: create room: %v", domain.ErrRoomUnavailable, err)
	}
	return room.ChatID, true, nil
}
