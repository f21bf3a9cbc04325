package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dmserver/internal/domain"
)

// MessageRouter orchestrates the save-then-notify pipeline: resolve the
// room, persist the message, then push a notification to the receiver's
// private queue. Persistence success is the durability contract; delivery
// is best-effort and never rolls back the save.
//
// Retrying Submit after a timeout whose write actually succeeded can
// persist the message twice. That is accepted at-least-once behavior; the
// router does not deduplicate.
type MessageRouter struct {
	directory *RoomDirectory
	messages  domain.MessageStore
	sink      domain.NotificationSink
	timeout   time.Duration
	log       zerolog.Logger
}

func NewMessageRouter(
	directory *RoomDirectory,
	messages domain.MessageStore,
	sink domain.NotificationSink,
	timeout time.Duration,
	log zerolog.Logger,
) *MessageRouter {
	return &MessageRouter{
		directory: directory,
		messages:  messages,
		sink:      sink,
		timeout:   timeout,
		log:       log,
	}
}

// Submit persists a message between sender and receiver, creating the room
// on first contact, and pushes a notification to the receiver. The returned
// message carries the store-assigned id and the resolved chat id.
func (r *MessageRouter) Submit(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", domain.ErrInvalidInput)
	}

	chatID, _, err := r.directory.Resolve(ctx, senderID, receiverID, true)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now(),
	}

	sctx, cancel := r.bound(ctx)
	err = r.messages.Save(sctx, msg)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	// Persistence happens-before notification. Push failures are logged
	// and swallowed.
	nctx, cancel := r.bound(ctx)
	err = r.sink.PushToUser(nctx, receiverID, domain.QueueMessages, domain.Notification{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
	})
	cancel()
	if err != nil {
		r.log.Error().Err(err).
			Str("receiver", receiverID).
			Int64("message_id", msg.ID).
			Msg("notification push failed")
	}

	return msg, nil
}

// Fetch returns the conversation history between sender and receiver in
// store insertion order. A pair without a room has no history and yields
// ErrRoomNotFound.
func (r *MessageRouter) Fetch(ctx context.Context, senderID, receiverID string) ([]*domain.Message, error) {
	chatID, found, err := r.directory.Resolve(ctx, senderID, receiverID, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrRoomNotFound
	}

	sctx, cancel := r.bound(ctx)
	defer cancel()
	msgs, err := r.messages.FindByChatID(sctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return msgs, nil
}

func (r *MessageRouter) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
