// Package notify implements a NotificationSink over redis Pub/Sub so a
// notification published by one instance reaches the receiver's socket on
// whichever instance holds it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"dmserver/internal/domain"
	"dmserver/internal/logging"
)

// Channel all instances publish and subscribe on.
const pubSubChannel = "chat:notifications"

// envelope carries a notification between instances.
type envelope struct {
	UserID  string          `json:"user_id"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

// NewClient creates and pings a redis client.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Sink publishes notifications to the shared Pub/Sub channel.
type Sink struct {
	client *redis.Client
}

func NewSink(client *redis.Client) *Sink {
	return &Sink{client: client}
}

var _ domain.NotificationSink = (*Sink)(nil)

func (s *Sink) PushToUser(ctx context.Context, userID, channel string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	env, err := json.Marshal(envelope{
		UserID:  userID,
		Channel: channel,
		Payload: raw,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := s.client.Publish(ctx, pubSubChannel, env).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscriber consumes the Pub/Sub channel and hands each notification to
// the local sink for delivery to connections held by this instance.
type Subscriber struct {
	client *redis.Client
	local  domain.NotificationSink
	done   chan struct{}
}

func NewSubscriber(client *redis.Client, local domain.NotificationSink) *Subscriber {
	return &Subscriber{
		client: client,
		local:  local,
		done:   make(chan struct{}),
	}
}

// Done returns a channel that is closed when Run exits.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Run subscribes and forwards notifications until ctx is done, reconnecting
// on receive errors.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.done)
	log := logging.L().With().Str("component", "notify").Logger()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := s.runSubscription(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("pubsub subscription error, reconnecting in 2s")
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
					continue
				}
			}
			return
		}
	}
}

func (s *Subscriber) runSubscription(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, pubSubChannel)
	defer pubsub.Close()

	// Wait for the subscription to be active
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	log := logging.L().With().Str("component", "notify").Logger()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("pubsub channel closed")
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Msg("malformed notification envelope")
				continue
			}
			if err := s.local.PushToUser(ctx, env.UserID, env.Channel, env.Payload); err != nil {
				log.Warn().Err(err).Str("user", env.UserID).Msg("local delivery failed")
			}
		}
	}
}
