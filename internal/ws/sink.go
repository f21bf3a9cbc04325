package ws

import (
	"context"

	"dmserver/internal/domain"
)

// HubSink delivers notifications to the receiver's active connections on
// this instance. It is the in-process NotificationSink implementation.
type HubSink struct {
	hub *Hub
}

func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

var _ domain.NotificationSink = (*HubSink)(nil)

// frame mirrors the per-user STOMP destination the original clients
// subscribe to: the channel names the queue, the payload is the event.
type frame struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Payload any    `json:"payload"`
}

func (s *HubSink) PushToUser(_ context.Context, userID, channel string, payload any) error {
	return s.hub.SendToUser(userID, frame{
		Type:    "notification",
		Channel: channel,
		Payload: payload,
	})
}
