package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"dmserver/internal/domain"
	"dmserver/internal/logging"
	"dmserver/internal/security"
	"dmserver/internal/service"
)

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		_, ok := allowed[strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))]
		return ok
	}
}

// extractToken reads the bearer token from the Authorization header or,
// for browser clients that cannot set headers on WebSocket upgrades, from
// the Sec-WebSocket-Protocol list ("bearer, <token>").
func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}

	parts := strings.Split(r.Header.Get("Sec-WebSocket-Protocol"), ",")
	if len(parts) >= 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// inbound is a client-to-server event frame.
type inbound struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// MakeHandler returns the HTTP handler for the /ws endpoint. It
// authenticates the bearer token, marks the user online for the lifetime
// of the connection, and dispatches events:
//   - message -> MessageRouter.Submit (persist, then notify the receiver)
//   - ping    -> ignored (keepalive)
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserStore,
	presence *service.PresenceTracker,
	router *service.MessageRouter,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin:  checkOrigin,
		Subprotocols: []string{"bearer"},
	}
	log := logging.L().With().Str("component", "ws").Logger()

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr := extractToken(r)
		if tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		nickname := security.Subject(claims)
		if nickname == "" {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.FindByNickname(ctx, nickname)
		if err != nil || user == nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := presence.SetOnline(ctx, nickname); err != nil {
			log.Error().Err(err).Str("user", nickname).Msg("set online failed")
		}
		hub.Register(nickname, conn)
		hub.BroadcastAll(map[string]any{
			"type":     "user_online",
			"nickname": nickname,
		})

		defer func() {
			hub.Unregister(nickname, conn)
			// the request context is gone once the client disconnects
			if err := presence.SetOffline(context.Background(), nickname); err != nil {
				log.Error().Err(err).Str("user", nickname).Msg("set offline failed")
			}
			hub.BroadcastAll(map[string]any{
				"type":     "user_offline",
				"nickname": nickname,
			})
		}()

		for {
			var ev inbound
			if err := conn.ReadJSON(&ev); err != nil {
				break
			}

			switch ev.Type {
			case "message":
				if ev.ReceiverID == "" || ev.Content == "" {
					sendError(conn, "message requires receiver_id and non-empty content")
					continue
				}
				if _, err := router.Submit(ctx, nickname, ev.ReceiverID, ev.Content); err != nil {
					log.Error().Err(err).Str("sender", nickname).Str("receiver", ev.ReceiverID).Msg("submit failed")
					if errors.Is(err, domain.ErrRoomUnavailable) {
						sendError(conn, "service temporarily unavailable, retry")
					} else {
						sendError(conn, "failed to send message")
					}
				}

			case "ping":
				// keepalive only

			default:
				log.Debug().Str("type", ev.Type).Str("user", nickname).Msg("unknown event type")
			}
		}
	}
}

func sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(map[string]any{
		"type":    "error",
		"message": msg,
	})
}
