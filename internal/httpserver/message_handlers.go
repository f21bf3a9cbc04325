package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmserver/internal/domain"
	"dmserver/internal/service"
)

type submitMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

func handleSubmitMessage(msgRouter *service.MessageRouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		var req submitMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		msg, err := msgRouter.Submit(r.Context(), user.Nickname, req.ReceiverID, req.Content)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// handleFetchHistory returns the conversation between two users. Either
// direction resolves to the same history, but the current user must be one
// of the two parties.
func handleFetchHistory(msgRouter *service.MessageRouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		senderID := chi.URLParam(r, "senderID")
		receiverID := chi.URLParam(r, "receiverID")
		if user.Nickname != senderID && user.Nickname != receiverID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not a participant in this conversation"})
			return
		}

		msgs, err := msgRouter.Fetch(r.Context(), senderID, receiverID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if msgs == nil {
			msgs = []*domain.Message{}
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}
