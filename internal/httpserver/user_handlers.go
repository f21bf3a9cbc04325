package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmserver/internal/domain"
	"dmserver/internal/service"
)

func handleListOnlineUsers(presence *service.PresenceTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := presence.ListOnline(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if users == nil {
			users = []*domain.User{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func handleGetUser(users domain.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nickname := chi.URLParam(r, "nickname")
		user, err := users.FindByNickname(r.Context(), nickname)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if user == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
