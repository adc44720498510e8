package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// UserHandler serves the user directory and per-user message history.
// Every route here sits behind RequireAuth — the requester's username
// is always in the context.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns every user's basic info.
//
// HTTP: GET /users
// RESPONSE: {"users": [{username, first_name, last_name, phone}, ...]}
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("listing users failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.PublicUser{"users": users})
}

// HandleGet returns a user's full profile — own profile only.
//
// HTTP: GET /users/{username}
// RESPONSE: {"user": {username, first_name, last_name, phone, join_at, last_login_at}}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	target := r.PathValue("username")

	user, err := h.users.GetProfile(r.Context(), requester, target)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// HandleInbox returns the messages sent to a user — own inbox only.
//
// HTTP: GET /users/{username}/to
// RESPONSE: {"messages": [{id, body, sent_at, read_at, from_user}, ...]}
func (h *UserHandler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	target := r.PathValue("username")

	entries, err := h.users.Inbox(r.Context(), requester, target)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.InboxEntry{"messages": entries})
}

// HandleOutbox returns the messages a user sent — own outbox only.
//
// HTTP: GET /users/{username}/from
// RESPONSE: {"messages": [{id, body, sent_at, read_at, to_user}, ...]}
func (h *UserHandler) HandleOutbox(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	target := r.PathValue("username")

	entries, err := h.users.Outbox(r.Context(), requester, target)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.OutboxEntry{"messages": entries})
}
