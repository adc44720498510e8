package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// MessageHandler serves message send/view/mark-read. All routes sit
// behind RequireAuth.
type MessageHandler struct {
	messages *service.MessageService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewMessageHandler(messages *service.MessageService, validate *validator.Validate, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		validate: validate,
		logger:   logger,
	}
}

type sendRequest struct {
	To   string `json:"to_username" validate:"required,max=64"`
	Body string `json:"body" validate:"required,max=10000"`
}

// HandleSend creates a message from the authenticated user.
//
// HTTP: POST /messages
// REQUEST BODY: {"to_username", "body"}
// RESPONSE: 201 {"message": {id, from_username, to_username, body, sent_at, read_at}}
//
// The sender is always the authenticated requester — the body carries
// no sender field to forge.
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	msg, err := h.messages.Send(r.Context(), requester, requester, req.To, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]*model.Message{"message": msg})
}

// HandleGet returns one message with both parties' basic info.
//
// HTTP: GET /messages/{id}
// RESPONSE: {"message": {id, body, sent_at, read_at, from_user, to_user}}
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "message id is required"))
		return
	}

	detail, err := h.messages.Get(r.Context(), requester, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.MessageDetail{"message": detail})
}

// readResponse is the mark-read reply: just the id and the timestamp
// that stuck.
type readResponse struct {
	ID     string     `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

// HandleMarkRead marks a message read.
//
// HTTP: POST /messages/{id}/read
// RESPONSE: {"message": {id, read_at}}
func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "message id is required"))
		return
	}

	msg, err := h.messages.MarkRead(r.Context(), requester, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]readResponse{
		"message": {ID: msg.ID, ReadAt: msg.ReadAt},
	})
}
