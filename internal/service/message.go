package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// MessageService owns the message operations. Every operation takes
// the authenticated requester first and runs the relevant access
// predicate before the store is touched or anything is returned.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		logger:   logger,
	}
}

// Send creates a message from `from` to `to`.
//
// The requester may only send as themself (CanSendAs); a request that
// claims another sender is Forbidden before any lookup happens. The
// recipient must exist — that NotFound is safe to surface because the
// user directory is readable by every authenticated caller anyway.
func (s *MessageService) Send(ctx context.Context, requester, from, to, body string) (*model.Message, error) {
	if !auth.CanSendAs(requester, from) {
		return nil, apperror.Forbidden("cannot send a message as another user")
	}

	if _, err := s.users.GetByUsername(ctx, to); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("user", to)
		}
		return nil, fmt.Errorf("service/message: checking recipient %s: %w", to, err)
	}

	msg := &model.Message{From: from, To: to, Body: body}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("service/message: sending message %s → %s: %w", from, to, err)
	}

	s.logger.Info("message sent",
		slog.String("id", msg.ID),
		slog.String("from", from),
		slog.String("to", to),
	)

	return msg, nil
}

// Get returns a message with both parties' basic info. Only the sender
// and the recipient may see it; anyone else gets Forbidden — the
// message's existence is confirmed to them, which is the documented
// tradeoff of reporting Forbidden rather than masking it as NotFound.
func (s *MessageService) Get(ctx context.Context, requester, id string) (*model.MessageDetail, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/message: fetching message %s: %w", id, err)
	}

	if !auth.CanViewMessage(requester, msg) {
		return nil, apperror.Forbidden("cannot read this message")
	}

	detail, err := s.messages.GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/message: fetching message detail %s: %w", id, err)
	}

	return detail, nil
}

// MarkRead marks a message read on behalf of the requester.
//
// Only the recipient may mark it (CanMarkRead) — the sender is denied
// even though they can view the message. The repository's conditional
// update makes the operation idempotent in value: marking an
// already-read message returns the original read timestamp unchanged.
func (s *MessageService) MarkRead(ctx context.Context, requester, id string) (*model.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/message: fetching message %s: %w", id, err)
	}

	if !auth.CanMarkRead(requester, msg) {
		return nil, apperror.Forbidden("cannot mark this message as read")
	}

	marked, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/message: marking message %s read: %w", id, err)
	}

	return marked, nil
}
