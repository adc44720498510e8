package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// UserService answers user-directory and history queries, applying the
// access rules before touching the store.
type UserService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	logger   *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		messages: messages,
		logger:   logger,
	}
}

// List returns the basic info of every user. Open to any authenticated
// caller — listing is not profile access, so no predicate runs here.
func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

// GetProfile returns target's full profile (timestamps included).
// Only the user themself may see it; everyone else gets Forbidden,
// regardless of whether the target exists — the denial is decided
// before the store is consulted.
func (s *UserService) GetProfile(ctx context.Context, requester, target string) (*model.User, error) {
	if !auth.CanViewProfile(requester, target) {
		return nil, apperror.Forbidden("cannot view this profile")
	}

	user, err := s.users.GetByUsername(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching profile %s: %w", target, err)
	}

	return user, nil
}

// Inbox returns the messages sent to username, each with the sender's
// basic info. A user may only read their own inbox.
func (s *UserService) Inbox(ctx context.Context, requester, username string) ([]model.InboxEntry, error) {
	if !auth.CanViewProfile(requester, username) {
		return nil, apperror.Forbidden("cannot view this user's messages")
	}

	entries, err := s.messages.ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing inbox for %s: %w", username, err)
	}
	return entries, nil
}

// Outbox returns the messages username sent, each with the recipient's
// basic info. A user may only read their own outbox.
func (s *UserService) Outbox(ctx context.Context, requester, username string) ([]model.OutboxEntry, error) {
	if !auth.CanViewProfile(requester, username) {
		return nil, apperror.Forbidden("cannot view this user's messages")
	}

	entries, err := s.messages.ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing outbox for %s: %w", username, err)
	}
	return entries, nil
}
