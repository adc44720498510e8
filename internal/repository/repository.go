package repository

import (
	"context"

	"github.com/sakif/messagely/internal/model"
)

// UserRepository persists user accounts keyed by username.
//
// Uniqueness of the username is the store's job: CreateUser must fail
// with apperror.ErrDuplicateUser on a key collision, backed by the
// primary key constraint, so concurrent registrations can't both win.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.PublicUser, error)
	UpdateLastLogin(ctx context.Context, username string) error
}

// MessageRepository persists messages.
//
// MarkRead must be a single-row conditional update that only fires when
// read_at is still NULL — calling it again returns the row unchanged,
// which is how "read_at transitions exactly once" is enforced without
// in-process locking.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	GetDetail(ctx context.Context, id string) (*model.MessageDetail, error)
	MarkRead(ctx context.Context, id string) (*model.Message, error)
	ListTo(ctx context.Context, username string) ([]model.InboxEntry, error)
	ListFrom(ctx context.Context, username string) ([]model.OutboxEntry, error)
}
