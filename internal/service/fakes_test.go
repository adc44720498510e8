package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of
// repository.UserRepository. Using a fake (not a mock framework) keeps
// tests dependency-free and easy to read — you can see exactly what the
// fake does.
type fakeUserRepo struct {
	users map[string]*model.User // keyed by username
	// set to a non-nil error to simulate a database failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.users[user.Username]; exists {
		// Mirrors the sqlite repository's translation of the
		// primary-key violation.
		return apperror.DuplicateUser(user.Username)
	}
	copied := *user
	f.users[user.Username] = &copied
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.PublicUser, error) {
	result := make([]model.PublicUser, 0, len(f.users))
	for _, u := range f.users {
		result = append(result, u.Public())
	}
	return result, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, username string) error {
	u, ok := f.users[username]
	if !ok {
		return apperror.NotFound("user", username)
	}
	u.LastLoginAt = time.Now()
	return nil
}

// fakeMessageRepo is an in-memory implementation of
// repository.MessageRepository. It resolves the joined shapes against a
// fakeUserRepo the same way the sqlite implementation joins the users
// table.
type fakeMessageRepo struct {
	messages map[string]*model.Message
	userRepo *fakeUserRepo
	nextID   int
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string]*model.Message),
		userRepo: users,
	}
}

func (f *fakeMessageRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	f.nextID++
	msg.ID = fmt.Sprintf("msg-%d", f.nextID)
	msg.SentAt = time.Now()
	msg.ReadAt = nil
	copied := *msg
	f.messages[msg.ID] = &copied
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	result := *m
	return &result, nil
}

func (f *fakeMessageRepo) GetDetail(ctx context.Context, id string) (*model.MessageDetail, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	from, err := f.userRepo.GetByUsername(ctx, m.From)
	if err != nil {
		return nil, err
	}
	to, err := f.userRepo.GetByUsername(ctx, m.To)
	if err != nil {
		return nil, err
	}
	return &model.MessageDetail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: from.Public(),
		ToUser:   to.Public(),
	}, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, id string) (*model.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	if m.ReadAt == nil {
		now := time.Now()
		m.ReadAt = &now
	}
	result := *m
	return &result, nil
}

func (f *fakeMessageRepo) ListTo(ctx context.Context, username string) ([]model.InboxEntry, error) {
	entries := []model.InboxEntry{}
	for _, m := range f.messages {
		if m.To != username {
			continue
		}
		from, err := f.userRepo.GetByUsername(ctx, m.From)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.InboxEntry{
			ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt,
			FromUser: from.Public(),
		})
	}
	return entries, nil
}

func (f *fakeMessageRepo) ListFrom(ctx context.Context, username string) ([]model.OutboxEntry, error) {
	entries := []model.OutboxEntry{}
	for _, m := range f.messages {
		if m.From != username {
			continue
		}
		to, err := f.userRepo.GetByUsername(ctx, m.To)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.OutboxEntry{
			ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt,
			ToUser: to.Public(),
		})
	}
	return entries, nil
}

// testLogger discards everything below error level so test output stays
// readable.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService returns an AuthService wired with fake
// dependencies. The password service uses bcrypt's minimum cost so
// tests stay fast.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	return NewAuthService(repo, ts, auth.NewPasswordServiceForTest(), testLogger())
}

// mustTokenService returns a TokenService using the same fixed secret
// newTestAuthService wires in, for verifying issued tokens in tests.
func mustTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// registerTestUser registers a user through the real service path and
// fails the test on error.
func registerTestUser(t *testing.T, svc *AuthService, username, password string) *AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), username, password, Profile{
		FirstName: "Test",
		LastName:  "User",
		Phone:     "+14155550000",
	})
	if err != nil {
		t.Fatalf("Register(%q) error = %v", username, err)
	}
	return result
}
