// Package service — business logic for authentication, users, and
// messages.
//
// AuthService is the Authenticator: it turns (username, password) into
// an authenticated identity or a rejection. It sits between the HTTP
// handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Registration: hash the password, persist the account, surface
//     duplicates as the typed error
//   - Authentication: verify credentials without revealing whether the
//     username exists
//   - Record last-login on every successful authentication
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// Profile carries the non-security-relevant registration fields.
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
}

// AuthService handles registration and credential verification.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// dummyHash is a valid bcrypt hash of a string nobody logs in
	// with. When a login names a username that doesn't exist we still
	// verify the supplied password against this hash, so the
	// unknown-user path costs one bcrypt compare exactly like the
	// wrong-password path. It is hashed at the same cost as real
	// passwords; a cheaper hash would leave the timing difference it
	// exists to close.
	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	// Short fixed input, so Hash cannot fail here.
	dummyHash, _ := passwords.Hash("messagely-dummy-comparison")

	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler
// can respond in one step. The User's hash never reaches the wire —
// handlers serialize the public projection.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account and logs it in.
//
// The password is hashed before anything is persisted. Uniqueness is
// the store's job: a duplicate username comes back from the repository
// as apperror.ErrDuplicateUser and is returned untouched — the service
// adds no detail that the handler shouldn't send.
//
// Registration counts as a login, so join and last-login are both set
// to now and a token is issued immediately.
func (s *AuthService) Register(ctx context.Context, username, password string, profile Profile) (*AuthResult, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password for %s: %w", username, err)
	}

	now := time.Now()
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Phone:        profile.Phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: registering user %s: %w", username, err)
	}

	s.logger.Info("user registered", slog.String("username", username))

	token, err := s.tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", username, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate verifies a username/password pair and, on success,
// issues a token and records the login.
//
// ENUMERATION SAFETY:
// An unknown username and a wrong password return the identical
// apperror.ErrInvalidCredentials — same kind, same message. The
// unknown-user path still burns a bcrypt compare (against dummyHash)
// so the two failures cost the same wall-clock time. Nothing in the
// response or its timing says whether the username exists.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify(password, s.dummyHash)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", username, err)
	}

	if err := s.RecordLogin(ctx, username); err != nil {
		return nil, err
	}

	s.logger.Info("user authenticated", slog.String("username", username))

	return &AuthResult{User: user, Token: token}, nil
}

// RecordLogin advances the user's last-login timestamp to now. Called
// once per successful authentication — never on token verification,
// which is stateless by design.
func (s *AuthService) RecordLogin(ctx context.Context, username string) error {
	if err := s.users.UpdateLastLogin(ctx, username); err != nil {
		return fmt.Errorf("service/auth: recording login for %s: %w", username, err)
	}
	return nil
}
