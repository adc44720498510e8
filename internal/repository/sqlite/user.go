package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user row.
//
// The username PRIMARY KEY is the uniqueness guarantee: if the name is
// taken the driver reports a constraint violation, which is translated
// to apperror.ErrDuplicateUser here so the service layer never sees a
// raw driver error. Join and last-login timestamps are set by the
// caller (the Authenticator owns "registration counts as a login").
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinedAt,
		user.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUser(user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user, password hash included — this is the
// lookup the Authenticator verifies against. Returns
// apperror.ErrNotFound if no such user exists; callers that must not
// reveal existence (login) translate that themselves.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.JoinedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}

// List returns the basic info of every user, ordered by username.
// No hashes, no timestamps — this is the shape any authenticated
// caller may see.
func (db *DB) List(ctx context.Context) ([]model.PublicUser, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, first_name, last_name, phone FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.PublicUser{}
	for rows.Next() {
		var u model.PublicUser
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateLastLogin advances last_login_at to now. A single-row update,
// idempotent from the caller's point of view — running it twice just
// records the later time.
func (db *DB) UpdateLastLogin(ctx context.Context, username string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE username = ?`,
		time.Now(), username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating last login for %s: %w", username, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("user", username)
	}

	return nil
}
