package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// compile-time check that *DB implements repository.MessageRepository
var _ repository.MessageRepository = (*DB)(nil)

// CreateMessage inserts a new message.
//
// The ID is an xid — 20 chars, URL-safe, sortable by creation time.
// SentAt is set here and never touched again; ReadAt starts NULL.
// The pointer argument matters: after CreateMessage the caller's
// struct carries the generated ID and timestamp.
func (db *DB) CreateMessage(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.SentAt = time.Now()
	msg.ReadAt = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		msg.ID,
		msg.From,
		msg.To,
		msg.Body,
		msg.SentAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating message: %w", err)
	}

	return nil
}

// GetByID retrieves the bare message row — the fields access decisions
// are made from. Returns apperror.ErrNotFound if no such message.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, from_username, to_username, body, sent_at, read_at
		 FROM messages WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.From, &m.To, &m.Body, &m.SentAt, &m.ReadAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %s: %w", id, err)
	}

	return &m, nil
}

// GetDetail retrieves a message joined with both parties' basic info.
func (db *DB) GetDetail(ctx context.Context, id string) (*model.MessageDetail, error) {
	var d model.MessageDetail

	err := db.conn.QueryRowContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages AS m
		 JOIN users AS f ON m.from_username = f.username
		 JOIN users AS t ON m.to_username = t.username
		 WHERE m.id = ?`,
		id,
	).Scan(
		&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message detail %s: %w", id, err)
	}

	return &d, nil
}

// MarkRead sets read_at, once.
//
// The WHERE clause is the whole mechanism: `read_at IS NULL` means the
// UPDATE only fires the first time, and racing requests resolve in the
// store — whichever lands first wins, the rest change nothing. The row
// is then read back so the caller always sees the timestamp that
// actually stuck, not the one this call tried to write.
func (db *DB) MarkRead(ctx context.Context, id string) (*model.Message, error) {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marking message %s read: %w", id, err)
	}

	return db.GetByID(ctx, id)
}

// ListTo returns username's inbox: every message sent to them, each
// with the sender's basic info.
func (db *DB) ListTo(ctx context.Context, username string) ([]model.InboxEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages AS m
		 JOIN users AS u ON m.from_username = u.username
		 WHERE m.to_username = ?
		 ORDER BY m.sent_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages to %s: %w", username, err)
	}
	defer rows.Close()

	entries := []model.InboxEntry{}
	for rows.Next() {
		var e model.InboxEntry
		if err := rows.Scan(
			&e.ID, &e.Body, &e.SentAt, &e.ReadAt,
			&e.FromUser.Username, &e.FromUser.FirstName, &e.FromUser.LastName, &e.FromUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning inbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating inbox rows: %w", err)
	}

	return entries, nil
}

// ListFrom returns username's outbox: every message they sent, each
// with the recipient's basic info.
func (db *DB) ListFrom(ctx context.Context, username string) ([]model.OutboxEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages AS m
		 JOIN users AS u ON m.to_username = u.username
		 WHERE m.from_username = ?
		 ORDER BY m.sent_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages from %s: %w", username, err)
	}
	defer rows.Close()

	entries := []model.OutboxEntry{}
	for rows.Next() {
		var e model.OutboxEntry
		if err := rows.Scan(
			&e.ID, &e.Body, &e.SentAt, &e.ReadAt,
			&e.ToUser.Username, &e.ToUser.FirstName, &e.ToUser.LastName, &e.ToUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating outbox rows: %w", err)
	}

	return entries, nil
}
