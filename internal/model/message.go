package model

import "time"

// Message is a single user-to-user message.
//
// From, To and SentAt are fixed at creation and never change. ReadAt is
// the only mutable field, and it transitions exactly once: nil → the
// time the recipient marked the message read. That transition is
// enforced by the repository's single-row conditional update, not by
// in-process locking.
//
// WHY *time.Time FOR ReadAt?
// "Never read" is a real state, distinct from any timestamp. A nil
// pointer models the SQL NULL directly and serializes to JSON null,
// which is what clients check for.
type Message struct {
	ID     string     `json:"id"`
	From   string     `json:"from_username"`
	To     string     `json:"to_username"`
	Body   string     `json:"body"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`
}

// MessageDetail is a Message joined with the basic info of both
// parties, the shape returned when viewing a single message.
type MessageDetail struct {
	ID       string     `json:"id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
	FromUser PublicUser `json:"from_user"`
	ToUser   PublicUser `json:"to_user"`
}

// InboxEntry is a received message with the sender's basic info —
// one row of a user's inbox.
type InboxEntry struct {
	ID       string     `json:"id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
	FromUser PublicUser `json:"from_user"`
}

// OutboxEntry is a sent message with the recipient's basic info —
// one row of a user's outbox.
type OutboxEntry struct {
	ID     string     `json:"id"`
	Body   string     `json:"body"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`
	ToUser PublicUser `json:"to_user"`
}
