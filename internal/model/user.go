// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The username is the primary key — unique and immutable for the life of
// the account. There is no surrogate ID; every foreign key in the schema
// (message sender/recipient) references the username directly.
//
// PasswordHash is the bcrypt output stored at registration. It never
// leaves the auth/service layer: the `json:"-"` tag makes it impossible
// to leak through any handler that serializes a User, and handlers
// return the PublicUser shape anyway.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	JoinedAt     time.Time `json:"join_at"`
	LastLoginAt  time.Time `json:"last_login_at"` // advances on every successful login
}

// PublicUser is the basic-info projection of a User: the fields any
// authenticated caller may see (user listing, message counterparties).
// No hash, no timestamps.
type PublicUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Public returns the basic-info projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
