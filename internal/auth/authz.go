package auth

import "github.com/sakif/messagely/internal/model"

// Access-control rules for the messaging API.
//
// Each predicate is a pure function over the authenticated username and
// the target resource's identifying fields — no I/O, no side effects.
// The service layer calls the predicate and converts a false into the
// taxonomy's Forbidden error; the predicates themselves never construct
// errors, which keeps them trivially table-testable.

// CanViewProfile reports whether requester may view target's full
// profile (timestamps included). Only the user themself may.
//
// Listing all users' basic info is NOT profile access — that is open to
// any authenticated caller and never consults this predicate.
func CanViewProfile(requester, target string) bool {
	return requester == target
}

// CanViewMessage reports whether requester may read the message:
// true for the sender and the recipient, false for everyone else.
func CanViewMessage(requester string, msg *model.Message) bool {
	return requester == msg.From || requester == msg.To
}

// CanMarkRead reports whether requester may mark the message read.
// Only the recipient may — the sender can never mark their own sent
// message as read.
func CanMarkRead(requester string, msg *model.Message) bool {
	return requester == msg.To
}

// CanSendAs reports whether requester may send a message attributed to
// claimedSender. A user may only send as themself.
func CanSendAs(requester, claimedSender string) bool {
	return requester == claimedSender
}
