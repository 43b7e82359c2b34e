// Package services implements the business logic of the matching core:
// match detection, chat materialization, notification fanout, digest
// aggregation, and the chat-list read path.
//
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers. Mapping
// them to HTTP statuses happens at the handler layer.
package services

import "errors"

// Validation errors, rejected before any write.
var (
	// ErrSenderRequired is returned when a send request carries no sender id.
	ErrSenderRequired = errors.New("sender id is required")

	// ErrReceiversRequired is returned when a send request carries no receivers.
	ErrReceiversRequired = errors.New("at least one receiver id is required")

	// ErrMessageRequired is returned when a send request carries empty
	// message text.
	ErrMessageRequired = errors.New("message is required")

	// ErrSenderNotFound indicates the sender id does not reference a known user.
	ErrSenderNotFound = errors.New("sender not found")

	// ErrUserRequired is returned when an operation is missing the acting
	// user's id.
	ErrUserRequired = errors.New("user id is required")
)

// Chat errors.
var (
	// ErrChatNotFound indicates that the requested chat does not exist.
	ErrChatNotFound = errors.New("chat not found")

	// ErrChatForbidden is returned when a user posts into a chat they are
	// not a participant of.
	ErrChatForbidden = errors.New("not a participant of this chat")

	// ErrEmptyMessage is returned when a chat message has no content.
	ErrEmptyMessage = errors.New("message content is empty")
)

// Subscription errors.
var (
	// ErrSubscriptionInvalid is returned when a push subscription descriptor
	// is missing its endpoint or key material.
	ErrSubscriptionInvalid = errors.New("subscription endpoint and keys are required")
)
