// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate and normalize inputs, delegate
// to the application services, and map service sentinel errors to the
// standard error envelope. Business rules live in internal/services.
package handlers

import (
	"github.com/alevras/go-match-backend/internal/services"
)

// userIDHeader carries the requesting user's id on read/write chat paths.
// Authentication itself is handled upstream; this core trusts the header.
const userIDHeader = "X-User-ID"

// Handlers bundles the service dependencies of every endpoint.
type Handlers struct {
	Matches  *services.MatchService
	Chats    *services.ChatService
	ChatList *services.ChatListService
	Digest   *services.DigestService
	Subs     *services.SubscriptionService
}

// New constructs the handler set.
func New(matches *services.MatchService, chats *services.ChatService, chatList *services.ChatListService, digest *services.DigestService, subs *services.SubscriptionService) *Handlers {
	return &Handlers{
		Matches:  matches,
		Chats:    chats,
		ChatList: chatList,
		Digest:   digest,
		Subs:     subs,
	}
}
