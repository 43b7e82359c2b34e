// Package services – MatchService.
//
// This file implements match detection: recording outbound candidate
// messages and deciding whether a reciprocal match now exists. The detector
// follows a strict order per request: persist every candidate row first,
// detect at most one match (first qualifying receiver in list order wins),
// then materialize the match record, the chat, and the fanout.
//
// Candidate bookkeeping is durable by design: rows committed for earlier
// receivers are not rolled back when a later step fails.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/repo"
)

// MatchResult is the synchronous outcome of one send attempt. Matched=false
// is the common case and not an error.
type MatchResult struct {
	Matched         bool   `json:"matched"`
	MatchID         string `json:"matchId,omitempty"`
	MatchedUserID   string `json:"matchedUserId,omitempty"`
	MatchedUserName string `json:"matchedUserName,omitempty"`
	ChatID          string `json:"chatId,omitempty"`
}

// MatchService records candidate messages and detects reciprocal matches.
type MatchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Chats materializes the pair chat once a match exists.
	Chats *ChatService
	// Notifier fans the match out; its failures never reach the caller.
	Notifier *NotificationService
}

// NewMatchService wires the detector against its collaborators.
func NewMatchService(db *gorm.DB, chats *ChatService, notifier *NotificationService) *MatchService {
	return &MatchService{DB: db, Chats: chats, Notifier: notifier}
}

// RecordAndDetect persists one candidate row per receiver and reports
// whether a reciprocal match now exists.
//
// Per receiver, in list order: the candidate row is written unconditionally;
// then, while no match target has been found yet, the reciprocity window is
// computed (bounded below by the last match between the pair for this exact
// message, or the epoch) and the receiver qualifies if they sent the same
// message back strictly inside the window. Only one match is produced per
// call even when several receivers would qualify.
//
// On match the preset aggregate and the MatchPair are written in one
// transaction; a concurrently created match is adopted instead of treated as
// an error (best-effort duplicate guard). The chat is then ensured and the
// fanout triggered best-effort.
func (s *MatchService) RecordAndDetect(ctx context.Context, senderID string, receiverIDs []string, message string) (*MatchResult, error) {
	if strings.TrimSpace(senderID) == "" {
		return nil, ErrSenderRequired
	}
	if len(receiverIDs) == 0 {
		return nil, ErrReceiversRequired
	}
	if message == "" {
		return nil, ErrMessageRequired
	}

	sender, err := repo.GetUser(ctx, s.DB, senderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}

	var (
		matchedReceiver string
		windowStart     time.Time
	)
	for _, receiverID := range receiverIDs {
		if _, err := repo.CreateSentMessage(ctx, s.DB, senderID, receiverID, message, ""); err != nil {
			// Earlier rows stay committed; candidate bookkeeping is durable.
			return nil, err
		}
		if matchedReceiver != "" {
			continue
		}

		since, err := repo.LastMatchedAt(ctx, s.DB, senderID, receiverID, message)
		if err != nil {
			return nil, err
		}
		reciprocal, err := repo.HasReciprocalSince(ctx, s.DB, senderID, receiverID, message, since)
		if err != nil {
			return nil, err
		}
		if reciprocal {
			matchedReceiver = receiverID
			windowStart = since
		}
	}

	if matchedReceiver == "" {
		return &MatchResult{Matched: false}, nil
	}

	var pair *domain.MatchPair
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if _, err := repo.IncrementPreset(ctx, tx, message, now); err != nil {
			return err
		}

		// Duplicate guard: someone else may have created this match while we
		// were detecting. Adopt their row rather than failing.
		existing, err := repo.MatchPairAfter(ctx, tx, senderID, matchedReceiver, message, windowStart)
		if err == nil {
			pair = existing
			return nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		pair, err = repo.CreateMatchPair(ctx, tx, senderID, matchedReceiver, message)
		return err
	})
	if err != nil {
		return nil, err
	}

	chatID, err := s.Chats.Ensure(ctx, senderID, matchedReceiver)
	if err != nil {
		return nil, err
	}

	matched, err := repo.GetUser(ctx, s.DB, matchedReceiver)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		matched = &domain.User{ID: matchedReceiver}
	}

	s.Notifier.DeliverMatch(ctx, pair, chatID, map[string]domain.User{
		sender.ID:  *sender,
		matched.ID: *matched,
	})

	log.Info().
		Str("match_id", pair.ID).
		Str("sender_id", senderID).
		Str("matched_user_id", matchedReceiver).
		Str("chat_id", chatID).
		Msg("match established")

	return &MatchResult{
		Matched:         true,
		MatchID:         pair.ID,
		MatchedUserID:   matched.ID,
		MatchedUserName: matched.DisplayName,
		ChatID:          chatID,
	}, nil
}
