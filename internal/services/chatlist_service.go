// Package services – ChatListService.
//
// This file implements the read path that reconstructs, per requesting user,
// the list of matched partners with their visible match history and
// latest-message metadata. A match is visible only when both of its
// candidate rows (forward and backward) still exist and are not hidden by
// moderation; readers must tolerate rows removed underneath them.
package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/repo"
)

// LatestMessage is the newest chat message of a summary entry.
type LatestMessage struct {
	Content   string    `json:"content"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchView is one visible match in a pair's history.
type MatchView struct {
	MatchID   string    `json:"matchId"`
	Message   string    `json:"message"`
	MatchedAt time.Time `json:"matchedAt"`
}

// ChatSummary is one entry of the assembled chat list. Partners without a
// chat yet appear as placeholders (empty ChatID, nil LatestMessage) so they
// can be discovered and initiated.
type ChatSummary struct {
	PartnerID     string         `json:"partnerId"`
	PartnerName   string         `json:"partnerName"`
	ChatID        string         `json:"chatId,omitempty"`
	LatestMessage *LatestMessage `json:"latestMessage,omitempty"`
	Matches       []MatchView    `json:"matches"`
	Headline      *MatchView     `json:"headline,omitempty"`
}

// ChatListService assembles chat summaries for the client's chat list.
type ChatListService struct {
	// DB is the GORM handle used for reads; this service never writes.
	DB *gorm.DB
}

// NewChatListService wires the read path.
func NewChatListService(db *gorm.DB) *ChatListService {
	return &ChatListService{DB: db}
}

// Assemble builds one summary per user that has ever matched with userID.
// Entries are ordered by latest message timestamp descending; entries with
// no messages sort last, stably in partner discovery order.
func (s *ChatListService) Assemble(ctx context.Context, userID string) ([]ChatSummary, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	partners, err := repo.ListPartnerIDs(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	users, err := repo.GetUsers(ctx, s.DB, partners)
	if err != nil {
		return nil, err
	}

	out := make([]ChatSummary, 0, len(partners))
	for _, partnerID := range partners {
		entry := ChatSummary{
			PartnerID:   partnerID,
			PartnerName: users[partnerID].DisplayName,
			Matches:     []MatchView{},
		}

		chat, err := repo.FindChatByPair(ctx, s.DB, userID, partnerID)
		switch {
		case err == nil:
			entry.ChatID = chat.ID
			latest, err := repo.LatestChatMessage(ctx, s.DB, chat.ID)
			if err == nil {
				entry.LatestMessage = &LatestMessage{
					Content:   latest.Content,
					SenderID:  latest.SenderID,
					CreatedAt: latest.CreatedAt,
				}
			} else if !errors.Is(err, repo.ErrNotFound) {
				return nil, err
			}
		case errors.Is(err, repo.ErrNotFound):
			// Placeholder entry: matched but no chat materialized yet.
		default:
			return nil, err
		}

		history, err := repo.ListMatchesForPair(ctx, s.DB, userID, partnerID)
		if err != nil {
			return nil, err
		}
		for _, m := range history {
			visible, err := s.matchVisible(ctx, m)
			if err != nil {
				return nil, err
			}
			if visible {
				entry.Matches = append(entry.Matches, MatchView{
					MatchID:   m.ID,
					Message:   m.Message,
					MatchedAt: m.MatchedAt,
				})
			}
		}
		if n := len(entry.Matches); n > 0 {
			headline := entry.Matches[n-1]
			entry.Headline = &headline
		}

		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LatestMessage, out[j].LatestMessage
		switch {
		case a != nil && b != nil:
			return a.CreatedAt.After(b.CreatedAt)
		case a != nil:
			return true
		default:
			return false
		}
	})

	return out, nil
}

// matchVisible reports whether both candidate rows behind a match still
// exist and are not hidden.
func (s *ChatListService) matchVisible(ctx context.Context, m domain.MatchPair) (bool, error) {
	forward, err := repo.CandidateVisible(ctx, s.DB, m.User1ID, m.User2ID, m.Message)
	if err != nil || !forward {
		return false, err
	}
	backward, err := repo.CandidateVisible(ctx, s.DB, m.User2ID, m.User1ID, m.Message)
	if err != nil {
		return false, err
	}
	return backward, nil
}
