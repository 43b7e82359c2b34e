// Package services – NotificationService.
//
// This file implements the notification fanout: turning a fresh match (or a
// digest payload) into push and realtime deliveries. Delivery is best-effort
// and never unwinds the caller's state: the match is the durable truth, a
// lost notification is invisible to the matched/not-matched contract.
//
// Endpoint reconciliation: sends that fail with push.ErrEndpointGone are
// collected and the endpoints deactivated in one bulk update after all sends
// of the operation complete, never per-send.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/push"
	"github.com/alevras/go-match-backend/internal/realtime"
	"github.com/alevras/go-match-backend/internal/repo"
)

// PushJob pairs one subscription with the payload it should receive.
type PushJob struct {
	Sub     domain.PushSubscription
	Payload push.Payload
}

// NotificationService fans match and digest events out to the push gateway
// and the realtime bus.
type NotificationService struct {
	// DB is the GORM handle used for subscription lookups and deactivation.
	DB *gorm.DB
	// Gateway delivers push payloads.
	Gateway push.Gateway
	// Emitter publishes realtime events to rooms.
	Emitter realtime.Emitter
}

// NewNotificationService wires the fanout against its collaborators.
func NewNotificationService(db *gorm.DB, gw push.Gateway, em realtime.Emitter) *NotificationService {
	return &NotificationService{DB: db, Gateway: gw, Emitter: em}
}

// matchEvent is the realtime payload of a matchEstablished event. It is
// symmetric in content but customized per recipient: MatchedUserID always
// names the counterpart from the target's point of view.
type matchEvent struct {
	MatchID         string    `json:"matchId"`
	Message         string    `json:"message"`
	MatchedAt       time.Time `json:"matchedAt"`
	MatchedUserID   string    `json:"matchedUserId"`
	MatchedUserName string    `json:"matchedUserName"`
	TargetUserID    string    `json:"targetUserId"`
	ChatID          string    `json:"chatId"`
}

// DeliverMatch notifies both participants of a fresh match: one push payload
// per active subscription of either user, plus matchEstablished realtime
// events to both user rooms and the chat room.
//
// All failures are logged and swallowed; gone endpoints are deactivated in
// one bulk update at the end.
func (s *NotificationService) DeliverMatch(ctx context.Context, pair *domain.MatchPair, chatID string, users map[string]domain.User) {
	participants := []string{pair.User1ID, pair.User2ID}

	subs, err := repo.ActiveSubscriptionsForUsers(ctx, s.DB, participants)
	if err != nil {
		log.Error().Err(err).Str("match_id", pair.ID).Msg("match fanout: loading subscriptions failed")
		subs = nil
	}

	// Per-recipient push payloads: each side is told about the other.
	jobs := make([]PushJob, 0, len(subs))
	for _, sub := range subs {
		counterpart := users[counterpartID(pair, sub.UserID)]
		recipient := users[sub.UserID]
		lang := matchLang(recipient.Language)
		jobs = append(jobs, PushJob{
			Sub: sub,
			Payload: push.Payload{
				Type:  push.TypeMatch,
				Title: matchTitle(lang),
				Body:  matchBody(lang, counterpart.DisplayName),
				URL:   "/chat/" + chatID,
				Data: map[string]any{
					"matchId":       pair.ID,
					"chatId":        chatID,
					"matchedUserId": counterpart.ID,
				},
			},
		})
	}

	sent, gone := s.PushBatches(ctx, jobs, len(jobs), 0)
	if n, err := repo.DeactivateEndpoints(ctx, s.DB, gone); err != nil {
		log.Error().Err(err).Msg("match fanout: deactivating endpoints failed")
	} else if n > 0 {
		log.Info().Int64("deactivated", n).Msg("match fanout: dead endpoints deactivated")
	}
	log.Info().Str("match_id", pair.ID).Int("push_sent", sent).Msg("match fanout complete")

	// Realtime, fire-and-forget: each participant's user room gets the event
	// phrased from their point of view; the chat room gets both phrasings so
	// an open chat view can update regardless of which side is watching.
	for _, target := range participants {
		counterpart := users[counterpartID(pair, target)]
		ev := matchEvent{
			MatchID:         pair.ID,
			Message:         pair.Message,
			MatchedAt:       pair.MatchedAt,
			MatchedUserID:   counterpart.ID,
			MatchedUserName: counterpart.DisplayName,
			TargetUserID:    target,
			ChatID:          chatID,
		}
		s.Emitter.Emit(realtime.UserRoom(target), realtime.EventMatchEstablished, ev)
		s.Emitter.Emit(realtime.ChatRoom(chatID), realtime.EventMatchEstablished, ev)
	}
}

// PushBatches executes the given jobs in bounded batches. Within one batch,
// sends run concurrently and independently; between batches the caller's
// delay is applied to respect provider rate limits. A batchSize < 1 means
// one batch for everything.
//
// It returns the number of successful sends and the endpoints the provider
// reported gone (deduplicated). Other failures are logged and dropped.
func (s *NotificationService) PushBatches(ctx context.Context, jobs []PushJob, batchSize int, delay time.Duration) (int, []string) {
	if len(jobs) == 0 {
		return 0, nil
	}
	if batchSize < 1 {
		batchSize = len(jobs)
	}

	var (
		mu      sync.Mutex
		sent    int
		goneSet = make(map[string]struct{})
	)

	for start := 0; start < len(jobs); start += batchSize {
		end := start + batchSize
		if end > len(jobs) {
			end = len(jobs)
		}

		var wg sync.WaitGroup
		for _, job := range jobs[start:end] {
			wg.Add(1)
			go func(job PushJob) {
				defer wg.Done()
				err := s.Gateway.Send(ctx, job.Sub, job.Payload)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					sent++
				case errors.Is(err, push.ErrEndpointGone):
					goneSet[job.Sub.Endpoint] = struct{}{}
				default:
					log.Warn().Err(err).Str("user_id", job.Sub.UserID).Msg("push send failed")
				}
			}(job)
		}
		wg.Wait()

		if end < len(jobs) && delay > 0 {
			select {
			case <-ctx.Done():
				return sent, keys(goneSet)
			case <-time.After(delay):
			}
		}
	}

	return sent, keys(goneSet)
}

// counterpartID returns the other participant of a match.
func counterpartID(pair *domain.MatchPair, userID string) string {
	if pair.User1ID == userID {
		return pair.User2ID
	}
	return pair.User1ID
}

func keys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
