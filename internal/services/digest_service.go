// Package services – DigestService.
//
// This file implements the time-triggered digest job. Two cadences run
// independently: the personal digest counts recently-received-but-unmatched
// candidate messages per user, and the global digest reports how many new
// message contents appeared today. Both deliver through the notification
// fanout in bounded batches with an inter-batch delay, then deactivate every
// endpoint flagged gone during the run in one bulk update.
//
// The job never lets an error or panic escape its boundary: failures are
// logged and surfaced inside the RunReport. At most one concurrent
// invocation per cadence is assumed; overlapping runs can duplicate
// notifications (accepted risk, external scheduler's contract).
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/config"
	"github.com/alevras/go-match-backend/internal/push"
	"github.com/alevras/go-match-backend/internal/repo"
)

// Digest cadence names used in reports and metrics.
const (
	DigestPersonal = "personal"
	DigestGlobal   = "global"
)

var (
	digestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total digest job runs by cadence and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	digestSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_notifications_sent_total",
			Help: "Push notifications successfully sent by digest runs.",
		},
		[]string{"kind"},
	)

	digestDeactivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "digest_endpoints_deactivated_total",
			Help: "Push endpoints deactivated after being reported gone.",
		},
	)
)

func init() {
	prometheus.MustRegister(digestRuns, digestSent, digestDeactivated)
}

// RunReport is the structured result of one digest run, returned to the
// triggering scheduler for observability. Error is set instead of being
// propagated; the job boundary never throws.
type RunReport struct {
	Kind                 string `json:"kind"`
	UsersProcessed       int    `json:"usersProcessed"`
	NotificationsSent    int    `json:"notificationsSent"`
	EndpointsDeactivated int64  `json:"endpointsDeactivated"`
	ElapsedMS            int64  `json:"elapsedMs"`
	Error                string `json:"error,omitempty"`
}

// DigestService computes and delivers periodic digest notifications.
type DigestService struct {
	// DB is the GORM handle used for scanning.
	DB *gorm.DB
	// Notifier executes the batched sends.
	Notifier *NotificationService
	// Cfg tunes window, batch size, delay, and the global window end hour.
	Cfg config.DigestConfig

	// Now is the clock seam; tests pin it. Defaults to time.Now.
	Now func() time.Time
}

// NewDigestService wires the digest job.
func NewDigestService(db *gorm.DB, notifier *NotificationService, cfg config.DigestConfig) *DigestService {
	return &DigestService{DB: db, Notifier: notifier, Cfg: cfg, Now: time.Now}
}

// RunPersonal executes the personal cadence: for every user, the count of
// candidate messages received inside the trailing window (hidden excluded)
// minus those already covered by a MatchPair for the same pair and exact
// message. Users with a zero count are skipped.
func (s *DigestService) RunPersonal(ctx context.Context) RunReport {
	return s.run(ctx, DigestPersonal, s.personalJobs)
}

// RunGlobal executes the global cadence: the count of PresetMessage rows
// first created between local midnight and the configured end hour, reported
// identically to every currently-subscribed user. A zero count sends
// nothing.
func (s *DigestService) RunGlobal(ctx context.Context) RunReport {
	return s.run(ctx, DigestGlobal, s.globalJobs)
}

// run hosts the shared boundary: panic recovery, timing, batched delivery,
// the once-per-run endpoint deactivation, and metrics.
func (s *DigestService) run(ctx context.Context, kind string, build func(context.Context) ([]PushJob, int, error)) (rep RunReport) {
	start := s.now()
	rep.Kind = kind

	defer func() {
		if r := recover(); r != nil {
			rep.Error = fmt.Sprintf("digest panic: %v", r)
			log.Error().Str("kind", kind).Interface("panic", r).Msg("digest run panicked")
		}
		rep.ElapsedMS = time.Since(start).Milliseconds()
		outcome := "ok"
		if rep.Error != "" {
			outcome = "error"
		}
		digestRuns.WithLabelValues(kind, outcome).Inc()
		digestSent.WithLabelValues(kind).Add(float64(rep.NotificationsSent))
		digestDeactivated.Add(float64(rep.EndpointsDeactivated))
		log.Info().
			Str("kind", kind).
			Int("users", rep.UsersProcessed).
			Int("sent", rep.NotificationsSent).
			Int64("deactivated", rep.EndpointsDeactivated).
			Int64("elapsed_ms", rep.ElapsedMS).
			Str("error", rep.Error).
			Msg("digest run finished")
	}()

	jobs, users, err := build(ctx)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.UsersProcessed = users

	sent, gone := s.Notifier.PushBatches(ctx, jobs, s.Cfg.BatchSize, s.Cfg.BatchDelay)
	rep.NotificationsSent = sent

	deactivated, err := repo.DeactivateEndpoints(ctx, s.DB, gone)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.EndpointsDeactivated = deactivated
	return rep
}

// personalJobs computes per-user unmatched-inbound counts over the trailing
// window and builds one payload per user, replicated onto each of the user's
// active subscriptions.
func (s *DigestService) personalJobs(ctx context.Context) ([]PushJob, int, error) {
	since := s.now().Add(-s.Cfg.Window)

	inbound, err := repo.ListReceivedSince(ctx, s.DB, since)
	if err != nil {
		return nil, 0, err
	}

	// Unmatched count per receiver. Each inbound candidate is covered when
	// any MatchPair exists between its sender and receiver for the exact
	// message; the remainder is "new unmatched messages received".
	counts := make(map[string]int)
	for _, m := range inbound {
		matched, err := repo.HasMatchForMessage(ctx, s.DB, m.SenderID, m.ReceiverID, m.Message)
		if err != nil {
			return nil, 0, err
		}
		if !matched {
			counts[m.ReceiverID]++
		}
	}
	if len(counts) == 0 {
		return nil, 0, nil
	}

	userIDs := make([]string, 0, len(counts))
	for id := range counts {
		userIDs = append(userIDs, id)
	}
	users, err := repo.GetUsers(ctx, s.DB, userIDs)
	if err != nil {
		return nil, 0, err
	}
	subs, err := repo.ActiveSubscriptionsForUsers(ctx, s.DB, userIDs)
	if err != nil {
		return nil, 0, err
	}

	jobs := make([]PushJob, 0, len(subs))
	for _, sub := range subs {
		count := counts[sub.UserID]
		lang := matchLang(users[sub.UserID].Language)
		jobs = append(jobs, PushJob{
			Sub: sub,
			Payload: push.Payload{
				Type:  push.TypeDigestUser,
				Title: digestUserTitle(lang),
				Body:  digestUserBody(lang, count),
				URL:   "/",
				Data:  map[string]any{"count": count},
			},
		})
	}
	return jobs, len(counts), nil
}

// globalJobs counts preset rows created in today's local window and builds
// one payload per active subscription, grouped by user for stable batching.
func (s *DigestService) globalJobs(ctx context.Context) ([]PushJob, int, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := midnight.Add(time.Duration(s.Cfg.GlobalEndHour) * time.Hour)

	count, err := repo.CountPresetsCreatedBetween(ctx, s.DB, midnight, end)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}

	subs, err := repo.AllActiveSubscriptions(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}

	userSet := make(map[string]struct{})
	for _, sub := range subs {
		userSet[sub.UserID] = struct{}{}
	}
	userIDs := make([]string, 0, len(userSet))
	for id := range userSet {
		userIDs = append(userIDs, id)
	}
	users, err := repo.GetUsers(ctx, s.DB, userIDs)
	if err != nil {
		return nil, 0, err
	}

	jobs := make([]PushJob, 0, len(subs))
	for _, sub := range subs {
		lang := matchLang(users[sub.UserID].Language)
		jobs = append(jobs, PushJob{
			Sub: sub,
			Payload: push.Payload{
				Type:  push.TypeDigestGlobal,
				Title: digestGlobalTitle(lang),
				Body:  digestGlobalBody(lang, count),
				URL:   "/",
				Data:  map[string]any{"count": count},
			},
		})
	}
	return jobs, len(userSet), nil
}

func (s *DigestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
