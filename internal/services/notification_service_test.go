package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/push"
	"github.com/alevras/go-match-backend/internal/realtime"
)

func job(userID, endpoint string) PushJob {
	return PushJob{
		Sub: domain.PushSubscription{
			ID:       uuid.NewString(),
			UserID:   userID,
			Endpoint: endpoint,
			IsActive: true,
		},
		Payload: push.Payload{Type: push.TypeMatch, Title: "t", Body: "b"},
	}
}

func TestPushBatches_ClassifiesOutcomes(t *testing.T) {
	gw := newFakeGateway()
	gw.gone["ep-gone"] = true
	gw.fail["ep-flaky"] = true
	svc := NewNotificationService(nil, gw, realtime.NopEmitter{})

	jobs := []PushJob{
		job("u1", "ep-ok-1"),
		job("u2", "ep-gone"),
		job("u3", "ep-flaky"),
		job("u4", "ep-ok-2"),
		job("u5", "ep-gone"), // same dead endpoint twice
	}

	sent, gone := svc.PushBatches(context.Background(), jobs, 2, 0)
	if sent != 2 {
		t.Fatalf("expected 2 successful sends, got %d", sent)
	}
	// Gone endpoints come back deduplicated; transient failures are dropped.
	if len(gone) != 1 || gone[0] != "ep-gone" {
		t.Fatalf("expected deduplicated [ep-gone], got %v", gone)
	}
}

func TestPushBatches_EmptyAndBatchSizeFloor(t *testing.T) {
	gw := newFakeGateway()
	svc := NewNotificationService(nil, gw, realtime.NopEmitter{})

	sent, gone := svc.PushBatches(context.Background(), nil, 10, time.Second)
	if sent != 0 || gone != nil {
		t.Fatalf("expected zero-value result for empty jobs, got %d %v", sent, gone)
	}

	// batchSize < 1 collapses to one batch; no inter-batch delay applies.
	start := time.Now()
	sent, _ = svc.PushBatches(context.Background(), []PushJob{job("u1", "e1"), job("u2", "e2")}, 0, time.Second)
	if sent != 2 {
		t.Fatalf("expected 2 sends, got %d", sent)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("single batch must not sleep")
	}
}

func TestPushBatches_CancelledContextStopsBetweenBatches(t *testing.T) {
	gw := newFakeGateway()
	svc := NewNotificationService(nil, gw, realtime.NopEmitter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []PushJob{job("u1", "e1"), job("u2", "e2"), job("u3", "e3")}
	sent, _ := svc.PushBatches(ctx, jobs, 1, time.Minute)
	if sent != 1 {
		t.Fatalf("expected only the first batch to run, got %d sends", sent)
	}
}

func TestDeliverMatch_PerRecipientPayloadsAndRooms(t *testing.T) {
	db := newSvcDB(t)
	gw := newFakeGateway()
	em := &fakeEmitter{}
	svc := NewNotificationService(db, gw, em)
	ctx := context.Background()

	mustUser(t, db, "alice", "Alice", "en")
	mustUser(t, db, "bob", "Bob", "de")
	mustSub(t, db, "alice", "ep-alice")
	mustSub(t, db, "bob", "ep-bob")

	pair := &domain.MatchPair{
		ID:        uuid.NewString(),
		User1ID:   "alice",
		User2ID:   "bob",
		Message:   "hi",
		MatchedAt: time.Now().UTC(),
	}
	users := map[string]domain.User{
		"alice": {ID: "alice", DisplayName: "Alice", Language: "en"},
		"bob":   {ID: "bob", DisplayName: "Bob", Language: "de"},
	}

	svc.DeliverMatch(ctx, pair, "chat-1", users)

	// Each side is told about the other, in their own language.
	byUser := map[string]push.Payload{}
	for _, d := range gw.delivered() {
		byUser[d.UserID] = d.Payload
	}
	if len(byUser) != 2 {
		t.Fatalf("expected pushes to both users, got %v", byUser)
	}
	if byUser["alice"].Title != "It's a match!" || byUser["alice"].Data["matchedUserId"] != "bob" {
		t.Fatalf("unexpected alice payload: %+v", byUser["alice"])
	}
	if byUser["bob"].Title != "Es hat gefunkt!" || byUser["bob"].Data["matchedUserId"] != "alice" {
		t.Fatalf("unexpected bob payload: %+v", byUser["bob"])
	}

	// Both user rooms and the chat room (twice, once per phrasing) are hit.
	evs := em.byEvent(realtime.EventMatchEstablished)
	roomCount := map[string]int{}
	for _, ev := range evs {
		roomCount[ev.Room]++
	}
	if roomCount[realtime.UserRoom("alice")] != 1 || roomCount[realtime.UserRoom("bob")] != 1 {
		t.Fatalf("expected one emission per user room, got %v", roomCount)
	}
	if roomCount[realtime.ChatRoom("chat-1")] != 2 {
		t.Fatalf("expected two emissions to the chat room, got %v", roomCount)
	}
}

func TestCounterpartID(t *testing.T) {
	pair := &domain.MatchPair{User1ID: "a", User2ID: "b"}
	if counterpartID(pair, "a") != "b" || counterpartID(pair, "b") != "a" {
		t.Fatal("counterpartID must return the other participant")
	}
}
