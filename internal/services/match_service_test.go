package services

import (
	"context"
	"testing"
	"time"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/realtime"
	"github.com/alevras/go-match-backend/internal/repo"
)

func newMatchService(t *testing.T) (*MatchService, *fakeGateway, *fakeEmitter) {
	t.Helper()
	db := newSvcDB(t)
	gw := newFakeGateway()
	em := &fakeEmitter{}
	notifier := NewNotificationService(db, gw, em)
	chats := NewChatService(db, em)
	return NewMatchService(db, chats, notifier), gw, em
}

func TestRecordAndDetect_Validation(t *testing.T) {
	svc, _, _ := newMatchService(t)
	ctx := context.Background()

	if _, err := svc.RecordAndDetect(ctx, "", []string{"b"}, "hi"); err != ErrSenderRequired {
		t.Fatalf("expected ErrSenderRequired, got %v", err)
	}
	if _, err := svc.RecordAndDetect(ctx, "a", nil, "hi"); err != ErrReceiversRequired {
		t.Fatalf("expected ErrReceiversRequired, got %v", err)
	}
	if _, err := svc.RecordAndDetect(ctx, "a", []string{"b"}, ""); err != ErrMessageRequired {
		t.Fatalf("expected ErrMessageRequired, got %v", err)
	}
	if _, err := svc.RecordAndDetect(ctx, "ghost", []string{"b"}, "hi"); err != ErrSenderNotFound {
		t.Fatalf("expected ErrSenderNotFound, got %v", err)
	}
}

func TestRecordAndDetect_NoReciprocalNoMatch(t *testing.T) {
	svc, _, _ := newMatchService(t)
	ctx := context.Background()
	mustUser(t, svc.DB, "alice", "Alice", "en")
	mustUser(t, svc.DB, "bob", "Bob", "en")

	res, err := svc.RecordAndDetect(ctx, "alice", []string{"bob"}, "coffee?")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if res.Matched {
		t.Fatal("expected no match without a reciprocal message")
	}

	// The candidate row is persisted even without a match.
	visible, err := repo.CandidateVisible(ctx, svc.DB, "alice", "bob", "coffee?")
	if err != nil || !visible {
		t.Fatalf("expected persisted candidate, got visible=%v err=%v", visible, err)
	}

	// Same pair, different text: still no match.
	res, err = svc.RecordAndDetect(ctx, "bob", []string{"alice"}, "tea?")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if res.Matched {
		t.Fatal("expected no match for a different message")
	}
}

func TestRecordAndDetect_ReciprocalProducesMatchAndChat(t *testing.T) {
	svc, _, em := newMatchService(t)
	ctx := context.Background()
	mustUser(t, svc.DB, "alice", "Alice", "en")
	mustUser(t, svc.DB, "bob", "Bob", "de")

	if _, err := svc.RecordAndDetect(ctx, "bob", []string{"alice"}, "coffee?"); err != nil {
		t.Fatalf("first send: %v", err)
	}

	res, err := svc.RecordAndDetect(ctx, "alice", []string{"bob"}, "coffee?")
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected a match")
	}
	if res.MatchedUserID != "bob" || res.MatchedUserName != "Bob" {
		t.Fatalf("unexpected matched user: %+v", res)
	}
	if res.MatchID == "" || res.ChatID == "" {
		t.Fatalf("expected match and chat ids, got %+v", res)
	}

	// Chat is materialized and resolvable in either order.
	chat, err := repo.FindChatByPair(ctx, svc.DB, "bob", "alice")
	if err != nil {
		t.Fatalf("find chat: %v", err)
	}
	if chat.ID != res.ChatID {
		t.Fatalf("expected chat %s, got %s", res.ChatID, chat.ID)
	}

	// The preset aggregate is maintained.
	var preset domain.PresetMessage
	if err := svc.DB.Where("message = ?", "coffee?").First(&preset).Error; err != nil {
		t.Fatalf("load preset: %v", err)
	}
	if preset.Count != 1 || preset.SenderCount != 2 {
		t.Fatalf("expected count=1 senders=2, got %+v", preset)
	}

	// Both user rooms and the chat room saw matchEstablished.
	evs := em.byEvent(realtime.EventMatchEstablished)
	rooms := map[string]bool{}
	for _, ev := range evs {
		rooms[ev.Room] = true
	}
	for _, want := range []string{
		realtime.UserRoom("alice"),
		realtime.UserRoom("bob"),
		realtime.ChatRoom(res.ChatID),
	} {
		if !rooms[want] {
			t.Fatalf("expected emission to %s, rooms seen: %v", want, rooms)
		}
	}
}

func TestRecordAndDetect_RepeatMatchNeedsFreshExchange(t *testing.T) {
	svc, _, _ := newMatchService(t)
	ctx := context.Background()
	mustUser(t, svc.DB, "alice", "Alice", "en")
	mustUser(t, svc.DB, "bob", "Bob", "en")

	if _, err := svc.RecordAndDetect(ctx, "bob", []string{"alice"}, "hi"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := svc.RecordAndDetect(ctx, "alice", []string{"bob"}, "hi")
	if err != nil || !res.Matched {
		t.Fatalf("expected first match, got res=%+v err=%v", res, err)
	}

	// Re-sending against the stale counterpart row must not re-match: the
	// reciprocity window starts at the last match.
	time.Sleep(2 * time.Millisecond)
	res, err = svc.RecordAndDetect(ctx, "alice", []string{"bob"}, "hi")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if res.Matched {
		t.Fatal("expected no repeat match without a fresh reciprocal message")
	}

	// A fresh exchange after the first match produces a second match.
	time.Sleep(2 * time.Millisecond)
	res, err = svc.RecordAndDetect(ctx, "bob", []string{"alice"}, "hi")
	if err != nil {
		t.Fatalf("fresh counterpart send: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected repeat match after a fresh exchange")
	}

	matches, err := repo.ListMatchesForPair(ctx, svc.DB, "alice", "bob")
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 match records, got %d", len(matches))
	}
}

func TestRecordAndDetect_FirstQualifyingReceiverWins(t *testing.T) {
	svc, _, _ := newMatchService(t)
	ctx := context.Background()
	mustUser(t, svc.DB, "alice", "Alice", "en")
	mustUser(t, svc.DB, "bob", "Bob", "en")
	mustUser(t, svc.DB, "carol", "Carol", "en")

	// Both bob and carol already sent the same message to alice.
	if _, err := svc.RecordAndDetect(ctx, "bob", []string{"alice"}, "hey"); err != nil {
		t.Fatalf("seed bob: %v", err)
	}
	if _, err := svc.RecordAndDetect(ctx, "carol", []string{"alice"}, "hey"); err != nil {
		t.Fatalf("seed carol: %v", err)
	}

	res, err := svc.RecordAndDetect(ctx, "alice", []string{"bob", "carol"}, "hey")
	if err != nil {
		t.Fatalf("multi-receiver send: %v", err)
	}
	if !res.Matched || res.MatchedUserID != "bob" {
		t.Fatalf("expected match with first receiver bob, got %+v", res)
	}

	// Exactly one match exists; carol is not matched.
	if _, err := repo.LastMatchedAt(ctx, svc.DB, "alice", "carol", "hey"); err != nil {
		t.Fatalf("last matched at: %v", err)
	}
	var total int64
	svc.DB.Model(&domain.MatchPair{}).Count(&total)
	if total != 1 {
		t.Fatalf("expected exactly 1 match pair, got %d", total)
	}

	// Candidate rows exist for every receiver, including the non-matched one.
	for _, receiver := range []string{"bob", "carol"} {
		visible, err := repo.CandidateVisible(ctx, svc.DB, "alice", receiver, "hey")
		if err != nil || !visible {
			t.Fatalf("expected candidate row alice→%s, got visible=%v err=%v", receiver, visible, err)
		}
	}
}

func TestRecordAndDetect_GoneEndpointsDeactivatedAfterFanout(t *testing.T) {
	svc, gw, _ := newMatchService(t)
	ctx := context.Background()
	mustUser(t, svc.DB, "alice", "Alice", "en")
	mustUser(t, svc.DB, "bob", "Bob", "en")
	mustSub(t, svc.DB, "alice", "ep-alice")
	mustSub(t, svc.DB, "bob", "ep-bob")
	gw.gone["ep-bob"] = true

	if _, err := svc.RecordAndDetect(ctx, "bob", []string{"alice"}, "hi"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := svc.RecordAndDetect(ctx, "alice", []string{"bob"}, "hi")
	if err != nil || !res.Matched {
		t.Fatalf("expected match, got res=%+v err=%v", res, err)
	}

	// The live endpoint got the push; the dead one was deactivated.
	delivered := gw.delivered()
	if len(delivered) != 1 || delivered[0].Endpoint != "ep-alice" {
		t.Fatalf("unexpected deliveries: %+v", delivered)
	}
	subs, err := repo.AllActiveSubscriptions(ctx, svc.DB)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(subs) != 1 || subs[0].Endpoint != "ep-alice" {
		t.Fatalf("expected only ep-alice active, got %+v", subs)
	}
}
