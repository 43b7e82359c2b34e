package services

import (
	"context"
	"testing"

	"github.com/alevras/go-match-backend/internal/realtime"
)

func TestEnsure_IdempotentEitherOrder(t *testing.T) {
	db := newSvcDB(t)
	svc := NewChatService(db, realtime.NopEmitter{})
	ctx := context.Background()

	id1, err := svc.Ensure(ctx, "zoe", "adam")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	id2, err := svc.Ensure(ctx, "adam", "zoe")
	if err != nil {
		t.Fatalf("ensure reversed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected one chat for the pair, got %s and %s", id1, id2)
	}

	if _, err := svc.Ensure(ctx, "", "adam"); err != ErrUserRequired {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestPostMessage_ParticipantOnlyAndEmits(t *testing.T) {
	db := newSvcDB(t)
	em := &fakeEmitter{}
	svc := NewChatService(db, em)
	ctx := context.Background()

	chatID, err := svc.Ensure(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if _, err := svc.PostMessage(ctx, chatID, "alice", ""); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.PostMessage(ctx, "missing", "alice", "hi"); err != ErrChatNotFound {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}
	if _, err := svc.PostMessage(ctx, chatID, "mallory", "hi"); err != ErrChatForbidden {
		t.Fatalf("expected ErrChatForbidden, got %v", err)
	}

	m, err := svc.PostMessage(ctx, chatID, "alice", "hi bob")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if m.ChatID != chatID || m.Content != "hi bob" {
		t.Fatalf("unexpected message: %+v", m)
	}

	evs := em.byEvent(realtime.EventNewMessage)
	if len(evs) != 1 || evs[0].Room != realtime.ChatRoom(chatID) {
		t.Fatalf("expected one newMessage emission to the chat room, got %+v", evs)
	}
}

func TestListMessages_PaginationAndAccess(t *testing.T) {
	db := newSvcDB(t)
	svc := NewChatService(db, realtime.NopEmitter{})
	ctx := context.Background()

	chatID, err := svc.Ensure(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.PostMessage(ctx, chatID, "alice", "msg"); err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
	}

	if _, _, err := svc.ListMessages(ctx, chatID, "mallory", 1, 10); err != ErrChatForbidden {
		t.Fatalf("expected ErrChatForbidden, got %v", err)
	}

	items, total, err := svc.ListMessages(ctx, chatID, "bob", 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("expected total=5 page of 2, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.ListMessages(ctx, chatID, "bob", 3, 2)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if total != 5 || len(items) != 1 {
		t.Fatalf("expected last page of 1, got total=%d len=%d", total, len(items))
	}
}
