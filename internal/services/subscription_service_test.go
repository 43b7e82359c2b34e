package services

import (
	"context"
	"testing"
)

func TestRegister_ValidationAndUpsert(t *testing.T) {
	db := newSvcDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "ep", "p", "a"); err != ErrUserRequired {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
	for _, bad := range [][3]string{
		{"", "p", "a"},
		{"ep", "", "a"},
		{"ep", "p", ""},
	} {
		if _, err := svc.Register(ctx, "u1", bad[0], bad[1], bad[2]); err != ErrSubscriptionInvalid {
			t.Fatalf("expected ErrSubscriptionInvalid for %v, got %v", bad, err)
		}
	}

	first, err := svc.Register(ctx, "u1", "ep", "p", "a")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := svc.Register(ctx, "u2", "ep", "p2", "a2")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if second.ID != first.ID || second.UserID != "u2" || !second.IsActive {
		t.Fatalf("expected endpoint reassigned to u2, got %+v", second)
	}
}
