package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/push"
	"github.com/alevras/go-match-backend/internal/repo"
)

// newSvcDB opens a fresh in-memory SQLite database with the full schema.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, id, name, lang string) {
	t.Helper()
	u := &domain.User{ID: id, DisplayName: name, Language: lang, CreatedAt: time.Now().UTC()}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func mustSub(t *testing.T, db *gorm.DB, userID, endpoint string) {
	t.Helper()
	if _, err := repo.UpsertSubscription(context.Background(), db, userID, endpoint, "p256dh", "auth"); err != nil {
		t.Fatalf("seed subscription %s: %v", endpoint, err)
	}
}

// sentPush records one delivery attempt seen by the fake gateway.
type sentPush struct {
	UserID   string
	Endpoint string
	Payload  push.Payload
}

// fakeGateway records sends and fails configured endpoints.
type fakeGateway struct {
	mu   sync.Mutex
	sent []sentPush
	gone map[string]bool // endpoints answered with ErrEndpointGone
	fail map[string]bool // endpoints answered with a transient error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{gone: map[string]bool{}, fail: map[string]bool{}}
}

func (g *fakeGateway) Send(_ context.Context, sub domain.PushSubscription, p push.Payload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gone[sub.Endpoint] {
		return push.ErrEndpointGone
	}
	if g.fail[sub.Endpoint] {
		return fmt.Errorf("provider unavailable")
	}
	g.sent = append(g.sent, sentPush{UserID: sub.UserID, Endpoint: sub.Endpoint, Payload: p})
	return nil
}

func (g *fakeGateway) delivered() []sentPush {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentPush, len(g.sent))
	copy(out, g.sent)
	return out
}

// emitted records one realtime emission seen by the fake emitter.
type emitted struct {
	Room    string
	Event   string
	Payload any
}

// fakeEmitter records emissions for assertions.
type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *fakeEmitter) Emit(room, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{Room: room, Event: event, Payload: payload})
}

func (e *fakeEmitter) byEvent(name string) []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emitted
	for _, ev := range e.events {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}
