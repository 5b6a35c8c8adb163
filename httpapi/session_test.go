package httpapi

import (
	"testing"

	"github.com/lookbusy1344/sleigh-lift/sleighctx"
)

func TestSessionManagerCreateGetDestroy(t *testing.T) {
	base := sleighctx.NewDatabase(4)
	sm := NewSessionManager(base)

	session, err := sm.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	if sm.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", sm.Count())
	}

	got, err := sm.Get(session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("expected session %s, got %s", session.ID, got.ID)
	}

	if err := sm.Destroy(session.ID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := sm.Get(session.ID); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManagerCloneIsolation(t *testing.T) {
	base := sleighctx.NewDatabase(2)
	base.SetContextWord(0, 0xAAAAAAAA, 0xFFFFFFFF)
	sm := NewSessionManager(base)

	a, _ := sm.Create()
	b, _ := sm.Create()

	a.Ctx.SetContextWord(0, 0x11111111, 0xFFFFFFFF)

	if a.Ctx.GetContextBytes(0, 4) == b.Ctx.GetContextBytes(0, 4) {
		t.Fatal("expected per-session context databases to be independent")
	}
	if b.Ctx.GetContextBytes(0, 4) != base.GetContextBytes(0, 4) {
		t.Fatal("expected session b's context to start from the base snapshot")
	}
}

func TestGenerateSessionIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := generateSessionID()
		if err != nil {
			t.Fatalf("generateSessionID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate session id generated: %s", id)
		}
		seen[id] = true
	}
}
