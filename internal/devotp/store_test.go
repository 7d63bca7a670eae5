package devotp

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok := s.Get(ctx, "09120000000"); ok {
		t.Fatal("Get on empty store should return ok=false")
	}

	s.Put(ctx, "09120000000", "123456", time.Now().UTC().Add(time.Minute))
	code, ok := s.Get(ctx, "09120000000")
	if !ok || code != "123456" {
		t.Fatalf("Get = (%q, %v), want (123456, true)", code, ok)
	}

	// Latest code wins after a resend.
	s.Put(ctx, "09120000000", "654321", time.Now().UTC().Add(time.Minute))
	code, _ = s.Get(ctx, "09120000000")
	if code != "654321" {
		t.Errorf("Get after overwrite = %q, want 654321", code)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now().UTC()
	s.nowF = func() time.Time { return now }
	s.Put(ctx, "09129999999", "111111", now.Add(60*time.Second))

	if _, ok := s.Get(ctx, "09129999999"); !ok {
		t.Fatal("code should be retrievable before expiry")
	}

	s.nowF = func() time.Time { return now.Add(61 * time.Second) }
	if _, ok := s.Get(ctx, "09129999999"); ok {
		t.Fatal("code should not be retrievable after expiry")
	}
}
