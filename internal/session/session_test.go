package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeDurable struct {
	identities map[string]string
	failing    bool
	upserts    int
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{identities: make(map[string]string)}
}

func (f *fakeDurable) IdentityLookup(_ context.Context, key string) (string, bool, error) {
	if f.failing {
		return "", false, errors.New("connection refused")
	}
	email, ok := f.identities[key]
	return email, ok, nil
}

func (f *fakeDurable) IdentityUpsert(_ context.Context, key, email string) error {
	if f.failing {
		return errors.New("connection refused")
	}
	f.upserts++
	f.identities[key] = email
	return nil
}

func (f *fakeDurable) IdentityDelete(_ context.Context, key string) error {
	if f.failing {
		return errors.New("connection refused")
	}
	delete(f.identities, key)
	return nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginAndResolve(t *testing.T) {
	durable := newFakeDurable()
	s := NewStore(durable, time.Hour, quiet())
	ctx := context.Background()

	if err := s.Login(ctx, "k1", "nico@vantage.example"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if durable.identities["k1"] != "nico@vantage.example" {
		t.Error("login must persist to the durable tier")
	}

	email, ok := s.Resolve(ctx, "k1")
	if !ok || email != "nico@vantage.example" {
		t.Errorf("Resolve = %q/%v, want hit", email, ok)
	}
}

func TestLogin_RequiresKeyAndEmail(t *testing.T) {
	s := NewStore(newFakeDurable(), 0, quiet())
	if err := s.Login(context.Background(), "", "a@b.c"); err == nil {
		t.Error("empty key must error")
	}
	if err := s.Login(context.Background(), "k", " "); err == nil {
		t.Error("empty email must error")
	}
}

func TestLogin_SurvivesDurableOutage(t *testing.T) {
	durable := newFakeDurable()
	s := NewStore(durable, time.Hour, quiet())
	ctx := context.Background()

	durable.failing = true
	if err := s.Login(ctx, "k1", "a@b.c"); err == nil {
		t.Fatal("durable failure must surface to the caller")
	}

	// The volatile tier was written first, so the session still resolves.
	email, ok := s.Resolve(ctx, "k1")
	if !ok || email != "a@b.c" {
		t.Errorf("Resolve during outage = %q/%v, want volatile hit", email, ok)
	}
}

func TestResolve_DurableAuthoritative(t *testing.T) {
	durable := newFakeDurable()
	s := NewStore(durable, time.Hour, quiet())
	ctx := context.Background()

	// Durable knows an identity the volatile tier has never seen.
	durable.identities["k1"] = "scout@vantage.example"
	email, ok := s.Resolve(ctx, "k1")
	if !ok || email != "scout@vantage.example" {
		t.Fatalf("Resolve = %q/%v, want durable hit", email, ok)
	}

	// The hit was mirrored, so it keeps resolving through an outage.
	durable.failing = true
	if _, ok := s.Resolve(ctx, "k1"); !ok {
		t.Error("mirrored identity must resolve while durable is down")
	}
}

func TestResolve_WritebackOnRecovery(t *testing.T) {
	durable := newFakeDurable()
	s := NewStore(durable, time.Hour, quiet())
	ctx := context.Background()

	durable.failing = true
	_ = s.Login(ctx, "k1", "a@b.c")
	durable.failing = false

	// Durable missed the login; the volatile hit is written back.
	if _, ok := s.Resolve(ctx, "k1"); !ok {
		t.Fatal("volatile fallback must answer")
	}
	if durable.identities["k1"] != "a@b.c" {
		t.Error("volatile recovery must write back to the durable tier")
	}
}

func TestResolve_Misses(t *testing.T) {
	s := NewStore(newFakeDurable(), time.Hour, quiet())
	if _, ok := s.Resolve(context.Background(), "unknown"); ok {
		t.Error("unknown key must miss")
	}
	if _, ok := s.Resolve(context.Background(), "  "); ok {
		t.Error("blank key must miss")
	}
}

func TestLogout(t *testing.T) {
	durable := newFakeDurable()
	s := NewStore(durable, time.Hour, quiet())
	ctx := context.Background()

	_ = s.Login(ctx, "k1", "a@b.c")
	if err := s.Logout(ctx, "k1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := s.Resolve(ctx, "k1"); ok {
		t.Error("logged-out key must not resolve")
	}
	if _, ok := durable.identities["k1"]; ok {
		t.Error("logout must delete the durable identity")
	}
}

func TestPruneVolatile(t *testing.T) {
	durable := newFakeDurable()
	s := NewStore(durable, 10*time.Millisecond, quiet())
	ctx := context.Background()

	_ = s.Login(ctx, "k1", "a@b.c")
	time.Sleep(20 * time.Millisecond)

	if removed := s.PruneVolatile(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	// Zero TTL disables volatile expiry entirely.
	forever := NewStore(durable, 0, quiet())
	_ = forever.Login(ctx, "k2", "b@c.d")
	if removed := forever.PruneVolatile(); removed != 0 {
		t.Errorf("removed with zero ttl = %d, want 0", removed)
	}
}
