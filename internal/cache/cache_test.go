package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(true)
	etag := c.Set("player:1", []byte(`{"id":1}`), time.Minute)
	if etag == "" {
		t.Fatal("Set must return an etag")
	}

	data, gotETag, ok := c.Get("player:1")
	if !ok || string(data) != `{"id":1}` || gotETag != etag {
		t.Errorf("Get = %q/%q/%v, want stored value", data, gotETag, ok)
	}

	if _, _, ok := c.Get("player:2"); ok {
		t.Error("unknown key must miss")
	}
}

func TestGet_Expired(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), -time.Second)
	if _, _, ok := c.Get("k"); ok {
		t.Error("expired entry must miss")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(true)
	c.Set("dashboard:1:r90", []byte("a"), time.Minute)
	c.Set("dashboard:2:r90", []byte("b"), time.Minute)
	c.Set("invoices:1", []byte("c"), time.Minute)

	if removed := c.InvalidatePrefix("dashboard:"); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, _, ok := c.Get("dashboard:1:r90"); ok {
		t.Error("prefixed entry must be gone")
	}
	if _, _, ok := c.Get("invoices:1"); !ok {
		t.Error("other prefixes must survive")
	}
	if removed := c.InvalidatePrefix("nothing:"); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	if etag == "" {
		t.Error("disabled cache must still compute etags")
	}
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache must never hit")
	}
	if removed := c.InvalidatePrefix("k"); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestComputeETag(t *testing.T) {
	a := ComputeETag([]byte("payload"))
	if a != ComputeETag([]byte("payload")) {
		t.Error("etag must be deterministic")
	}
	if a == ComputeETag([]byte("other")) {
		t.Error("different payloads must get different etags")
	}
	if len(a) < 4 || a[:3] != `W/"` {
		t.Errorf("etag = %q, want weak form", a)
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("v"))
	if CheckETagMatch("", etag) {
		t.Error("empty If-None-Match must not match")
	}
	if !CheckETagMatch("*", etag) {
		t.Error("wildcard must match")
	}
	if !CheckETagMatch(etag, etag) {
		t.Error("equal etags must match")
	}
	if CheckETagMatch(`W/"beef"`, etag) {
		t.Error("different etags must not match")
	}
}

func TestStats(t *testing.T) {
	c := New(true)
	c.Set("live", []byte("a"), time.Minute)
	c.Set("dead", []byte("b"), -time.Second)

	stats := c.Stats()
	if stats["total_keys"] != 2 || stats["active_keys"] != 1 || stats["expired_keys"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}
