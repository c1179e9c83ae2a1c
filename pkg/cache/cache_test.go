package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// SnapshotKey should include options in hash
	sk1 := k.SnapshotKey("who is alice?", SnapshotKeyOpts{SessionID: "s1"})
	sk2 := k.SnapshotKey("who is alice?", SnapshotKeyOpts{SessionID: "s2"})
	if sk1 == sk2 {
		t.Error("Different SnapshotKeyOpts should produce different keys")
	}
	if sk1[:9] != "snapshot:" {
		t.Errorf("SnapshotKey should carry its stage prefix: %s", sk1)
	}

	// LayoutKey
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Seed: 1})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Seed: 2})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}

	// Determinism across calls
	if k.LayoutKey("h", LayoutKeyOpts{Seed: 7}) != k.LayoutKey("h", LayoutKeyOpts{Seed: 7}) {
		t.Error("Keyer should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	key := scoped.SnapshotKey("q", SnapshotKeyOpts{})
	if key[:9] != "user:123:" {
		t.Errorf("ScopedKeyer SnapshotKey should be prefixed: %s", key)
	}

	layoutKey := scoped.LayoutKey("abc", LayoutKeyOpts{})
	if len(layoutKey) < 15 || layoutKey[:9] != "user:123:" {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", layoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if key[:7] != "prefix:" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || string(data) != "payload" {
		t.Errorf("Get = %q hit=%v, want payload hit", data, hit)
	}

	// Unknown key is a miss, not an error.
	_, hit, err = c.Get(ctx, "missing")
	if err != nil || hit {
		t.Errorf("missing key: hit=%v err=%v, want clean miss", hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("forever"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, _ := c.Get(ctx, "key")
	if !hit {
		t.Error("zero-TTL entry should not expire")
	}
}

func TestFileCachePurgeAndStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	fc := c.(*FileCache)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	entries, bytes, err := fc.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 3 || bytes == 0 {
		t.Errorf("Stats = %d entries %d bytes, want 3 entries", entries, bytes)
	}

	if err := fc.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	entries, _, _ = fc.Stats()
	if entries != 0 {
		t.Errorf("entries after Purge = %d, want 0", entries)
	}
}
