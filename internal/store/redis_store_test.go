package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to create Redis store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, mr
}

// TestRedisStore_ConnectionError tests an unreachable Redis
func TestRedisStore_ConnectionError(t *testing.T) {
	_, err := NewRedisStore("localhost:1", "", 0)
	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

// TestRedisStore_AddAndList tests Add followed by IgnoredAddresses
func TestRedisStore_AddAndList(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "203.0.113.7", "scanner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Add(ctx, "2001:db8::1", "lab"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addresses, err := store.IgnoredAddresses(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"2001:db8::1", "203.0.113.7"}
	if !reflect.DeepEqual(addresses, expected) {
		t.Errorf("expected %v, got %v", expected, addresses)
	}

	if ok, _ := mr.IsMember(ignoredSetKey, "203.0.113.7"); !ok {
		t.Error("expected address in the Redis set")
	}

	reason, found, err := store.Reason(ctx, "2001:db8::1")
	if err != nil || !found || reason != "lab" {
		t.Errorf("expected reason 'lab', got %q (%v, %v)", reason, found, err)
	}
}

// TestRedisStore_ReasonMissing tests an unknown address
func TestRedisStore_ReasonMissing(t *testing.T) {
	store, _ := setupRedisStore(t)

	_, found, err := store.Reason(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected no reason for unknown address")
	}
}

// TestRedisStore_IsEmpty tests the empty check before and after loading
func TestRedisStore_IsEmpty(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	empty, err := store.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("expected empty store, got %v (%v)", empty, err)
	}

	store.Add(ctx, "203.0.113.7", "scanner")

	empty, err = store.IsEmpty(ctx)
	if err != nil || empty {
		t.Errorf("expected non-empty store, got %v (%v)", empty, err)
	}
}

// TestRedisStore_LoadFromCSV tests bulk loading from a CSV file
func TestRedisStore_LoadFromCSV(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	csvPath := writeCSV(t, `ip,reason
203.0.113.7,scanner
198.51.100.1,load balancer
192.0.2.44,honeypot`)

	count, err := store.LoadFromCSV(ctx, csvPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows loaded, got %d", count)
	}

	addresses, _ := store.IgnoredAddresses(ctx)
	if len(addresses) != 3 {
		t.Errorf("expected 3 addresses, got %v", addresses)
	}
}

// TestRedisStore_LoadFromCSV_MissingFile tests a bad CSV path
func TestRedisStore_LoadFromCSV_MissingFile(t *testing.T) {
	store, _ := setupRedisStore(t)

	if _, err := store.LoadFromCSV(context.Background(), "/nonexistent/ignore.csv"); err == nil {
		t.Error("expected error for missing CSV, got nil")
	}
}

// TestRedisStore_QueryAfterShutdown tests errors surfacing when Redis goes away
func TestRedisStore_QueryAfterShutdown(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	if _, err := store.IgnoredAddresses(context.Background()); err == nil {
		t.Error("expected error after Redis shutdown, got nil")
	}
}
