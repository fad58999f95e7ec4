package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a live server when REDIS_TEST_ADDR is set.
func TestKVStoreAndLock_Live(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()

	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	id := uuid.NewString()
	ns := NewNamespaces(client, time.Minute)
	kv := ns.Namespace(id)
	t.Cleanup(func() { client.Del(ctx, sessionKeyPrefix+id) })

	if err := kv.Set(ctx, "unidet_admin_token", "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, err := kv.Get(ctx, "unidet_admin_token"); err != nil || !ok || v != "tok" {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}
	if ttl := client.TTL(ctx, sessionKeyPrefix+id).Val(); ttl <= 0 {
		t.Fatalf("expected expiry on session hash, got %v", ttl)
	}
	if _, ok, _ := ns.Namespace(id+"x").Get(ctx, "unidet_admin_token"); ok {
		t.Fatalf("clients must not share entries")
	}
	if err := kv.Delete(ctx, "unidet_admin_token"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	lock := NewSubmitLock(client)
	key := id + ":/admin/news"
	if ok, err := lock.Acquire(ctx, key, time.Minute); err != nil || !ok {
		t.Fatalf("first acquire: %v %v", ok, err)
	}
	if ok, _ := lock.Acquire(ctx, key, time.Minute); ok {
		t.Fatalf("second acquire must fail while held")
	}
	if err := lock.Release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestConnect_UnreachableStoreFailsStartup(t *testing.T) {
	start := time.Now()
	client, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 300 * time.Millisecond})
	if err == nil {
		_ = client.Close()
		t.Fatalf("expected an unreachable session store to fail")
	}
	if !strings.Contains(err.Error(), "session store 127.0.0.1:1") {
		t.Fatalf("error should name the session store, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("connect ignored its timeout")
	}
}
