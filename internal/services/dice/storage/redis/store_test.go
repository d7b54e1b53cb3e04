package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"github.com/louisbranch/roll/internal/services/dice/storage/redis"
	"github.com/louisbranch/roll/internal/services/dice/storage/storagetest"
	backend "github.com/redis/go-redis/v9"
)

func TestRedisStore_Contract(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	store := redis.NewFromClient(client)
	t.Cleanup(func() { _ = store.Close() })
	storagetest.RunRollStoreContract(t, store)
}

func TestRedisStore_PrefixIsolatesStores(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := redis.New(mr.Addr(), "", 0, redis.WithPrefix("a:"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer a.Close()
	b, err := redis.New(mr.Addr(), "", 0, redis.WithPrefix("b:"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer b.Close()

	if err := a.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := a.PutRoll(ctx, storage.RollRecord{ID: "r1", Operation: storage.OperationRoll, Count: 1, Sides: 6, Total: 3}); err != nil {
		t.Fatalf("put roll: %v", err)
	}
	if !mr.Exists("a:roll:r1") {
		t.Fatal("expected prefixed key in redis")
	}
	if _, err := b.GetRoll(ctx, "r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected other prefix to miss, got %v", err)
	}
}

func TestRedisStore_TTLExpiresRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	defer store.Close()

	if err := store.PutRoll(ctx, storage.RollRecord{ID: "short", Operation: storage.OperationRoll, Count: 1, Sides: 4, Total: 2}); err != nil {
		t.Fatalf("put roll: %v", err)
	}
	if ttl := mr.TTL("roll:history:roll:short"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.GetRoll(ctx, "short"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected expired roll to be missing, got %v", err)
	}
	page, err := store.ListRolls(ctx, 10, "")
	if err != nil {
		t.Fatalf("list rolls: %v", err)
	}
	if len(page.Rolls) != 0 {
		t.Fatalf("expected no rolls after expiry, got %d", len(page.Rolls))
	}
}

func TestNewRequiresAddress(t *testing.T) {
	if _, err := redis.New("", "", 0); err == nil {
		t.Fatal("expected missing address error")
	}
}
