// Package storagetest holds the behavior every RollStore backend must satisfy.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/louisbranch/roll/internal/platform/grpc/pagination"
	"github.com/louisbranch/roll/internal/services/dice/storage"
)

// RunRollStoreContract exercises store against the shared RollStore contract.
// The store must start empty.
func RunRollStoreContract(t *testing.T, store storage.RollStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("put and get", func(t *testing.T) {
		want := storage.RollRecord{
			ID:          "get-1",
			Operation:   storage.OperationRollNotation,
			Notation:    "3d6+2",
			Count:       3,
			Sides:       6,
			Modifier:    2,
			HasModifier: true,
			Individual:  []int{4, 1, 6},
			Total:       13,
			Seed:        18446744073709551615,
			SeedSource:  storage.SeedSourceClient,
			CreatedAt:   base.Add(-time.Hour),
		}
		if err := store.PutRoll(ctx, want); err != nil {
			t.Fatalf("put roll: %v", err)
		}
		got, err := store.GetRoll(ctx, want.ID)
		if err != nil {
			t.Fatalf("get roll: %v", err)
		}
		assertRecord(t, got, want)
	})

	t.Run("get missing", func(t *testing.T) {
		if _, err := store.GetRoll(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		record := storage.RollRecord{ID: "dup-1", Operation: storage.OperationRoll, Count: 1, Sides: 20, Total: 7, CreatedAt: base.Add(-2 * time.Hour)}
		if err := store.PutRoll(ctx, record); err != nil {
			t.Fatalf("put roll: %v", err)
		}
		if err := store.PutRoll(ctx, record); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects incomplete record", func(t *testing.T) {
		if err := store.PutRoll(ctx, storage.RollRecord{Operation: storage.OperationRoll}); err == nil {
			t.Fatal("expected missing id error")
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			record := storage.RollRecord{
				ID:        fmt.Sprintf("list-%d", i),
				Operation: storage.OperationRollMultiple,
				Count:     2,
				Sides:     6,
				Total:     i + 2,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			if err := store.PutRoll(ctx, record); err != nil {
				t.Fatalf("put roll %d: %v", i, err)
			}
		}

		var ids []string
		token := ""
		for pages := 0; ; pages++ {
			if pages > 10 {
				t.Fatal("pagination did not terminate")
			}
			page, err := store.ListRolls(ctx, 2, token)
			if err != nil {
				t.Fatalf("list rolls: %v", err)
			}
			if len(page.Rolls) > 2 {
				t.Fatalf("expected at most 2 rolls per page, got %d", len(page.Rolls))
			}
			for _, roll := range page.Rolls {
				ids = append(ids, roll.ID)
			}
			if page.NextPageToken == "" {
				break
			}
			token = page.NextPageToken
		}
		want := []string{"list-2", "list-1", "list-0", "get-1", "dup-1"}
		if !slices.Equal(ids, want) {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	})

	t.Run("list rejects bad input", func(t *testing.T) {
		if _, err := store.ListRolls(ctx, 0, ""); err == nil {
			t.Fatal("expected page size error")
		}
		if _, err := store.ListRolls(ctx, 1, "not-a-token"); !errors.Is(err, pagination.ErrInvalidPageToken) {
			t.Fatalf("expected ErrInvalidPageToken, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := store.GetRoll(cancelled, "get-1"); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func assertRecord(t *testing.T, got, want storage.RollRecord) {
	t.Helper()
	if got.ID != want.ID || got.Operation != want.Operation || got.Notation != want.Notation {
		t.Fatalf("identity mismatch: got %+v, want %+v", got, want)
	}
	if got.Count != want.Count || got.Sides != want.Sides || got.Modifier != want.Modifier || got.HasModifier != want.HasModifier {
		t.Fatalf("spec mismatch: got %+v, want %+v", got, want)
	}
	if got.Total != want.Total || !slices.Equal(got.Individual, want.Individual) {
		t.Fatalf("outcome mismatch: got %+v, want %+v", got, want)
	}
	if got.Seed != want.Seed || got.SeedSource != want.SeedSource {
		t.Fatalf("seed mismatch: got %d/%s, want %d/%s", got.Seed, got.SeedSource, want.Seed, want.SeedSource)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created_at mismatch: got %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}
