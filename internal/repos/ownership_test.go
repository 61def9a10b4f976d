package repos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lnco/artifact-service/internal/docstore"
	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

func TestOwnershipRepoAddContainsRemove(t *testing.T) {
	repo := NewOwnershipRepo(docstore.NewMemoryStore(), logger.NewNop())
	ctx := context.Background()

	// Unknown contributor reads as NotFound.
	if _, err := repo.Contains(ctx, "u1", "a1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Contains unknown contributor: expected ErrNotFound, got %v", err)
	}

	if err := repo.Add(ctx, "u1", "a1"); err != nil {
		t.Fatalf("Add (lazy create): %v", err)
	}
	ok, err := repo.Contains(ctx, "u1", "a1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatalf("Contains: expected true after Add")
	}

	ok, err = repo.Contains(ctx, "u1", "a2")
	if err != nil {
		t.Fatalf("Contains other ID: %v", err)
	}
	if ok {
		t.Fatalf("Contains: expected false for un-owned ID")
	}

	// Duplicate Add is a no-op.
	if err := repo.Add(ctx, "u1", "a1"); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	ids, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a1" {
		t.Fatalf("List after duplicate Add: expected [a1], got %v", ids)
	}

	if err := repo.Remove(ctx, "u1", "a1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ok, err = repo.Contains(ctx, "u1", "a1")
	if err != nil {
		t.Fatalf("Contains after Remove: %v", err)
	}
	if ok {
		t.Fatalf("Contains: expected false after Remove")
	}

	// The entry itself persists as an empty set.
	ids, err = repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List after Remove: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("List after Remove: expected empty set, got %v", ids)
	}

	// Removing an absent ID from an existing entry is a no-op.
	if err := repo.Remove(ctx, "u1", "never-there"); err != nil {
		t.Fatalf("Remove absent ID: %v", err)
	}
}

func TestOwnershipRepoRemoveErrors(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewOwnershipRepo(store, logger.NewNop())
	ctx := context.Background()

	if err := repo.Remove(ctx, "nobody", "a1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Remove unknown contributor: expected ErrNotFound, got %v", err)
	}

	// An entry whose artifacts value is not an ID list is a storage
	// invariant violation, not "nothing to remove".
	if err := store.Set(ctx, "contributors", "broken", map[string]any{"artifacts": "oops"}); err != nil {
		t.Fatalf("Set broken entry: %v", err)
	}
	if err := repo.Remove(ctx, "broken", "a1"); !errors.Is(err, domain.ErrIndexCorrupt) {
		t.Fatalf("Remove malformed entry: expected ErrIndexCorrupt, got %v", err)
	}

	if err := store.Set(ctx, "contributors", "mixed", map[string]any{"artifacts": []any{"a1", 42}}); err != nil {
		t.Fatalf("Set mixed entry: %v", err)
	}
	if err := repo.Remove(ctx, "mixed", "a1"); !errors.Is(err, domain.ErrIndexCorrupt) {
		t.Fatalf("Remove mixed entry: expected ErrIndexCorrupt, got %v", err)
	}
}

func TestOwnershipRepoConcurrentAdds(t *testing.T) {
	repo := NewOwnershipRepo(docstore.NewMemoryStore(), logger.NewNop())
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Add(ctx, "u1", fmt.Sprintf("artifact-%d", i)); err != nil {
				t.Errorf("Add: %v", err)
			}
		}()
	}
	wg.Wait()

	ids, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != n {
		t.Fatalf("expected %d IDs after concurrent adds, got %d (lost updates)", n, len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate ID in index entry: %s", id)
		}
		seen[id] = true
	}
}
