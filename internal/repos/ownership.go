package repos

import (
	"context"
	"fmt"

	"github.com/lnco/artifact-service/internal/docstore"
	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/pkg/kmutex"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

const contributorsCollection = "contributors"

// OwnershipRepo maintains the per-contributor set of owned artifact IDs.
// The backing value is a plain array, so every mutation is a read-modify-write
// cycle; mutations for the same contributor are serialized through a per-key
// mutex while different contributors proceed independently.
type OwnershipRepo interface {
	// Contains reports whether the contributor's index entry holds the
	// artifact ID. Returns domain.ErrNotFound when the contributor has no
	// entry at all; callers treat that the same as "does not own".
	Contains(ctx context.Context, contributor, artifactID string) (bool, error)
	// Add inserts the artifact ID, lazily creating the entry. Adding an ID
	// that is already present is a no-op.
	Add(ctx context.Context, contributor, artifactID string) error
	// Remove deletes the artifact ID from the entry. Returns
	// domain.ErrNotFound when the contributor has no entry and
	// domain.ErrIndexCorrupt when the stored value is not an ID list.
	Remove(ctx context.Context, contributor, artifactID string) error
	// List returns the contributor's owned IDs. Returns domain.ErrNotFound
	// when the contributor has no entry.
	List(ctx context.Context, contributor string) ([]string, error)
}

type ownershipRepo struct {
	store docstore.Store
	log   *logger.Logger
	locks *kmutex.KeyedMutex
}

func NewOwnershipRepo(store docstore.Store, baseLog *logger.Logger) OwnershipRepo {
	return &ownershipRepo{
		store: store,
		log:   baseLog.With("repo", "OwnershipRepo"),
		locks: kmutex.New(),
	}
}

func (or *ownershipRepo) Contains(ctx context.Context, contributor, artifactID string) (bool, error) {
	ids, err := or.readEntry(ctx, contributor, false)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == artifactID {
			return true, nil
		}
	}
	return false, nil
}

func (or *ownershipRepo) Add(ctx context.Context, contributor, artifactID string) error {
	or.locks.Lock(contributor)
	defer or.locks.Unlock(contributor)

	ids, err := or.readEntry(ctx, contributor, false)
	if err != nil {
		if isNotFound(err) {
			return or.store.Set(ctx, contributorsCollection, contributor, domain.ContributorDoc{
				Artifacts: []string{artifactID},
			})
		}
		return err
	}

	for _, id := range ids {
		if id == artifactID {
			return nil
		}
	}
	return or.store.Update(ctx, contributorsCollection, contributor, map[string]any{
		"artifacts": append(ids, artifactID),
	})
}

func (or *ownershipRepo) Remove(ctx context.Context, contributor, artifactID string) error {
	or.locks.Lock(contributor)
	defer or.locks.Unlock(contributor)

	ids, err := or.readEntry(ctx, contributor, true)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != artifactID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		// Nothing to remove; the entry is already consistent.
		return nil
	}
	return or.store.Update(ctx, contributorsCollection, contributor, map[string]any{
		"artifacts": kept,
	})
}

func (or *ownershipRepo) List(ctx context.Context, contributor string) ([]string, error) {
	return or.readEntry(ctx, contributor, false)
}

// readEntry fetches and validates the contributor's index entry. With strict
// set, a missing or malformed artifacts field is ErrIndexCorrupt; otherwise a
// missing field reads as an empty set (a lazily created entry may predate any
// artifact write).
func (or *ownershipRepo) readEntry(ctx context.Context, contributor string, strict bool) ([]string, error) {
	var raw map[string]any
	if err := or.store.Get(ctx, contributorsCollection, contributor, &raw); err != nil {
		return nil, err
	}

	field, ok := raw["artifacts"]
	if !ok || field == nil {
		if strict {
			return nil, fmt.Errorf("contributor %s: artifacts field missing: %w", contributor, domain.ErrIndexCorrupt)
		}
		return nil, nil
	}

	list, ok := field.([]any)
	if !ok {
		return nil, fmt.Errorf("contributor %s: artifacts field is %T, not a list: %w", contributor, field, domain.ErrIndexCorrupt)
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("contributor %s: artifacts element is %T, not a string: %w", contributor, v, domain.ErrIndexCorrupt)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
